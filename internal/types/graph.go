package types

import (
  "time"
  "github.com/google/uuid"
  "gorm.io/datatypes"
)

// Graph is one user-owned branch tree of chats. CreatedAt doubles as the
// "recently active" watermark: structural mutations under the graph bump it
// so listings resurface the graph.
type Graph struct {
  ID            uuid.UUID       `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  UserID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
  User          *User           `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
  Title         string          `gorm:"column:title;not null" json:"title"`
  Metadata      datatypes.JSON  `gorm:"column:metadata;type:jsonb" json:"metadata"`
  CreatedAt     time.Time       `gorm:"not null;default:now();index" json:"created_at"`
  UpdatedAt     time.Time       `gorm:"not null;default:now()" json:"updated_at"`
}

func (Graph) TableName() string {
  return "graph"
}
