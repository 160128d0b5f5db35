package types

import (
  "time"
  "github.com/google/uuid"
  "gorm.io/datatypes"
)

// Chat is one node in a graph's branch tree. ParentID is nil exactly on the
// graph's root chat. ParentSummary is frozen at branch creation and never
// recomputed in place: it already folds the whole ancestor chain, so context
// resolution stays one lookup deep regardless of tree depth.
type Chat struct {
  ID                    uuid.UUID       `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  GraphID               uuid.UUID       `gorm:"type:uuid;not null;index" json:"graph_id"`
  Graph                 *Graph          `gorm:"constraint:OnDelete:CASCADE;foreignKey:GraphID;references:ID" json:"graph,omitempty"`
  UserID                uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
  User                  *User           `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
  Title                 string          `gorm:"column:title;not null" json:"title"`
  ParentID              *uuid.UUID      `gorm:"type:uuid;index;column:parent_id" json:"parent_id,omitempty"`
  ParentSummary         string          `gorm:"column:parent_summary" json:"parent_summary"`
  BranchPointMessageID  *uuid.UUID      `gorm:"type:uuid;column:branch_point_message_id" json:"branch_point_message_id,omitempty"`
  Metadata              datatypes.JSON  `gorm:"column:metadata;type:jsonb" json:"metadata"`
  CreatedAt             time.Time       `gorm:"not null;default:now()" json:"created_at"`
  UpdatedAt             time.Time       `gorm:"not null;default:now()" json:"updated_at"`
}

func (Chat) TableName() string {
  return "chat"
}

func (c *Chat) IsRoot() bool {
  return c.ParentID == nil
}
