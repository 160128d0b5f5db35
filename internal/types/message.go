package types

import (
  "time"
  "github.com/google/uuid"
)

const (
  MessageAuthorUser = "user"
  MessageAuthorAI   = "ai"
)

// Message is one turn in a chat's linear history. Rows are append-only,
// never updated, and only removed via the chat cascade delete.
type Message struct {
  ID            uuid.UUID       `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  ChatID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"chat_id"`
  Chat          *Chat           `gorm:"constraint:OnDelete:CASCADE;foreignKey:ChatID;references:ID" json:"chat,omitempty"`
  Author        string          `gorm:"column:author;not null" json:"author"`
  Content       string          `gorm:"column:content;not null" json:"content"`
  CreatedAt     time.Time       `gorm:"not null;default:now();index" json:"created_at"`
}

func (Message) TableName() string {
  return "message"
}
