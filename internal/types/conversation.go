package types

import (
	"time"

	"github.com/google/uuid"
)

// Conversation is a chat thread. UserID is nullable: anonymous threads are
// allowed, and user deletion sets it to null. Once set, it determines access
// control for every message in the thread.
type Conversation struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    *uuid.UUID `gorm:"index;column:user_id" json:"user_id"`
	User      *User      `gorm:"constraint:OnDelete:SET NULL;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Language  string     `gorm:"not null;default:en;column:language" json:"language"`
	CreatedAt time.Time  `gorm:"not null" json:"created_at"`
}

func (Conversation) TableName() string {
	return "conversations"
}
