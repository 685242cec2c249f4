package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one immutable turn in a conversation, ordered by creation time.
type Message struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ConversationID uuid.UUID  `gorm:"index;not null;column:conversation_id" json:"conversation_id"`
	Conversation   *Conversation `gorm:"constraint:OnDelete:CASCADE;foreignKey:ConversationID;references:ID" json:"-"`
	UserID         *uuid.UUID `gorm:"index;column:user_id" json:"user_id"`
	Role           string     `gorm:"not null;column:role" json:"role"`
	Content        string     `gorm:"not null;column:content" json:"content"`
	CreatedAt      time.Time  `gorm:"not null;index" json:"created_at"`
}

func (Message) TableName() string {
	return "messages"
}
