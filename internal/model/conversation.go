package model

import (
	"time"
)

// titleLimit is the number of leading characters of the first message
// used as the conversation title.
const titleLimit = 50

// Conversation represents a conversation thread owned by one user.
// The title is derived from the first message and never changes.
type Conversation struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`

	Messages []Message `gorm:"foreignKey:ConversationID" json:"-"`
}

// DeriveTitle builds a conversation title from the first message:
// the first 50 characters, with an ellipsis marker when truncated.
func DeriveTitle(message string) string {
	runes := []rune(message)
	if len(runes) > titleLimit {
		return string(runes[:titleLimit]) + "..."
	}
	return message
}

// ConversationSummary is the list view of a conversation.
type ConversationSummary struct {
	ID           uint      `json:"id"`
	Title        string    `json:"title"`
	CreatedAt    time.Time `json:"created_at"`
	MessageCount int64     `json:"message_count"`
}

// ConversationAdmin is the admin list view of a conversation.
type ConversationAdmin struct {
	ID           uint      `json:"id"`
	UserEmail    string    `json:"user_email"`
	Title        string    `json:"title"`
	MessageCount int64     `json:"message_count"`
	CreatedAt    time.Time `json:"created_at"`
}
