package model

import (
	"time"
)

// Message is one turn of a conversation: the user's text and the
// assistant's answer, persisted together in a single row so a partial
// turn is never visible to readers.
type Message struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ConversationID uint      `gorm:"index;not null" json:"conversation_id"`
	UserMessage    string    `gorm:"type:text;not null" json:"user_message"`
	AIResponse     string    `gorm:"type:text;not null" json:"ai_response"`
	Timestamp      time.Time `gorm:"index" json:"timestamp"`
}

// Turn is the rewriting-context view of a message.
type Turn struct {
	UserMessage string
	AIResponse  string
}

// ChatRequest is the request to submit a turn.
type ChatRequest struct {
	Message        string `json:"message"`
	ConversationID *uint  `json:"conversation_id,omitempty"`
}

// ChatResponse is the response to a submitted turn.
type ChatResponse struct {
	Response       string `json:"response"`
	ConversationID uint   `json:"conversation_id"`
}
