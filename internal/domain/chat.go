package domain

import "time"

// MaxChatMessageLength caps a single chat message.
const MaxChatMessageLength = 240

// ChatMessage represents a persisted chat message.
type ChatMessage struct {
	ID               string    `json:"id"`
	StreamID         string    `json:"stream_id"`
	UserID           string    `json:"user_id"`
	UsernameSnapshot string    `json:"username"`
	Badge            string    `json:"badge"`
	Message          string    `json:"message"`
	CreatedAt        time.Time `json:"created_at"`
}

// SendChatRequest represents a chat send request.
type SendChatRequest struct {
	Message string `json:"message" binding:"required"`
}
