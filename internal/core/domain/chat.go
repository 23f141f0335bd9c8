package domain

import "time"

// ChatRole identifies the author of a tutor chat message.
type ChatRole string

const (
	RoleUser  ChatRole = "user"
	RoleModel ChatRole = "model"
)

// ChatMessage is a single entry in the tutor chat transcript.
type ChatMessage struct {
	ID        string    `json:"id"`
	Role      ChatRole  `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}
