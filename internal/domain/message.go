package domain

import "time"

const (
	MessageRoleKid = "kid"
	MessageRoleBot = "bot"
)

type Message struct {
	ID        string    `json:"id"`
	KidID     string    `json:"kid_id"`
	SessionID string    `json:"session_id,omitempty"`
	Content   string    `json:"content"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}
