package domain

import "time"

type Session struct {
	ID        string    `json:"id"`
	KidID     string    `json:"kid_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
