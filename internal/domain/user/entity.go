package user

import (
	"time"

	"github.com/google/uuid"
)

// Profile is the summary of a user shown next to chat history.
type Profile struct {
	ID          uuid.UUID `json:"id"`
	DisplayName string    `json:"displayName"`
	AvatarURL   string    `json:"avatarUrl"`
}

// UserSession represents the user_sessions table
type UserSession struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	IsRevoked bool
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Valid reports whether the session can still authenticate at now.
func (s UserSession) Valid(now time.Time) bool {
	return !s.IsRevoked && now.Before(s.ExpiresAt)
}

// PushToken represents the push_tokens table
type PushToken struct {
	ID        int64
	UserID    uuid.UUID
	Platform  string // ios, android, expo
	Token     string
	IsActive  bool
	CreatedAt time.Time
}
