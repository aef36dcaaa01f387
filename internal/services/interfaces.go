//go:generate go run go.uber.org/mock/mockgen -source=interfaces.go -destination=../../mocks/mock_services.go -package=mocks
package services

import (
	"context"

	"ondot-chat/internal/domain/user"
	"ondot-chat/internal/redis"

	"github.com/google/uuid"
)

// Rooms is the real-time delivery surface the services write to. The
// websocket hub implements it, with membership backed by Redis when
// configured.
type Rooms interface {
	Size(ctx context.Context, room string) (int, error)
	Sizes(ctx context.Context, rooms []string) (map[string]int, error)
	// Broadcast delivers payload to every member of room except the
	// connection id except (empty for none).
	Broadcast(ctx context.Context, room, except string, payload []byte) error
}

// MessageLimiter caps how fast one user may send chat messages.
type MessageLimiter interface {
	AllowMessage(ctx context.Context, userID string) (*redis.RateLimitResult, error)
}

// SessionCache fronts the session store. Implemented by redis.SessionCache.
type SessionCache interface {
	GetSession(ctx context.Context, sessionID uuid.UUID) (user.UserSession, bool, error)
	SetSession(ctx context.Context, s user.UserSession) error
	InvalidateSession(ctx context.Context, sessionID uuid.UUID) error
}
