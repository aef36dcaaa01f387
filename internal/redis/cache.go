package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ondot-chat/internal/domain/user"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// Cache key patterns:
// - session:{session_id} - short TTL, bounded by the session expiry

// SessionCache caches session rows in front of the session store. A revoked
// session stays usable for at most ttl unless Invalidate is called.
type SessionCache struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewSessionCache(client *goredis.Client, ttl time.Duration) *SessionCache {
	if ttl == 0 {
		ttl = time.Minute
	}
	return &SessionCache{client: client, ttl: ttl}
}

type cachedSession struct {
	SessionID uuid.UUID `json:"session_id"`
	UserID    uuid.UUID `json:"user_id"`
	IsRevoked bool      `json:"is_revoked"`
	ExpiresAt time.Time `json:"expires_at"`
}

func sessionKey(sessionID uuid.UUID) string {
	return fmt.Sprintf("session:%s", sessionID.String())
}

// GetSession returns ok=false on a cache miss.
func (c *SessionCache) GetSession(ctx context.Context, sessionID uuid.UUID) (user.UserSession, bool, error) {
	data, err := c.client.Get(ctx, sessionKey(sessionID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return user.UserSession{}, false, nil
	}
	if err != nil {
		return user.UserSession{}, false, err
	}

	var cached cachedSession
	if err := json.Unmarshal(data, &cached); err != nil {
		return user.UserSession{}, false, err
	}
	return user.UserSession{
		ID:        cached.SessionID,
		UserID:    cached.UserID,
		IsRevoked: cached.IsRevoked,
		ExpiresAt: cached.ExpiresAt,
	}, true, nil
}

func (c *SessionCache) SetSession(ctx context.Context, s user.UserSession) error {
	ttl := c.ttl
	if remaining := time.Until(s.ExpiresAt); remaining < ttl {
		ttl = remaining
	}
	if ttl <= 0 {
		return nil
	}
	data, err := json.Marshal(cachedSession{
		SessionID: s.ID,
		UserID:    s.UserID,
		IsRevoked: s.IsRevoked,
		ExpiresAt: s.ExpiresAt,
	})
	if err != nil {
		return err
	}
	return c.client.Set(ctx, sessionKey(s.ID), data, ttl).Err()
}

func (c *SessionCache) InvalidateSession(ctx context.Context, sessionID uuid.UUID) error {
	return c.client.Del(ctx, sessionKey(sessionID)).Err()
}
