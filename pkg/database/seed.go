package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

// SeedConfig holds configuration for seeding development data.
type SeedConfig struct {
	UserCount  int
	SessionTTL time.Duration
}

// DefaultSeedConfig returns default seed configuration
func DefaultSeedConfig() *SeedConfig {
	return &SeedConfig{
		UserCount:  3,
		SessionTTL: 30 * 24 * time.Hour,
	}
}

// SeededUser is a demo user with one live session.
type SeededUser struct {
	UserID      uuid.UUID
	SessionID   uuid.UUID
	DisplayName string
}

// SeedDev creates demo users, each with an active session, so that access
// tokens can be minted for local testing of the real-time channels.
func SeedDev(ctx context.Context, db *sql.DB, cfg *SeedConfig) ([]SeededUser, error) {
	if cfg == nil {
		cfg = DefaultSeedConfig()
	}

	log.Println("Starting database seeding...")
	now := time.Now().UTC()
	seeded := make([]SeededUser, 0, cfg.UserCount)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	for i := 1; i <= cfg.UserCount; i++ {
		u := SeededUser{
			UserID:      uuid.New(),
			SessionID:   uuid.New(),
			DisplayName: fmt.Sprintf("Demo User %d", i),
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO users (id, display_name, avatar_url, created_at) VALUES ($1, $2, $3, $4)`,
			u.UserID, u.DisplayName, "", now.UnixMilli(),
		); err != nil {
			return nil, fmt.Errorf("seed user %d: %w", i, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO user_sessions (id, user_id, is_revoked, expires_at, created_at) VALUES ($1, $2, $3, $4, $5)`,
			u.SessionID, u.UserID, false, now.Add(cfg.SessionTTL).UnixMilli(), now.UnixMilli(),
		); err != nil {
			return nil, fmt.Errorf("seed session %d: %w", i, err)
		}
		seeded = append(seeded, u)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	log.Printf("Seeded %d users", len(seeded))
	return seeded, nil
}
