package repository

import (
	"context"
	"fmt"
	"time"

	"ondot-chat/internal/domain/user"
	ondot_errors "ondot-chat/pkg/errors"

	"github.com/google/uuid"
)

type userRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) CreateProfile(ctx context.Context, p user.Profile, createdAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO users (id, display_name, avatar_url, created_at)
        VALUES ($1, $2, $3, $4)
    `, p.ID, p.DisplayName, p.AvatarURL, toMillis(createdAt))
	if isUniqueViolation(err) {
		return fmt.Errorf("user %s: %w", p.ID, ondot_errors.ErrAlreadyExists)
	}
	return err
}

// GetProfiles returns the profiles that exist among ids. Missing ids are
// simply absent from the map.
func (r *userRepository) GetProfiles(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]user.Profile, error) {
	profiles := make(map[uuid.UUID]user.Profile, len(ids))
	if len(ids) == 0 {
		return profiles, nil
	}

	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, display_name, avatar_url
        FROM users
        WHERE id IN (`+buildPlaceholders(1, len(ids))+`)
    `, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var p user.Profile
		if err := rows.Scan(&p.ID, &p.DisplayName, &p.AvatarURL); err != nil {
			return nil, err
		}
		profiles[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *userRepository) CreateSession(ctx context.Context, s *user.UserSession) error {
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO user_sessions (id, user_id, is_revoked, expires_at, created_at)
        VALUES ($1, $2, $3, $4, $5)
    `, s.ID, s.UserID, s.IsRevoked, toMillis(s.ExpiresAt), toMillis(s.CreatedAt))
	return err
}

func (r *userRepository) GetSessionByID(ctx context.Context, sessionID uuid.UUID) (user.UserSession, error) {
	var (
		s                    user.UserSession
		expiresAt, createdAt int64
	)
	err := r.db.QueryRowContext(ctx, `
        SELECT id, user_id, is_revoked, expires_at, created_at
        FROM user_sessions
        WHERE id = $1
    `, sessionID).Scan(&s.ID, &s.UserID, &s.IsRevoked, &expiresAt, &createdAt)
	if err != nil {
		return user.UserSession{}, notFound(err, "session")
	}
	s.ExpiresAt = fromMillis(expiresAt)
	s.CreatedAt = fromMillis(createdAt)
	return s, nil
}

func (r *userRepository) RevokeSession(ctx context.Context, sessionID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `UPDATE user_sessions SET is_revoked = TRUE WHERE id = $1`, sessionID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("session: %w", ondot_errors.ErrNotFound)
	}
	return nil
}
