package repository

import (
	"context"

	"ondot-chat/internal/domain/user"

	"github.com/google/uuid"
)

type deviceRepository struct {
	db DBTX
}

func NewDeviceRepository(db DBTX) DeviceRepository {
	return &deviceRepository{db: db}
}

// AddPushToken registers a token, moving it to the new owner if another
// account had it.
func (r *deviceRepository) AddPushToken(ctx context.Context, pt *user.PushToken) error {
	return r.db.QueryRowContext(ctx, `
        INSERT INTO push_tokens (user_id, platform, token, is_active, created_at)
        VALUES ($1, $2, $3, TRUE, $4)
        ON CONFLICT (token) DO UPDATE SET user_id = excluded.user_id, platform = excluded.platform, is_active = TRUE
        RETURNING id
    `, pt.UserID, pt.Platform, pt.Token, toMillis(pt.CreatedAt)).Scan(&pt.ID)
}

func (r *deviceRepository) GetActivePushTokens(ctx context.Context, userID uuid.UUID) ([]user.PushToken, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, user_id, platform, token, is_active, created_at
        FROM push_tokens
        WHERE user_id = $1 AND is_active = TRUE
        ORDER BY id
    `, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tokens []user.PushToken
	for rows.Next() {
		var (
			pt        user.PushToken
			createdAt int64
		)
		if err := rows.Scan(&pt.ID, &pt.UserID, &pt.Platform, &pt.Token, &pt.IsActive, &createdAt); err != nil {
			return nil, err
		}
		pt.CreatedAt = fromMillis(createdAt)
		tokens = append(tokens, pt)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tokens, nil
}

func (r *deviceRepository) DeactivatePushToken(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE push_tokens SET is_active = FALSE WHERE token = $1`, token)
	return err
}
