package repository

import (
	"context"
	"fmt"

	"ondot-chat/internal/domain/notification"
	ondot_errors "ondot-chat/pkg/errors"

	"github.com/google/uuid"
)

const notificationColumns = `id, sender_id, receiver_id, message, kind, service_domain, shown, deleted, created_at`

type notificationRepository struct {
	db DBTX
}

func NewNotificationRepository(db DBTX) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	return r.db.QueryRowContext(ctx, `
        INSERT INTO notifications (sender_id, receiver_id, message, kind, service_domain, shown, deleted, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id
    `,
		n.SenderID,
		n.ReceiverID,
		n.Message,
		n.Kind,
		n.ServiceDomain,
		n.Shown,
		n.Deleted,
		toMillis(n.CreatedAt),
	).Scan(&n.ID)
}

func (r *notificationRepository) GetByID(ctx context.Context, id int64) (notification.Notification, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+notificationColumns+` FROM notifications WHERE id = $1`, id)
	n, err := scanNotification(row)
	if err != nil {
		return notification.Notification{}, notFound(err, fmt.Sprintf("notification %d", id))
	}
	return n, nil
}

func (r *notificationRepository) MarkShown(ctx context.Context, id int64) error {
	return r.setFlag(ctx, `UPDATE notifications SET shown = TRUE WHERE id = $1`, id)
}

func (r *notificationRepository) MarkDeleted(ctx context.Context, id int64) error {
	return r.setFlag(ctx, `UPDATE notifications SET deleted = TRUE WHERE id = $1`, id)
}

func (r *notificationRepository) setFlag(ctx context.Context, query string, id int64) error {
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("notification %d: %w", id, ondot_errors.ErrNotFound)
	}
	return nil
}

func (r *notificationRepository) ListForUser(ctx context.Context, userID uuid.UUID, serviceDomain string) ([]notification.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE receiver_id = $1 AND deleted = FALSE`
	args := []interface{}{userID}
	if serviceDomain != "" {
		query += ` AND service_domain = $2`
		args = append(args, serviceDomain)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []notification.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `
        SELECT COUNT(*)
        FROM notifications
        WHERE receiver_id = $1 AND shown = FALSE AND deleted = FALSE
    `, userID).Scan(&count)
	return count, err
}

func scanNotification(s scanner) (notification.Notification, error) {
	var (
		n         notification.Notification
		kind      string
		createdAt int64
	)
	if err := s.Scan(
		&n.ID,
		&n.SenderID,
		&n.ReceiverID,
		&n.Message,
		&kind,
		&n.ServiceDomain,
		&n.Shown,
		&n.Deleted,
		&createdAt,
	); err != nil {
		return notification.Notification{}, err
	}
	n.Kind = notification.Kind(kind)
	n.CreatedAt = fromMillis(createdAt)
	return n, nil
}
