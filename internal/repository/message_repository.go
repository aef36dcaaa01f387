package repository

import (
	"context"
	"fmt"

	"ondot-chat/internal/domain/message"

	"github.com/google/uuid"
)

const messageColumns = `id, relationship_id, sender_id, receiver_id, content, kind, sender_read, receiver_read, created_at`

type messageRepository struct {
	db DBTX
}

func NewMessageRepository(db DBTX) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, m *message.Message) error {
	return r.db.QueryRowContext(ctx, `
        INSERT INTO messages (relationship_id, sender_id, receiver_id, content, kind, sender_read, receiver_read, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id
    `,
		m.RelationshipID,
		m.SenderID,
		m.ReceiverID,
		m.Content,
		m.Kind,
		m.SenderRead,
		m.ReceiverRead,
		toMillis(m.CreatedAt),
	).Scan(&m.ID)
}

func (r *messageRepository) GetByID(ctx context.Context, id int64) (message.Message, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+messageColumns+` FROM messages WHERE id = $1`, id)
	m, err := scanMessage(row)
	if err != nil {
		return message.Message{}, notFound(err, fmt.Sprintf("message %d", id))
	}
	return m, nil
}

func (r *messageRepository) ListByRelationship(ctx context.Context, relationshipID int64) ([]message.Message, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT `+messageColumns+`
        FROM messages
        WHERE relationship_id = $1
        ORDER BY created_at ASC, id ASC
    `, relationshipID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []message.Message{}
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *messageRepository) MarkReadForReceiver(ctx context.Context, relationshipID int64, receiverID uuid.UUID) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
        UPDATE messages
        SET receiver_read = TRUE
        WHERE relationship_id = $1 AND receiver_id = $2 AND receiver_read = FALSE
    `, relationshipID, receiverID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanMessage(s scanner) (message.Message, error) {
	var (
		m         message.Message
		kind      string
		createdAt int64
	)
	if err := s.Scan(
		&m.ID,
		&m.RelationshipID,
		&m.SenderID,
		&m.ReceiverID,
		&m.Content,
		&kind,
		&m.SenderRead,
		&m.ReceiverRead,
		&createdAt,
	); err != nil {
		return message.Message{}, err
	}
	m.Kind = message.Kind(kind)
	m.CreatedAt = fromMillis(createdAt)
	return m, nil
}
