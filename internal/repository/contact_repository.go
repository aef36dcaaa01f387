package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ondot-chat/internal/domain/contact"
	ondot_errors "ondot-chat/pkg/errors"

	"github.com/google/uuid"
)

const contactColumns = `id, party_a_id, party_b_id, status, counterpart_status, service_domain, created_at, updated_at`

type contactRepository struct {
	db DBTX
}

func NewContactRepository(db DBTX) ContactRepository {
	return &contactRepository{db: db}
}

func (r *contactRepository) CreateOrGet(ctx context.Context, initiator, responder uuid.UUID, domain contact.ServiceDomain, now time.Time) (contact.Relationship, bool, error) {
	low, high := contact.Pair(initiator, responder)

	// the partial unique index turns a concurrent duplicate into a no-op
	row := r.db.QueryRowContext(ctx, `
        INSERT INTO contact_relationships (party_a_id, party_b_id, party_low, party_high, status, counterpart_status, service_domain, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
        ON CONFLICT (party_low, party_high, service_domain) WHERE status <> 'CLOSED' DO NOTHING
        RETURNING `+contactColumns,
		initiator, responder, low, high,
		contact.StatusRequested, contact.StatusRequested.CounterpartLabel(),
		string(domain), toMillis(now),
	)
	rel, err := scanRelationship(row)
	if err == nil {
		return rel, true, nil
	}
	if isForeignKeyViolation(err) {
		return contact.Relationship{}, false, fmt.Errorf("unknown user: %w", ondot_errors.ErrNotFound)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return contact.Relationship{}, false, err
	}

	row = r.db.QueryRowContext(ctx, `
        SELECT `+contactColumns+`
        FROM contact_relationships
        WHERE party_low = $1 AND party_high = $2 AND service_domain = $3 AND status <> 'CLOSED'
    `, low, high, string(domain))
	rel, err = scanRelationship(row)
	if err != nil {
		return contact.Relationship{}, false, notFound(err, "open relationship")
	}
	return rel, false, nil
}

func (r *contactRepository) GetByID(ctx context.Context, id int64) (contact.Relationship, error) {
	row := r.db.QueryRowContext(ctx, `
        SELECT `+contactColumns+`
        FROM contact_relationships
        WHERE id = $1
    `, id)
	rel, err := scanRelationship(row)
	if err != nil {
		return contact.Relationship{}, notFound(err, fmt.Sprintf("relationship %d", id))
	}
	return rel, nil
}

// UpdateStatus moves the row from status from to status to. A row that no
// longer holds from was changed concurrently and yields ErrInvalidTransition,
// which keeps CLOSED terminal.
func (r *contactRepository) UpdateStatus(ctx context.Context, id int64, from, to contact.Status, counterpart contact.Label, now time.Time) (contact.Relationship, error) {
	row := r.db.QueryRowContext(ctx, `
        UPDATE contact_relationships
        SET status = $1, counterpart_status = $2, updated_at = $3
        WHERE id = $4 AND status = $5
        RETURNING `+contactColumns,
		to, counterpart, toMillis(now), id, from,
	)
	rel, err := scanRelationship(row)
	if err == nil {
		return rel, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return contact.Relationship{}, err
	}

	current, err := r.GetByID(ctx, id)
	if err != nil {
		return contact.Relationship{}, err
	}
	return contact.Relationship{}, fmt.Errorf("relationship %d is %s, not %s: %w", id, current.Status, from, ondot_errors.ErrInvalidTransition)
}

func (r *contactRepository) ListOpenForUser(ctx context.Context, userID uuid.UUID) ([]contact.Relationship, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT `+contactColumns+`
        FROM contact_relationships
        WHERE (party_a_id = $1 OR party_b_id = $1) AND status <> 'CLOSED'
        ORDER BY created_at DESC, id DESC
    `, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rels []contact.Relationship
	for rows.Next() {
		rel, err := scanRelationship(rows)
		if err != nil {
			return nil, err
		}
		rels = append(rels, rel)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return rels, nil
}

func (r *contactRepository) CountOpenForPair(ctx context.Context, a, b uuid.UUID, domain contact.ServiceDomain) (int, error) {
	low, high := contact.Pair(a, b)
	var count int
	err := r.db.QueryRowContext(ctx, `
        SELECT COUNT(*)
        FROM contact_relationships
        WHERE party_low = $1 AND party_high = $2 AND service_domain = $3 AND status <> 'CLOSED'
    `, low, high, string(domain)).Scan(&count)
	return count, err
}

func scanRelationship(s scanner) (contact.Relationship, error) {
	var (
		rel                  contact.Relationship
		status, counterpart  string
		domain               string
		createdAt, updatedAt int64
	)
	if err := s.Scan(
		&rel.ID,
		&rel.PartyAID,
		&rel.PartyBID,
		&status,
		&counterpart,
		&domain,
		&createdAt,
		&updatedAt,
	); err != nil {
		return contact.Relationship{}, err
	}
	parsed, err := contact.ParseStatus(status)
	if err != nil {
		return contact.Relationship{}, err
	}
	rel.Status = parsed
	rel.CounterpartStatus = contact.Label(counterpart)
	rel.ServiceDomain = contact.ServiceDomain(domain)
	rel.CreatedAt = fromMillis(createdAt)
	rel.UpdatedAt = fromMillis(updatedAt)
	return rel, nil
}
