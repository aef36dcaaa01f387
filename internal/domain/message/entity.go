package message

import (
	"fmt"
	"time"

	ondot_errors "ondot-chat/pkg/errors"

	"github.com/google/uuid"
)

// Kind classifies message content.
type Kind string

const (
	KindText        Kind = "TEXT"
	KindImage       Kind = "IMAGE"
	KindGift        Kind = "GIFT"
	KindCallSummary Kind = "CALL_SUMMARY"
)

// ParseKind accepts the kinds a client may send. CALL_SUMMARY is written
// only by the call relay.
func ParseKind(s string) (Kind, error) {
	if s == "" {
		return KindText, nil
	}
	switch k := Kind(s); k {
	case KindText, KindImage, KindGift:
		return k, nil
	}
	return "", fmt.Errorf("message kind %q: %w", s, ondot_errors.ErrInvalidInput)
}

// Message represents the messages table
type Message struct {
	ID             int64     `json:"id"`
	RelationshipID int64     `json:"relationshipId"`
	SenderID       uuid.UUID `json:"senderId"`
	ReceiverID     uuid.UUID `json:"receiverId"`
	Content        string    `json:"content"`
	Kind           Kind      `json:"kind"`
	SenderRead     bool      `json:"senderRead"`
	ReceiverRead   bool      `json:"receiverRead"`
	CreatedAt      time.Time `json:"createdAt"`
}
