package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type ContactChanged struct {
	RelationshipID int64  `json:"relationshipId"`
	Status         string `json:"status"`
}

// MessagePreview is pushed to a receiver who is not in the chat room.
type MessagePreview struct {
	RelationshipID int64     `json:"relationshipId"`
	MessageID      int64     `json:"messageId"`
	SenderID       uuid.UUID `json:"senderId"`
	Kind           string    `json:"kind"`
	Preview        string    `json:"preview"`
	CreatedAt      time.Time `json:"createdAt"`
}

type PeerTyping struct {
	RelationshipID int64     `json:"relationshipId"`
	UserID         uuid.UUID `json:"userId"`
}

type CallPeerJoined struct {
	RelationshipID int64     `json:"relationshipId"`
	UserID         uuid.UUID `json:"userId"`
}

type CallJoined struct {
	RelationshipID int64 `json:"relationshipId"`
}

// CallRelayed wraps a verbatim signal payload with its origin.
type CallRelayed struct {
	RelationshipID int64           `json:"relationshipId"`
	From           uuid.UUID       `json:"from"`
	Payload        json.RawMessage `json:"payload,omitempty"`
}

type CallFinished struct {
	RelationshipID  int64     `json:"relationshipId"`
	From            uuid.UUID `json:"from"`
	DurationSeconds int64     `json:"durationSeconds"`
	MessageID       int64     `json:"messageId"`
}
