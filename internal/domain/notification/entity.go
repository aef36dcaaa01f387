package notification

import (
	"time"

	"github.com/google/uuid"
)

// Kind is the notification type.
type Kind string

const (
	KindContactRequested Kind = "CONTACT_REQUESTED"
	KindContactChanged   Kind = "CONTACT_CHANGED"
	KindMessage          Kind = "MESSAGE"
	KindGift             Kind = "GIFT"
	KindSystem           Kind = "SYSTEM"
)

// Notification represents the notifications table.
// SenderID is nil for system notifications.
type Notification struct {
	ID            int64         `json:"id"`
	SenderID      uuid.NullUUID `json:"senderId"`
	ReceiverID    uuid.UUID     `json:"receiverId"`
	Message       string        `json:"message"`
	Kind          Kind          `json:"kind"`
	ServiceDomain string        `json:"serviceDomain"`
	Shown         bool          `json:"shown"`
	Deleted       bool          `json:"deleted"`
	CreatedAt     time.Time     `json:"createdAt"`
}
