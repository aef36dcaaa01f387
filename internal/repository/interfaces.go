package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"ondot-chat/internal/domain/contact"
	"ondot-chat/internal/domain/message"
	"ondot-chat/internal/domain/notification"
	"ondot-chat/internal/domain/user"
)

// UserRepository covers the slice of the user store the real-time core
// reads: profile summaries and session validity.
type UserRepository interface {
	CreateProfile(ctx context.Context, p user.Profile, createdAt time.Time) error
	GetProfiles(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]user.Profile, error)

	CreateSession(ctx context.Context, s *user.UserSession) error
	GetSessionByID(ctx context.Context, sessionID uuid.UUID) (user.UserSession, error)
	RevokeSession(ctx context.Context, sessionID uuid.UUID) error
}

type DeviceRepository interface {
	AddPushToken(ctx context.Context, pt *user.PushToken) error
	GetActivePushTokens(ctx context.Context, userID uuid.UUID) ([]user.PushToken, error)
	DeactivatePushToken(ctx context.Context, token string) error
}

type ContactRepository interface {
	// CreateOrGet inserts a REQUESTED relationship unless an open one already
	// exists for the unordered pair and domain. created reports which.
	CreateOrGet(ctx context.Context, initiator, responder uuid.UUID, domain contact.ServiceDomain, now time.Time) (rel contact.Relationship, created bool, err error)
	GetByID(ctx context.Context, id int64) (contact.Relationship, error)
	UpdateStatus(ctx context.Context, id int64, from, to contact.Status, counterpart contact.Label, now time.Time) (contact.Relationship, error)
	ListOpenForUser(ctx context.Context, userID uuid.UUID) ([]contact.Relationship, error)
	CountOpenForPair(ctx context.Context, a, b uuid.UUID, domain contact.ServiceDomain) (int, error)
}

type MessageRepository interface {
	Create(ctx context.Context, m *message.Message) error
	GetByID(ctx context.Context, id int64) (message.Message, error)
	ListByRelationship(ctx context.Context, relationshipID int64) ([]message.Message, error)
	// MarkReadForReceiver flips every unread message addressed to
	// receiverID in one statement and returns the number flipped.
	MarkReadForReceiver(ctx context.Context, relationshipID int64, receiverID uuid.UUID) (int64, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, n *notification.Notification) error
	GetByID(ctx context.Context, id int64) (notification.Notification, error)
	MarkShown(ctx context.Context, id int64) error
	MarkDeleted(ctx context.Context, id int64) error
	ListForUser(ctx context.Context, userID uuid.UUID, serviceDomain string) ([]notification.Notification, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
}

// Repositories bundles every store bound to one DBTX, so a transaction can
// hand out tx scoped repositories.
type Repositories struct {
	Users         UserRepository
	Devices       DeviceRepository
	Contacts      ContactRepository
	Messages      MessageRepository
	Notifications NotificationRepository
}

func New(db DBTX) Repositories {
	return Repositories{
		Users:         NewUserRepository(db),
		Devices:       NewDeviceRepository(db),
		Contacts:      NewContactRepository(db),
		Messages:      NewMessageRepository(db),
		Notifications: NewNotificationRepository(db),
	}
}

type scanner interface {
	Scan(dest ...interface{}) error
}
