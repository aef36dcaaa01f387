package services

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"ondot-chat/internal/domain/notification"
	"ondot-chat/internal/domain/user"
	"ondot-chat/internal/events"
	"ondot-chat/internal/repository"
	ondot_errors "ondot-chat/pkg/errors"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

const defaultPushTimeout = 5 * time.Second

// NotifyInput describes one notification. RealtimeType and RealtimeData
// replace the default "notification" event for callers that push a typed
// event (contact.changed) alongside the persisted row.
type NotifyInput struct {
	SenderID      uuid.NullUUID
	ReceiverID    uuid.UUID
	Message       string
	Kind          notification.Kind
	ServiceDomain string
	PushTitle     string

	RealtimeType string
	RealtimeData any
}

type NotificationService struct {
	repo        repository.NotificationRepository
	presence    *PresenceService
	rooms       Rooms
	push        PushProvider
	tokens      DeviceTokenSource
	pushTimeout time.Duration
	logger      *zap.Logger
	now         func() time.Time

	inflight sync.WaitGroup
}

type NotificationServiceConfig struct {
	Repo     repository.NotificationRepository
	Presence *PresenceService
	Rooms    Rooms
	// Push and Tokens are optional; push is skipped when either is nil.
	Push        PushProvider
	Tokens      DeviceTokenSource
	PushTimeout time.Duration
	Logger      *zap.Logger
}

func NewNotificationService(cfg NotificationServiceConfig) *NotificationService {
	timeout := cfg.PushTimeout
	if timeout <= 0 {
		timeout = defaultPushTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		repo:        cfg.Repo,
		presence:    cfg.Presence,
		rooms:       cfg.Rooms,
		push:        cfg.Push,
		tokens:      cfg.Tokens,
		pushTimeout: timeout,
		logger:      logger.Named("notifications"),
		now:         time.Now,
	}
}

// Notify persists the notification, delivers it to the receiver's main
// channel when they are online and dispatches push in the background.
// Only the persistence step can fail the call.
func (s *NotificationService) Notify(ctx context.Context, in NotifyInput) (notification.Notification, error) {
	if in.ReceiverID == uuid.Nil {
		return notification.Notification{}, fmt.Errorf("receiver is required: %w", ondot_errors.ErrInvalidInput)
	}

	n := notification.Notification{
		SenderID:      in.SenderID,
		ReceiverID:    in.ReceiverID,
		Message:       in.Message,
		Kind:          in.Kind,
		ServiceDomain: in.ServiceDomain,
		CreatedAt:     s.now(),
	}
	if err := s.repo.Create(ctx, &n); err != nil {
		return notification.Notification{}, fmt.Errorf("persist notification: %w", err)
	}

	s.deliverRealtime(ctx, n, in)
	s.dispatchPush(ctx, n, in.PushTitle)

	return n, nil
}

func (s *NotificationService) deliverRealtime(ctx context.Context, n notification.Notification, in NotifyInput) {
	online, err := s.presence.IsOnline(ctx, n.ReceiverID)
	if err != nil {
		s.logger.Warn("presence lookup failed", zap.String("receiver_id", n.ReceiverID.String()), zap.Error(err))
		return
	}
	if !online {
		return
	}

	eventType, data := events.TypeNotification, any(n)
	if in.RealtimeType != "" {
		eventType, data = in.RealtimeType, in.RealtimeData
	}
	payload, err := events.Encode(eventType, data)
	if err != nil {
		s.logger.Error("encode realtime notification", zap.Int64("notification_id", n.ID), zap.Error(err))
		return
	}
	room := events.PersonalRoom(events.ChannelMain, n.ReceiverID)
	if err := s.rooms.Broadcast(ctx, room, "", payload); err != nil {
		s.logger.Warn("realtime delivery failed", zap.String("room", room), zap.Error(err))
	}
}

func (s *NotificationService) dispatchPush(ctx context.Context, n notification.Notification, title string) {
	if s.push == nil || s.tokens == nil {
		return
	}

	// the push outlives the request that triggered it
	pushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.pushTimeout)
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		defer cancel()
		if err := s.sendPush(pushCtx, n, title); err != nil {
			s.logger.Warn("push delivery failed",
				zap.Int64("notification_id", n.ID),
				zap.String("receiver_id", n.ReceiverID.String()),
				zap.Error(err),
			)
		}
	}()
}

func (s *NotificationService) sendPush(ctx context.Context, n notification.Notification, title string) error {
	tokens, err := s.tokens.GetActivePushTokens(ctx, n.ReceiverID)
	if err != nil {
		return &ondot_errors.DeliveryError{Provider: "tokens", Err: err}
	}
	if len(tokens) == 0 {
		return nil
	}

	data := map[string]string{
		"notificationId": strconv.FormatInt(n.ID, 10),
		"kind":           string(n.Kind),
		"serviceDomain":  n.ServiceDomain,
	}
	messages := lo.Map(tokens, func(t user.PushToken, _ int) PushMessage {
		return PushMessage{To: t.Token, Title: title, Body: n.Message, Data: data, Sound: "default"}
	})
	if err := s.push.Send(ctx, messages); err != nil {
		return &ondot_errors.DeliveryError{Provider: "push", Err: err}
	}
	return nil
}

// Wait blocks until every background push started so far has finished.
func (s *NotificationService) Wait() {
	s.inflight.Wait()
}

func (s *NotificationService) MarkShown(ctx context.Context, id int64, actor uuid.UUID) error {
	if err := s.authorizeReceiver(ctx, id, actor); err != nil {
		return err
	}
	return s.repo.MarkShown(ctx, id)
}

func (s *NotificationService) MarkDeleted(ctx context.Context, id int64, actor uuid.UUID) error {
	if err := s.authorizeReceiver(ctx, id, actor); err != nil {
		return err
	}
	return s.repo.MarkDeleted(ctx, id)
}

func (s *NotificationService) authorizeReceiver(ctx context.Context, id int64, actor uuid.UUID) error {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if n.ReceiverID != actor {
		return fmt.Errorf("notification %d: %w", id, ondot_errors.ErrForbidden)
	}
	return nil
}

// ListForUser returns non-deleted notifications newest first. An empty
// serviceDomain lists every domain.
func (s *NotificationService) ListForUser(ctx context.Context, userID uuid.UUID, serviceDomain string) ([]notification.Notification, error) {
	return s.repo.ListForUser(ctx, userID, serviceDomain)
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}
