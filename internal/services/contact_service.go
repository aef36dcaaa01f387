package services

import (
	"context"
	"fmt"
	"time"

	"ondot-chat/internal/domain/contact"
	"ondot-chat/internal/domain/notification"
	"ondot-chat/internal/events"
	"ondot-chat/internal/repository"
	ondot_errors "ondot-chat/pkg/errors"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// ContactView is a relationship as seen by one of its parties.
type ContactView struct {
	ID                int64                 `json:"id"`
	CounterpartID     uuid.UUID             `json:"counterpartId"`
	Role              string                `json:"role"`
	Status            contact.Status        `json:"status"`
	Label             contact.Label         `json:"label"`
	ServiceDomain     contact.ServiceDomain `json:"serviceDomain"`
	CounterpartOnline bool                  `json:"counterpartOnline"`
	CreatedAt         time.Time             `json:"createdAt"`
	UpdatedAt         time.Time             `json:"updatedAt"`
}

type ContactService struct {
	repo     repository.ContactRepository
	presence *PresenceService
	notifier *NotificationService
	logger   *zap.Logger
	now      func() time.Time
}

func NewContactService(repo repository.ContactRepository, presence *PresenceService, notifier *NotificationService, logger *zap.Logger) *ContactService {
	return &ContactService{
		repo:     repo,
		presence: presence,
		notifier: notifier,
		logger:   logger.Named("contacts"),
		now:      time.Now,
	}
}

// RequestContact opens a REQUESTED relationship from initiator to responder,
// or returns the open one that already exists for the pair and domain.
func (s *ContactService) RequestContact(ctx context.Context, initiator, responder uuid.UUID, domain contact.ServiceDomain) (ContactView, error) {
	if initiator == responder {
		return ContactView{}, fmt.Errorf("cannot request yourself: %w", ondot_errors.ErrInvalidInput)
	}
	if !domain.Valid() {
		return ContactView{}, fmt.Errorf("service domain %q: %w", domain, ondot_errors.ErrInvalidInput)
	}

	rel, created, err := s.repo.CreateOrGet(ctx, initiator, responder, domain, s.now())
	if err != nil {
		return ContactView{}, err
	}

	if created {
		s.notifyCounterpart(ctx, rel, initiator, notification.KindContactRequested, "You have a new contact request")
	}

	return s.view(ctx, rel, initiator), nil
}

// Transition moves a relationship to target on behalf of actor. Repeating a
// transition that already happened (CLOSED twice) is a successful no-op.
func (s *ContactService) Transition(ctx context.Context, relationshipID int64, actor uuid.UUID, target contact.Status) (ContactView, error) {
	rel, err := s.repo.GetByID(ctx, relationshipID)
	if err != nil {
		return ContactView{}, err
	}

	next, changed, err := rel.Status.Transition(target, rel.RoleOf(actor))
	if err != nil {
		return ContactView{}, fmt.Errorf("relationship %d: %w", relationshipID, err)
	}
	if !changed {
		return s.view(ctx, rel, actor), nil
	}

	rel, err = s.repo.UpdateStatus(ctx, rel.ID, rel.Status, next, next.CounterpartLabel(), s.now())
	if err != nil {
		return ContactView{}, err
	}

	s.notifyCounterpart(ctx, rel, actor, notification.KindContactChanged, contactChangedText(next))
	return s.view(ctx, rel, actor), nil
}

// ListForUser returns the caller's open relationships, newest first.
func (s *ContactService) ListForUser(ctx context.Context, userID uuid.UUID) ([]ContactView, error) {
	rels, err := s.repo.ListOpenForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	counterparts := lo.FilterMap(rels, func(r contact.Relationship, _ int) (uuid.UUID, bool) {
		return r.Counterpart(userID)
	})
	online, err := s.presence.OnlineSet(ctx, counterparts)
	if err != nil {
		s.logger.Warn("presence lookup failed", zap.Error(err))
		online = map[uuid.UUID]bool{}
	}

	return lo.Map(rels, func(r contact.Relationship, _ int) ContactView {
		other, _ := r.Counterpart(userID)
		return buildView(r, userID, online[other])
	}), nil
}

// notifyCounterpart persists a notification for the party other than actor
// and delivers contact.changed to their main channel.
func (s *ContactService) notifyCounterpart(ctx context.Context, rel contact.Relationship, actor uuid.UUID, kind notification.Kind, text string) {
	receiver, ok := rel.Counterpart(actor)
	if !ok {
		return
	}
	_, err := s.notifier.Notify(ctx, NotifyInput{
		SenderID:      uuid.NullUUID{UUID: actor, Valid: true},
		ReceiverID:    receiver,
		Message:       text,
		Kind:          kind,
		ServiceDomain: string(rel.ServiceDomain),
		PushTitle:     "Contacts",
		RealtimeType:  events.TypeContactChanged,
		RealtimeData:  events.ContactChanged{RelationshipID: rel.ID, Status: string(rel.Status)},
	})
	if err != nil {
		// the transition is already committed
		s.logger.Error("contact notification failed",
			zap.Int64("relationship_id", rel.ID),
			zap.String("receiver_id", receiver.String()),
			zap.Error(err),
		)
	}
}

func (s *ContactService) view(ctx context.Context, rel contact.Relationship, caller uuid.UUID) ContactView {
	other, _ := rel.Counterpart(caller)
	online, err := s.presence.IsOnline(ctx, other)
	if err != nil {
		s.logger.Warn("presence lookup failed", zap.String("user_id", other.String()), zap.Error(err))
	}
	return buildView(rel, caller, online)
}

func buildView(rel contact.Relationship, caller uuid.UUID, counterpartOnline bool) ContactView {
	other, _ := rel.Counterpart(caller)
	return ContactView{
		ID:                rel.ID,
		CounterpartID:     other,
		Role:              roleName(rel.RoleOf(caller)),
		Status:            rel.Status,
		Label:             rel.LabelFor(caller),
		ServiceDomain:     rel.ServiceDomain,
		CounterpartOnline: counterpartOnline,
		CreatedAt:         rel.CreatedAt,
		UpdatedAt:         rel.UpdatedAt,
	}
}

func roleName(r contact.Role) string {
	switch r {
	case contact.RoleInitiator:
		return "INITIATOR"
	case contact.RoleResponder:
		return "RESPONDER"
	}
	return ""
}

func contactChangedText(s contact.Status) string {
	switch s {
	case contact.StatusAllowed:
		return "Your contact request was accepted"
	case contact.StatusRejected:
		return "Your contact request was declined"
	case contact.StatusClosed:
		return "A contact was closed"
	}
	return "A contact changed"
}
