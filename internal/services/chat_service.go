package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
	"unicode/utf8"

	"ondot-chat/internal/domain/contact"
	"ondot-chat/internal/domain/message"
	"ondot-chat/internal/domain/user"
	"ondot-chat/internal/events"
	"ondot-chat/internal/repository"
	ondot_errors "ondot-chat/pkg/errors"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

const previewRunes = 80

// EnterResult is the snapshot a party receives when opening a chat. It is
// sent verbatim as the chat.history payload.
type EnterResult struct {
	RelationshipID     int64             `json:"relationshipId"`
	Status             contact.Status    `json:"status"`
	Label              contact.Label     `json:"label"`
	Profiles           []user.Profile    `json:"profiles"`
	AwaitingMyDecision bool              `json:"awaitingMyDecision"`
	Messages           []message.Message `json:"messages"`
	MarkedRead         int64             `json:"markedRead"`
}

type SendInput struct {
	RelationshipID int64
	SenderID       uuid.UUID
	// ConnID is the sending connection, excluded from the room broadcast.
	ConnID  string
	Content string
	Kind    string
}

type ChatService struct {
	db      repository.DBTX
	repos   repository.Repositories
	rooms   Rooms
	limiter MessageLimiter
	logger  *zap.Logger
	now     func() time.Time
}

// NewChatService builds the messaging channel. limiter may be nil.
func NewChatService(db repository.DBTX, rooms Rooms, limiter MessageLimiter, logger *zap.Logger) *ChatService {
	return &ChatService{
		db:      db,
		repos:   repository.New(db),
		rooms:   rooms,
		limiter: limiter,
		logger:  logger.Named("chat"),
		now:     time.Now,
	}
}

// Authorize loads the relationship and checks userID is one of its parties.
func (s *ChatService) Authorize(ctx context.Context, relationshipID int64, userID uuid.UUID) (contact.Relationship, error) {
	rel, err := s.repos.Contacts.GetByID(ctx, relationshipID)
	if err != nil {
		return contact.Relationship{}, err
	}
	if !rel.IsParty(userID) {
		return contact.Relationship{}, fmt.Errorf("relationship %d: %w", relationshipID, ondot_errors.ErrForbidden)
	}
	return rel, nil
}

// Enter marks every unread message addressed to userID as read and returns
// the full history, both in one transaction. Calling it again with nothing
// new to mark changes nothing.
func (s *ChatService) Enter(ctx context.Context, relationshipID int64, userID uuid.UUID) (EnterResult, error) {
	rel, err := s.Authorize(ctx, relationshipID, userID)
	if err != nil {
		return EnterResult{}, err
	}

	var (
		marked  int64
		history []message.Message
	)
	err = repository.WithTx(ctx, s.db, func(tx repository.DBTX) error {
		repos := repository.New(tx)
		var err error
		if marked, err = repos.Messages.MarkReadForReceiver(ctx, rel.ID, userID); err != nil {
			return fmt.Errorf("mark read: %w", err)
		}
		if history, err = repos.Messages.ListByRelationship(ctx, rel.ID); err != nil {
			return fmt.Errorf("load history: %w", err)
		}
		return nil
	})
	if err != nil {
		return EnterResult{}, err
	}

	profiles, err := s.repos.Users.GetProfiles(ctx, []uuid.UUID{rel.PartyAID, rel.PartyBID})
	if err != nil {
		return EnterResult{}, fmt.Errorf("load profiles: %w", err)
	}

	return EnterResult{
		RelationshipID:     rel.ID,
		Status:             rel.Status,
		Label:              rel.LabelFor(userID),
		Profiles: lo.FilterMap([]uuid.UUID{rel.PartyAID, rel.PartyBID}, func(id uuid.UUID, _ int) (user.Profile, bool) {
			p, ok := profiles[id]
			return p, ok
		}),
		AwaitingMyDecision: rel.AwaitingDecisionBy(userID),
		Messages:           history,
		MarkedRead:         marked,
	}, nil
}

// Send persists a message and fans it out. The receiver counts as present
// when the chat room holds at least two connections at the time of send.
func (s *ChatService) Send(ctx context.Context, in SendInput) (message.Message, error) {
	kind, err := message.ParseKind(in.Kind)
	if err != nil {
		return message.Message{}, err
	}
	if in.Content == "" {
		return message.Message{}, fmt.Errorf("empty message: %w", ondot_errors.ErrInvalidInput)
	}

	rel, err := s.Authorize(ctx, in.RelationshipID, in.SenderID)
	if err != nil {
		return message.Message{}, err
	}
	if !rel.AcceptsMessages() {
		return message.Message{}, fmt.Errorf("relationship %d is %s: %w", rel.ID, rel.Status, ondot_errors.ErrRelationshipInactive)
	}
	if err := s.checkRate(ctx, in.SenderID); err != nil {
		return message.Message{}, err
	}

	receiver, _ := rel.Counterpart(in.SenderID)
	room := events.ChatRoom(rel.ID)
	present := s.receiverPresent(ctx, room)

	m := message.Message{
		RelationshipID: rel.ID,
		SenderID:       in.SenderID,
		ReceiverID:     receiver,
		Content:        in.Content,
		Kind:           kind,
		SenderRead:     true,
		ReceiverRead:   present,
		CreatedAt:      s.now(),
	}
	if err := s.repos.Messages.Create(ctx, &m); err != nil {
		return message.Message{}, fmt.Errorf("persist message: %w", err)
	}

	s.broadcast(ctx, room, in.ConnID, events.TypeMessageReceived, m)
	if !present {
		s.broadcast(ctx, events.PersonalRoom(events.ChannelMain, receiver), "", events.TypeMessagePreview, events.MessagePreview{
			RelationshipID: rel.ID,
			MessageID:      m.ID,
			SenderID:       m.SenderID,
			Kind:           string(m.Kind),
			Preview:        previewOf(m),
			CreatedAt:      m.CreatedAt,
		})
	}
	return m, nil
}

// Typing tells the rest of the chat room that userID is composing.
func (s *ChatService) Typing(ctx context.Context, relationshipID int64, userID uuid.UUID, connID string) error {
	payload, err := events.Encode(events.TypePeerTyping, events.PeerTyping{RelationshipID: relationshipID, UserID: userID})
	if err != nil {
		return err
	}
	return s.rooms.Broadcast(ctx, events.ChatRoom(relationshipID), connID, payload)
}

type callSummary struct {
	DurationSeconds int64 `json:"durationSeconds"`
}

// RecordCallSummary writes the single CALL_SUMMARY message for a finished
// call. The user who ended the call is recorded as its sender.
func (s *ChatService) RecordCallSummary(ctx context.Context, relationshipID int64, endedBy uuid.UUID, durationSeconds int64) (message.Message, error) {
	rel, err := s.Authorize(ctx, relationshipID, endedBy)
	if err != nil {
		return message.Message{}, err
	}
	receiver, _ := rel.Counterpart(endedBy)

	content, err := json.Marshal(callSummary{DurationSeconds: durationSeconds})
	if err != nil {
		return message.Message{}, err
	}
	m := message.Message{
		RelationshipID: rel.ID,
		SenderID:       endedBy,
		ReceiverID:     receiver,
		Content:        string(content),
		Kind:           message.KindCallSummary,
		SenderRead:     true,
		ReceiverRead:   true,
		CreatedAt:      s.now(),
	}
	if err := s.repos.Messages.Create(ctx, &m); err != nil {
		return message.Message{}, fmt.Errorf("persist call summary: %w", err)
	}

	s.broadcast(ctx, events.ChatRoom(rel.ID), "", events.TypeMessageReceived, m)
	return m, nil
}

// checkRate fails open when the limiter itself is unavailable.
func (s *ChatService) checkRate(ctx context.Context, userID uuid.UUID) error {
	if s.limiter == nil {
		return nil
	}
	res, err := s.limiter.AllowMessage(ctx, userID.String())
	if err != nil {
		s.logger.Warn("rate limiter unavailable", zap.String("user_id", userID.String()), zap.Error(err))
		return nil
	}
	if !res.Allowed {
		return fmt.Errorf("retry in %s: %w", res.ResetIn, ondot_errors.ErrRateLimited)
	}
	return nil
}

func (s *ChatService) receiverPresent(ctx context.Context, room string) bool {
	n, err := s.rooms.Size(ctx, room)
	if err != nil {
		s.logger.Warn("room size lookup failed", zap.String("room", room), zap.Error(err))
		return false
	}
	return n >= 2
}

// broadcast delivery is best effort; the message is already stored
func (s *ChatService) broadcast(ctx context.Context, room, except, eventType string, data any) {
	payload, err := events.Encode(eventType, data)
	if err != nil {
		s.logger.Error("encode event", zap.String("type", eventType), zap.Error(err))
		return
	}
	if err := s.rooms.Broadcast(ctx, room, except, payload); err != nil {
		s.logger.Warn("room broadcast failed", zap.String("room", room), zap.String("type", eventType), zap.Error(err))
	}
}

func previewOf(m message.Message) string {
	switch m.Kind {
	case message.KindImage:
		return "[image]"
	case message.KindGift:
		return "[gift]"
	}
	if utf8.RuneCountInString(m.Content) <= previewRunes {
		return m.Content
	}
	return string([]rune(m.Content)[:previewRunes]) + "…"
}
