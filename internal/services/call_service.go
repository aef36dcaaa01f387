package services

import (
	"context"
	"fmt"

	"ondot-chat/internal/events"
	ondot_errors "ondot-chat/pkg/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CallService relays WebRTC signaling inside call:<relationship> rooms.
// Membership of the room was authorized when the connection joined it, so
// relayed signals are not checked against the store again.
type CallService struct {
	rooms  Rooms
	chat   *ChatService
	logger *zap.Logger
}

func NewCallService(rooms Rooms, chat *ChatService, logger *zap.Logger) *CallService {
	return &CallService{rooms: rooms, chat: chat, logger: logger.Named("calls")}
}

// Relay forwards an offer, answer, candidate or reject to the other members
// of the call room. The payload is passed through untouched.
func (s *CallService) Relay(ctx context.Context, relationshipID int64, from uuid.UUID, connID string, sig *events.CallSignal) error {
	switch sig.Signal {
	case events.TypeCallOffer, events.TypeCallAnswer, events.TypeCallCandidate, events.TypeCallReject:
	default:
		return fmt.Errorf("signal %q: %w", sig.Signal, ondot_errors.ErrInvalidInput)
	}

	payload, err := events.Encode(sig.Signal, events.CallRelayed{
		RelationshipID: relationshipID,
		From:           from,
		Payload:        sig.Payload,
	})
	if err != nil {
		return err
	}
	return s.rooms.Broadcast(ctx, events.CallRoom(relationshipID), connID, payload)
}

// CalleeJoin announces the callee once the call room holds exactly two
// connections. It returns the call.joined frame for the callee, or nil when
// the room is not at two members. The size read is a point-in-time check.
func (s *CallService) CalleeJoin(ctx context.Context, relationshipID int64, callee uuid.UUID, connID string) ([]byte, error) {
	room := events.CallRoom(relationshipID)
	n, err := s.rooms.Size(ctx, room)
	if err != nil {
		return nil, err
	}
	if n != 2 {
		s.logger.Debug("call join ignored", zap.Int64("relationship_id", relationshipID), zap.Int("room_size", n))
		return nil, nil
	}

	joined, err := events.Encode(events.TypeCallPeerJoined, events.CallPeerJoined{RelationshipID: relationshipID, UserID: callee})
	if err != nil {
		return nil, err
	}
	if err := s.rooms.Broadcast(ctx, room, connID, joined); err != nil {
		return nil, err
	}
	return events.Encode(events.TypeCallJoined, events.CallJoined{RelationshipID: relationshipID})
}

// Finish stores the call summary and tells the other side the call ended.
func (s *CallService) Finish(ctx context.Context, relationshipID int64, from uuid.UUID, connID string, durationSeconds int64) error {
	if durationSeconds < 0 {
		return fmt.Errorf("negative duration: %w", ondot_errors.ErrInvalidInput)
	}
	m, err := s.chat.RecordCallSummary(ctx, relationshipID, from, durationSeconds)
	if err != nil {
		return err
	}

	payload, err := events.Encode(events.TypeCallFinish, events.CallFinished{
		RelationshipID:  relationshipID,
		From:            from,
		DurationSeconds: durationSeconds,
		MessageID:       m.ID,
	})
	if err != nil {
		return err
	}
	return s.rooms.Broadcast(ctx, events.CallRoom(relationshipID), connID, payload)
}
