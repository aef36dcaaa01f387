package services

import (
	"context"

	"ondot-chat/internal/events"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// PresenceService answers "is this user connected anywhere" from the
// membership of each user's main channel personal room.
type PresenceService struct {
	rooms Rooms
}

func NewPresenceService(rooms Rooms) *PresenceService {
	return &PresenceService{rooms: rooms}
}

func (s *PresenceService) IsOnline(ctx context.Context, userID uuid.UUID) (bool, error) {
	n, err := s.rooms.Size(ctx, events.PersonalRoom(events.ChannelMain, userID))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// OnlineSet resolves presence for many users with a single room lookup.
func (s *PresenceService) OnlineSet(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	userIDs = lo.Uniq(userIDs)
	roomOf := lo.SliceToMap(userIDs, func(id uuid.UUID) (uuid.UUID, string) {
		return id, events.PersonalRoom(events.ChannelMain, id)
	})

	sizes, err := s.rooms.Sizes(ctx, lo.Values(roomOf))
	if err != nil {
		return nil, err
	}
	return lo.MapValues(roomOf, func(room string, _ uuid.UUID) bool {
		return sizes[room] > 0
	}), nil
}
