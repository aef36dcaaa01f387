package services_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"ondot-chat/config"
	"ondot-chat/internal/domain/user"
	"ondot-chat/internal/events"
	"ondot-chat/internal/repository"
	"ondot-chat/internal/services"
	"ondot-chat/pkg/database/dbtest"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type frame struct {
	Room   string
	Except string
	Env    events.Envelope
}

// fakeRooms records broadcasts and serves configured room sizes.
type fakeRooms struct {
	mu     sync.Mutex
	sizes  map[string]int
	frames []frame
}

func newFakeRooms() *fakeRooms {
	return &fakeRooms{sizes: map[string]int{}}
}

func (f *fakeRooms) set(room string, n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sizes[room] = n
}

func (f *fakeRooms) Size(_ context.Context, room string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sizes[room], nil
}

func (f *fakeRooms) Sizes(_ context.Context, rooms []string) (map[string]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]int, len(rooms))
	for _, r := range rooms {
		out[r] = f.sizes[r]
	}
	return out, nil
}

func (f *fakeRooms) Broadcast(_ context.Context, room, except string, payload []byte) error {
	var env events.Envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames = append(f.frames, frame{Room: room, Except: except, Env: env})
	return nil
}

// sent returns the frames broadcast to room, in order.
func (f *fakeRooms) sent(room string) []frame {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []frame
	for _, fr := range f.frames {
		if fr.Room == room {
			out = append(out, fr)
		}
	}
	return out
}

type testEnv struct {
	db       *sql.DB
	repos    repository.Repositories
	rooms    *fakeRooms
	presence *services.PresenceService
	notifier *services.NotificationService
	contacts *services.ContactService
	chat     *services.ChatService
	calls    *services.CallService
	alice    uuid.UUID
	bob      uuid.UUID
}

func newTestEnv(t *testing.T, limiter services.MessageLimiter) *testEnv {
	t.Helper()
	db := dbtest.Open(t)
	repos := repository.New(db)
	rooms := newFakeRooms()
	logger := zap.NewNop()

	presence := services.NewPresenceService(rooms)
	notifier := services.NewNotificationService(services.NotificationServiceConfig{
		Repo:     repos.Notifications,
		Presence: presence,
		Rooms:    rooms,
		Logger:   logger,
	})
	chat := services.NewChatService(db, rooms, limiter, logger)

	return &testEnv{
		db:       db,
		repos:    repos,
		rooms:    rooms,
		presence: presence,
		notifier: notifier,
		contacts: services.NewContactService(repos.Contacts, presence, notifier, logger),
		chat:     chat,
		calls:    services.NewCallService(rooms, chat, logger),
		alice:    createUser(t, repos, "alice"),
		bob:      createUser(t, repos, "bob"),
	}
}

func createUser(t *testing.T, repos repository.Repositories, name string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	require.NoError(t, repos.Users.CreateProfile(context.Background(), user.Profile{ID: id, DisplayName: name}, time.Now()))
	return id
}

func testConfig() *config.Config {
	return &config.Config{JWTSecret: "test-secret", JWTExpiryMin: 15}
}

func mainRoom(id uuid.UUID) string {
	return events.PersonalRoom(events.ChannelMain, id)
}
