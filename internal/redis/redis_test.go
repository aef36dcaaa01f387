package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"ondot-chat/internal/domain/user"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRoomDirectory(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	_, client := newTestClient(t)
	dir := NewRoomDirectory(client, "node-a", nil)

	req.NoError(dir.Add(ctx, "chat:1", "conn-a"))
	req.NoError(dir.Add(ctx, "chat:1", "conn-b"))
	req.NoError(dir.Add(ctx, "chat:1", "conn-b"))
	req.NoError(dir.Add(ctx, "main:user:x", "conn-a"))

	size, err := dir.Size(ctx, "chat:1")
	req.NoError(err)
	req.Equal(2, size)

	req.NoError(dir.RemoveAll(ctx, "conn-a", []string{"chat:1", "main:user:x"}))
	sizes, err := dir.Sizes(ctx, []string{"chat:1", "main:user:x", "missing"})
	req.NoError(err)
	req.Equal(map[string]int{"chat:1": 1, "main:user:x": 0, "missing": 0}, sizes)

	req.NoError(dir.Remove(ctx, "chat:1", "conn-b"))
	size, err = dir.Size(ctx, "chat:1")
	req.NoError(err)
	req.Zero(size)
}

func TestRoomDirectoryReap(t *testing.T) {
	ctx := context.Background()
	ttl := HeartbeatTTL(time.Second)

	t.Run("should drop the members of an instance whose heartbeat expired", func(t *testing.T) {
		req := require.New(t)
		mr, client := newTestClient(t)
		dead := NewRoomDirectory(client, "node-a", nil)
		live := NewRoomDirectory(client, "node-b", nil)

		req.NoError(dead.Heartbeat(ctx, ttl))
		req.NoError(live.Heartbeat(ctx, ttl))
		req.NoError(dead.Add(ctx, "main:user:alice", "conn-a1"))
		req.NoError(dead.Add(ctx, "chat:7", "conn-a2"))
		req.NoError(live.Add(ctx, "chat:7", "conn-b1"))

		mr.FastForward(ttl + time.Second)
		req.NoError(live.Heartbeat(ctx, ttl))

		n, err := live.Reap(ctx)
		req.NoError(err)
		req.Equal(2, n)

		sizes, err := live.Sizes(ctx, []string{"main:user:alice", "chat:7"})
		req.NoError(err)
		req.Equal(map[string]int{"main:user:alice": 0, "chat:7": 1}, sizes)

		instances, err := client.SMembers(ctx, instancesKey).Result()
		req.NoError(err)
		req.Equal([]string{"node-b"}, instances)
	})

	t.Run("should keep the members of a live instance", func(t *testing.T) {
		req := require.New(t)
		_, client := newTestClient(t)
		a := NewRoomDirectory(client, "node-a", nil)
		b := NewRoomDirectory(client, "node-b", nil)

		req.NoError(a.Heartbeat(ctx, ttl))
		req.NoError(b.Heartbeat(ctx, ttl))
		req.NoError(a.Add(ctx, "main:user:alice", "conn-a1"))

		n, err := b.Reap(ctx)
		req.NoError(err)
		req.Zero(n)

		size, err := b.Size(ctx, "main:user:alice")
		req.NoError(err)
		req.Equal(1, size)
	})

	t.Run("should forget the instance entry when a member leaves", func(t *testing.T) {
		req := require.New(t)
		_, client := newTestClient(t)
		dir := NewRoomDirectory(client, "node-a", nil)

		req.NoError(dir.Add(ctx, "chat:1", "conn-a"))
		req.NoError(dir.Add(ctx, "main:user:x", "conn-a"))
		req.NoError(dir.RemoveAll(ctx, "conn-a", []string{"chat:1", "main:user:x"}))

		owned, err := client.SCard(ctx, instanceMembersKey("node-a")).Result()
		req.NoError(err)
		req.Zero(owned)
	})
}

func TestPublishSubscribe(t *testing.T) {
	req := require.New(t)
	_, client := newTestClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan RoomEnvelope, 1)
	ready := make(chan struct{})
	go func() {
		_ = NewSubscriber(client, zap.NewNop()).Subscribe(ctx, ready, func(env RoomEnvelope) {
			received <- env
		})
	}()

	select {
	case <-ready:
	case <-time.After(2 * time.Second):
		req.Fail("subscription not ready")
	}

	sent := RoomEnvelope{Origin: "node-1", Room: "chat:7", Except: "conn-a", Payload: json.RawMessage(`{"type":"x"}`)}
	req.NoError(NewPublisher(client).Publish(context.Background(), sent))

	select {
	case env := <-received:
		req.Equal(sent.Origin, env.Origin)
		req.Equal(sent.Room, env.Room)
		req.Equal(sent.Except, env.Except)
		req.JSONEq(`{"type":"x"}`, string(env.Payload))
	case <-time.After(2 * time.Second):
		req.Fail("envelope not delivered")
	}
}

func TestSessionCache(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	mr, client := newTestClient(t)
	cache := NewSessionCache(client, time.Minute)
	s := user.UserSession{ID: uuid.New(), UserID: uuid.New(), ExpiresAt: time.Now().Add(time.Hour).UTC()}

	_, ok, err := cache.GetSession(ctx, s.ID)
	req.NoError(err)
	req.False(ok)

	req.NoError(cache.SetSession(ctx, s))
	got, ok, err := cache.GetSession(ctx, s.ID)
	req.NoError(err)
	req.True(ok)
	req.Equal(s.UserID, got.UserID)
	req.True(got.ExpiresAt.Equal(s.ExpiresAt))

	mr.FastForward(2 * time.Minute)
	_, ok, err = cache.GetSession(ctx, s.ID)
	req.NoError(err)
	req.False(ok, "entry should expire after the cache ttl")

	req.NoError(cache.SetSession(ctx, s))
	req.NoError(cache.InvalidateSession(ctx, s.ID))
	_, ok, err = cache.GetSession(ctx, s.ID)
	req.NoError(err)
	req.False(ok)
}

func TestRateLimiter(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	mr, client := newTestClient(t)
	limiter := NewRateLimiter(client, RateLimitConfig{MessageLimit: 2, MessageWindow: time.Minute})

	first, err := limiter.AllowMessage(ctx, "u1")
	req.NoError(err)
	req.True(first.Allowed)
	req.Equal(1, first.Remaining)

	second, err := limiter.AllowMessage(ctx, "u1")
	req.NoError(err)
	req.True(second.Allowed)

	third, err := limiter.AllowMessage(ctx, "u1")
	req.NoError(err)
	req.False(third.Allowed)

	other, err := limiter.AllowMessage(ctx, "u2")
	req.NoError(err)
	req.True(other.Allowed)

	mr.FastForward(61 * time.Second)
	again, err := limiter.AllowMessage(ctx, "u1")
	req.NoError(err)
	req.True(again.Allowed)
}

func TestRateLimiterContactRequests(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	_, client := newTestClient(t)
	limiter := NewRateLimiter(client, RateLimitConfig{
		MessageLimit: 5, MessageWindow: time.Minute,
		ContactLimit: 1, ContactWindow: time.Hour,
	})

	first, err := limiter.AllowContactRequest(ctx, "u1")
	req.NoError(err)
	req.True(first.Allowed)

	second, err := limiter.AllowContactRequest(ctx, "u1")
	req.NoError(err)
	req.False(second.Allowed)
	req.Equal(1, second.Limit)

	message, err := limiter.AllowMessage(ctx, "u1")
	req.NoError(err)
	req.True(message.Allowed, "contact and message windows are independent")
}
