package websocket

import (
	"context"
	"fmt"
	"sync"

	"ondot-chat/internal/redis"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RoomDirectory is the shared membership store. Implemented by
// redis.RoomDirectory.
type RoomDirectory interface {
	Add(ctx context.Context, room, connID string) error
	Remove(ctx context.Context, room, connID string) error
	RemoveAll(ctx context.Context, connID string, rooms []string) error
	Size(ctx context.Context, room string) (int, error)
	Sizes(ctx context.Context, rooms []string) (map[string]int, error)
}

// RoomPublisher forwards room broadcasts to other gateway instances.
type RoomPublisher interface {
	Publish(ctx context.Context, env redis.RoomEnvelope) error
}

type HubConfig struct {
	// Directory and Publisher are nil in single process mode.
	Directory  RoomDirectory
	Publisher  RoomPublisher
	InstanceID string
	Logger     *zap.Logger
}

// Hub tracks the connections of this instance and the rooms they joined.
// Join and Leave are synchronous so that room sizes read right after a
// connect or disconnect are already up to date.
type Hub struct {
	mu sync.RWMutex

	// clients maps connection ID to client
	clients map[string]*Client

	// rooms maps room name to the local clients joined to it
	rooms map[string]map[*Client]struct{}

	directory  RoomDirectory
	publisher  RoomPublisher
	instanceID string
	logger     *zap.Logger
}

func NewHub(cfg HubConfig) *Hub {
	instanceID := cfg.InstanceID
	if instanceID == "" {
		instanceID = uuid.NewString()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients:    make(map[string]*Client),
		rooms:      make(map[string]map[*Client]struct{}),
		directory:  cfg.Directory,
		publisher:  cfg.Publisher,
		instanceID: instanceID,
		logger:     logger.Named("hub"),
	}
}

func (h *Hub) InstanceID() string {
	return h.instanceID
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	h.clients[client.ID] = client
	h.mu.Unlock()
}

// Unregister removes a client and closes its send channel. Rooms must be
// left with LeaveAll first.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	delete(h.clients, client.ID)
	h.mu.Unlock()
	client.closeSend()
}

// Join adds client to room locally and in the shared directory.
func (h *Hub) Join(ctx context.Context, client *Client, room string) error {
	h.mu.Lock()
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*Client]struct{})
		h.rooms[room] = members
	}
	members[client] = struct{}{}
	client.addRoom(room)
	h.mu.Unlock()

	if h.directory != nil {
		if err := h.directory.Add(ctx, room, client.ID); err != nil {
			h.Leave(ctx, client, room)
			return fmt.Errorf("join %s: %w", room, err)
		}
	}
	return nil
}

func (h *Hub) Leave(ctx context.Context, client *Client, room string) {
	h.mu.Lock()
	h.removeLocked(client, room)
	h.mu.Unlock()

	if h.directory != nil {
		if err := h.directory.Remove(ctx, room, client.ID); err != nil {
			h.logger.Warn("room directory remove failed", zap.String("room", room), zap.String("client_id", client.ID), zap.Error(err))
		}
	}
}

// LeaveAll removes client from every room it joined.
func (h *Hub) LeaveAll(ctx context.Context, client *Client) {
	h.mu.Lock()
	rooms := client.Rooms()
	for _, room := range rooms {
		h.removeLocked(client, room)
	}
	h.mu.Unlock()

	if h.directory != nil {
		if err := h.directory.RemoveAll(ctx, client.ID, rooms); err != nil {
			h.logger.Warn("room directory cleanup failed", zap.String("client_id", client.ID), zap.Strings("rooms", rooms), zap.Error(err))
		}
	}
}

func (h *Hub) removeLocked(client *Client, room string) {
	if members, ok := h.rooms[room]; ok {
		delete(members, client)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
	client.removeRoom(room)
}

// Size returns the number of connections joined to room across every
// instance when a directory is configured, else on this instance.
func (h *Hub) Size(ctx context.Context, room string) (int, error) {
	if h.directory != nil {
		return h.directory.Size(ctx, room)
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room]), nil
}

func (h *Hub) Sizes(ctx context.Context, rooms []string) (map[string]int, error) {
	if h.directory != nil {
		return h.directory.Sizes(ctx, rooms)
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	sizes := make(map[string]int, len(rooms))
	for _, room := range rooms {
		sizes[room] = len(h.rooms[room])
	}
	return sizes, nil
}

// Broadcast delivers payload to the local members of room, skipping the
// connection except, and forwards it to the other instances.
func (h *Hub) Broadcast(ctx context.Context, room, except string, payload []byte) error {
	h.deliver(room, except, payload)
	if h.publisher == nil {
		return nil
	}
	return h.publisher.Publish(ctx, redis.RoomEnvelope{
		Origin:  h.instanceID,
		Room:    room,
		Except:  except,
		Payload: payload,
	})
}

// DeliverRemote hands a broadcast published by another instance to the
// local members of its room.
func (h *Hub) DeliverRemote(env redis.RoomEnvelope) {
	if env.Origin == h.instanceID {
		return
	}
	h.deliver(env.Room, env.Except, env.Payload)
}

func (h *Hub) deliver(room, except string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[room] {
		if c.ID == except {
			continue
		}
		if !c.Send(payload) {
			h.logger.Warn("dropping frame for slow client", zap.String("client_id", c.ID), zap.String("room", room))
		}
	}
}

// ClientCount returns the number of connections on this instance
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
