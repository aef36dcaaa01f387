package websocket

import (
	"context"

	"ondot-chat/internal/redis"
)

// RoomSubscriber receives room broadcasts published by every instance.
type RoomSubscriber interface {
	Subscribe(ctx context.Context, ready chan<- struct{}, handler func(redis.RoomEnvelope)) error
}

// RedisBridge feeds broadcasts from other gateway instances into the hub.
type RedisBridge struct {
	subscriber RoomSubscriber
	hub        *Hub
}

func NewRedisBridge(subscriber RoomSubscriber, hub *Hub) *RedisBridge {
	return &RedisBridge{subscriber: subscriber, hub: hub}
}

// Run blocks until ctx is done. ready is closed once the subscription is
// live and may be nil.
func (b *RedisBridge) Run(ctx context.Context, ready chan<- struct{}) error {
	return b.subscriber.Subscribe(ctx, ready, b.hub.DeliverRemote)
}
