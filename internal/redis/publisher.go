package redis

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
)

// RoomChannelPrefix prefixes the pub/sub channel of every room.
const RoomChannelPrefix = "room:"

// RoomEnvelope carries one room broadcast between gateway instances.
type RoomEnvelope struct {
	Origin  string          `json:"origin"`
	Room    string          `json:"room"`
	Except  string          `json:"except,omitempty"`
	Payload json.RawMessage `json:"payload"`
}

type Publisher struct {
	client *redis.Client
}

func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

func (p *Publisher) Publish(ctx context.Context, env RoomEnvelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, RoomChannelPrefix+env.Room, data).Err()
}
