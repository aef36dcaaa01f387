package redis

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Subscriber struct {
	client *redis.Client
	logger *zap.Logger
}

func NewSubscriber(client *redis.Client, logger *zap.Logger) *Subscriber {
	return &Subscriber{client: client, logger: logger}
}

// Subscribe receives every room broadcast until ctx is done. ready, when
// not nil, is closed once the subscription is confirmed.
func (s *Subscriber) Subscribe(ctx context.Context, ready chan<- struct{}, handler func(RoomEnvelope)) error {
	sub := s.client.PSubscribe(ctx, RoomChannelPrefix+"*")
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return err
	}
	if ready != nil {
		close(ready)
	}

	for {
		msg, err := sub.ReceiveMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		var env RoomEnvelope
		if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
			s.logger.Warn("dropping malformed room envelope", zap.String("channel", msg.Channel), zap.Error(err))
			continue
		}
		handler(env)
	}
}
