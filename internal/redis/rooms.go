package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Redis key prefixes for room membership
const (
	roomMembersPrefix     = "room:members:"  // Set of connection ids joined to a room
	instanceMembersPrefix = "room:instance:" // Set of room|conn entries owned by one instance
	instanceAlivePrefix   = "room:alive:"    // Heartbeat key of one instance, expires when it stops
	instancesKey          = "room:instances" // Set of instance ids that ever joined a room
)

// heartbeatsPerTTL is how many heartbeats fit in one liveness TTL.
const heartbeatsPerTTL = 3

// HeartbeatTTL is the liveness TTL used for a heartbeat interval.
func HeartbeatTTL(interval time.Duration) time.Duration {
	return interval * heartbeatsPerTTL
}

// RoomDirectory keeps room membership in Redis so that room sizes and
// presence are correct across every gateway instance. Each instance also
// records the memberships it owns under its own key, so members of an
// instance that stops heartbeating can be reaped by the others.
type RoomDirectory struct {
	client     *goredis.Client
	instanceID string
	logger     *zap.Logger
}

func NewRoomDirectory(client *goredis.Client, instanceID string, logger *zap.Logger) *RoomDirectory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RoomDirectory{client: client, instanceID: instanceID, logger: logger}
}

func (d *RoomDirectory) InstanceID() string {
	return d.instanceID
}

func instanceMembersKey(instanceID string) string {
	return instanceMembersPrefix + instanceID
}

func membership(room, connID string) string {
	return room + "|" + connID
}

func splitMembership(entry string) (room, connID string, ok bool) {
	i := strings.LastIndex(entry, "|")
	if i <= 0 || i == len(entry)-1 {
		return "", "", false
	}
	return entry[:i], entry[i+1:], true
}

func (d *RoomDirectory) Add(ctx context.Context, room, connID string) error {
	pipe := d.client.TxPipeline()
	pipe.SAdd(ctx, roomMembersPrefix+room, connID)
	pipe.SAdd(ctx, instanceMembersKey(d.instanceID), membership(room, connID))
	_, err := pipe.Exec(ctx)
	return err
}

func (d *RoomDirectory) Remove(ctx context.Context, room, connID string) error {
	pipe := d.client.TxPipeline()
	pipe.SRem(ctx, roomMembersPrefix+room, connID)
	pipe.SRem(ctx, instanceMembersKey(d.instanceID), membership(room, connID))
	_, err := pipe.Exec(ctx)
	return err
}

// RemoveAll drops connID from every room in one round trip.
func (d *RoomDirectory) RemoveAll(ctx context.Context, connID string, rooms []string) error {
	if len(rooms) == 0 {
		return nil
	}
	pipe := d.client.TxPipeline()
	for _, room := range rooms {
		pipe.SRem(ctx, roomMembersPrefix+room, connID)
		pipe.SRem(ctx, instanceMembersKey(d.instanceID), membership(room, connID))
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (d *RoomDirectory) Size(ctx context.Context, room string) (int, error) {
	n, err := d.client.SCard(ctx, roomMembersPrefix+room).Result()
	return int(n), err
}

// Sizes returns the member count of each room using a pipeline.
func (d *RoomDirectory) Sizes(ctx context.Context, rooms []string) (map[string]int, error) {
	sizes := make(map[string]int, len(rooms))
	if len(rooms) == 0 {
		return sizes, nil
	}
	pipe := d.client.Pipeline()
	cmds := make([]*goredis.IntCmd, len(rooms))
	for i, room := range rooms {
		cmds[i] = pipe.SCard(ctx, roomMembersPrefix+room)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}
	for i, room := range rooms {
		sizes[room] = int(cmds[i].Val())
	}
	return sizes, nil
}

// Heartbeat marks this instance alive for ttl. It must run once before the
// first Add so that other instances never reap fresh members.
func (d *RoomDirectory) Heartbeat(ctx context.Context, ttl time.Duration) error {
	pipe := d.client.TxPipeline()
	pipe.Set(ctx, instanceAlivePrefix+d.instanceID, time.Now().UnixMilli(), ttl)
	pipe.SAdd(ctx, instancesKey, d.instanceID)
	_, err := pipe.Exec(ctx)
	return err
}

// Reap removes the memberships of every other instance whose heartbeat
// expired and returns how many were removed.
func (d *RoomDirectory) Reap(ctx context.Context) (int, error) {
	instances, err := d.client.SMembers(ctx, instancesKey).Result()
	if err != nil {
		return 0, fmt.Errorf("list instances: %w", err)
	}

	reaped := 0
	for _, id := range instances {
		if id == d.instanceID {
			continue
		}
		alive, err := d.client.Exists(ctx, instanceAlivePrefix+id).Result()
		if err != nil {
			return reaped, fmt.Errorf("check instance %s: %w", id, err)
		}
		if alive > 0 {
			continue
		}
		n, err := d.reapInstance(ctx, id)
		reaped += n
		if err != nil {
			return reaped, err
		}
		d.logger.Info("reaped stale instance", zap.String("instance_id", id), zap.Int("members", n))
	}
	return reaped, nil
}

func (d *RoomDirectory) reapInstance(ctx context.Context, instanceID string) (int, error) {
	key := instanceMembersKey(instanceID)
	entries, err := d.client.SMembers(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("list members of %s: %w", instanceID, err)
	}

	pipe := d.client.TxPipeline()
	for _, entry := range entries {
		if room, connID, ok := splitMembership(entry); ok {
			pipe.SRem(ctx, roomMembersPrefix+room, connID)
		}
	}
	pipe.Del(ctx, key)
	pipe.SRem(ctx, instancesKey, instanceID)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("reap %s: %w", instanceID, err)
	}
	return len(entries), nil
}

// Run heartbeats every interval and reaps dead instances until ctx is done.
// The liveness TTL spans several intervals so one slow tick is tolerated.
func (d *RoomDirectory) Run(ctx context.Context, interval time.Duration) error {
	ttl := HeartbeatTTL(interval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := d.Heartbeat(ctx, ttl); err != nil {
				d.logger.Warn("room heartbeat failed", zap.Error(err))
				continue
			}
			if _, err := d.Reap(ctx); err != nil {
				d.logger.Warn("room reap failed", zap.Error(err))
			}
		}
	}
}
