package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisPublisher publishes events on per-user Redis pub/sub channels.
type RedisPublisher struct {
	rdb *redis.Client
}

// NewRedisPublisher creates a publisher using the provided Redis client.
// A nil client turns Publish into a no-op.
func NewRedisPublisher(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{rdb: rdb}
}

// Publish sends the event to the channel of the user it is keyed by.
func (p *RedisPublisher) Publish(ctx context.Context, evt Event) error {
	if p.rdb == nil {
		return nil
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return p.rdb.Publish(ctx, UserChannel(evt.Key), payload).Err()
}

func (p *RedisPublisher) Backend() string { return "redis" }

// Close is a no-op; the client is owned by the caller.
func (p *RedisPublisher) Close() error { return nil }
