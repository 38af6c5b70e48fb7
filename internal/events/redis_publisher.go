package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisPublisher is the subset of the go-redis client used to forward events.
type RedisPublisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisForwarder serialises events to JSON and publishes them on a channel
// so other processes can follow ticket activity.
type RedisForwarder struct {
	client  RedisPublisher
	channel string
}

// NewRedisForwarder builds a forwarder for channel.
func NewRedisForwarder(client RedisPublisher, channel string) *RedisForwarder {
	return &RedisForwarder{client: client, channel: channel}
}

// Channel returns the target channel name.
func (f *RedisForwarder) Channel() string {
	return f.channel
}

// Forward publishes event. It satisfies EventHandler.
func (f *RedisForwarder) Forward(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event %s: %w", event.ID, err)
	}
	if err := f.client.Publish(ctx, f.channel, body).Err(); err != nil {
		return fmt.Errorf("publish event %s: %w", event.ID, err)
	}
	return nil
}
