// Package messaging publishes domain events over Redis pub/sub.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Publisher sends a message to a channel.
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) error
}

// Message is the envelope written to every channel.
type Message struct {
	Channel string          `json:"channel"`
	Payload json.RawMessage `json:"payload"`
	Time    time.Time       `json:"time"`
}

// RedisPublisher publishes JSON envelopes with go-redis.
type RedisPublisher struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisPublisher creates a publisher. Channels are namespaced with prefix when it is set.
func NewRedisPublisher(client redis.UniversalClient, prefix string) *RedisPublisher {
	return &RedisPublisher{client: client, prefix: prefix}
}

func (r *RedisPublisher) Publish(ctx context.Context, channel string, message interface{}) error {
	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	envelope, err := json.Marshal(Message{
		Channel: channel,
		Payload: payload,
		Time:    time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal envelope: %w", err)
	}

	if r.prefix != "" {
		channel = r.prefix + ":" + channel
	}
	return r.client.Publish(ctx, channel, envelope).Err()
}

// NopPublisher drops every message.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, interface{}) error { return nil }
