// Package redis implements the broadcast Channel over Redis pub/sub so that
// separate processes sharing a namespace see each other's sync pings.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"hrdesk/internal/broadcast"
	"hrdesk/internal/observability"
)

// Channel publishes JSON-encoded broadcast messages on one Redis channel.
type Channel struct {
	rdb    *redis.Client
	topic  string
	logger observability.Logger

	mu   sync.Mutex
	subs []*redis.PubSub
}

// New returns a Channel on topic. The client is owned by the caller.
func New(rdb *redis.Client, topic string, logger observability.Logger) *Channel {
	if logger == nil {
		logger = observability.NoopLogger()
	}
	return &Channel{rdb: rdb, topic: topic, logger: logger}
}

// Publish implements broadcast.Channel.
func (c *Channel) Publish(ctx context.Context, msg broadcast.Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode broadcast: %w", err)
	}
	if err := c.rdb.Publish(ctx, c.topic, payload).Err(); err != nil {
		return fmt.Errorf("redis publish %s: %w", c.topic, err)
	}
	return nil
}

// Subscribe implements broadcast.Channel. Messages are decoded and handed to
// h on a dedicated goroutine; undecodable payloads are logged and skipped.
func (c *Channel) Subscribe(ctx context.Context, h broadcast.Handler) (func(), error) {
	ps := c.rdb.Subscribe(ctx, c.topic)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("redis subscribe %s: %w", c.topic, err)
	}
	c.mu.Lock()
	c.subs = append(c.subs, ps)
	c.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for m := range ps.Channel() {
			msg, err := decode(m.Payload)
			if err != nil {
				c.logger.Warn("dropping broadcast payload", "topic", c.topic, "error", err)
				continue
			}
			h(msg)
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() {
			_ = ps.Close()
			<-done
		})
	}, nil
}

// Ping implements broadcast.Pinger.
func (c *Channel) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close closes every subscription opened through the channel.
func (c *Channel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, ps := range c.subs {
		_ = ps.Close()
	}
	c.subs = nil
	return nil
}

func decode(payload string) (broadcast.Message, error) {
	var msg broadcast.Message
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		return broadcast.Message{}, fmt.Errorf("decode broadcast: %w", err)
	}
	return msg, nil
}
