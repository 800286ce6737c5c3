package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisBus publishes and subscribes through Redis pub/sub, so every API
// instance sees every change.
type RedisBus struct {
	client *redis.Client
	logger *slog.Logger
}

// NewRedisBus connects to the Redis server at url (redis://host:port/db)
// and verifies it answers.
func NewRedisBus(ctx context.Context, url string, logger *slog.Logger) (*RedisBus, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("notify.NewRedisBus: parse url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("notify.NewRedisBus: ping: %w", err)
	}
	return &RedisBus{client: client, logger: logger}, nil
}

// Close releases the Redis connection pool.
func (b *RedisBus) Close() error {
	return b.client.Close()
}

func (b *RedisBus) Publish(ctx context.Context, e Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("notify.RedisBus.Publish: encode: %w", err)
	}
	if err := b.client.Publish(ctx, Channel(e.TripID), payload).Err(); err != nil {
		return fmt.Errorf("notify.RedisBus.Publish: %w", err)
	}
	return nil
}

// Subscribe waits for the subscription to be confirmed before returning, so
// no event published after Subscribe returns is missed.
func (b *RedisBus) Subscribe(ctx context.Context, tripID uuid.UUID) (<-chan Event, func(), error) {
	pubsub := b.client.Subscribe(ctx, Channel(tripID))
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, nil, fmt.Errorf("notify.RedisBus.Subscribe: %w", err)
	}

	out := make(chan Event, subscriberBuffer)
	done := make(chan struct{})
	var once sync.Once
	stop := func() { once.Do(func() { close(done) }) }

	go func() {
		defer close(out)
		defer pubsub.Close()
		msgs := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var e Event
				if err := json.Unmarshal([]byte(msg.Payload), &e); err != nil {
					b.logger.Warn("discarding malformed day event", "channel", msg.Channel, "error", err)
					continue
				}
				select {
				case out <- e:
				default:
					b.logger.Warn("subscriber lagging, event dropped", "trip_id", e.TripID)
				}
			}
		}
	}()
	return out, stop, nil
}

var _ Bus = (*RedisBus)(nil)
