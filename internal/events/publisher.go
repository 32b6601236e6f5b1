package events

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"elretiro/console/internal/models"
)

type Publisher interface {
	Publish(ctx context.Context, event models.AuthEvent) error
}

// StreamPublisher appends auth events to a redis stream read by the worker.
type StreamPublisher struct {
	client *redis.Client
	stream string
}

func NewStreamPublisher(client *redis.Client, stream string) *StreamPublisher {
	return &StreamPublisher{client: client, stream: stream}
}

func (p *StreamPublisher) Publish(ctx context.Context, event models.AuthEvent) error {
	if p.client == nil {
		return nil
	}
	if event.At.IsZero() {
		event.At = time.Now()
	}
	_, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: 100000,
		Approx: true,
		Values: map[string]any{
			"type":      string(event.Type),
			"userId":    event.UserID,
			"email":     event.Email,
			"sessionId": event.SessionID,
			"at":        event.At.UTC().Format(time.RFC3339),
		},
	}).Result()
	if err != nil {
		return fmt.Errorf("xadd %s: %w", p.stream, err)
	}
	return nil
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, models.AuthEvent) error { return nil }

// CounterKey is the per-day counter the worker maintains for an event type.
func CounterKey(eventType models.AuthEventType, day time.Time) string {
	return "stats:" + string(eventType) + ":" + day.UTC().Format("2006-01-02")
}
