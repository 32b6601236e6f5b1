package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"elretiro/console/internal/events"
	"elretiro/console/internal/models"
)

// Counter increments a key and keeps it for ttl.
type Counter interface {
	Increment(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

type RedisCounter struct {
	client *redis.Client
}

func NewRedisCounter(client *redis.Client) *RedisCounter {
	return &RedisCounter{client: client}
}

func (c *RedisCounter) Increment(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	pipe := c.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// Processor turns auth events into per-day counters.
type Processor struct {
	counter    Counter
	counterTTL time.Duration
	logger     zerolog.Logger
}

func NewProcessor(counter Counter, counterTTL time.Duration, logger zerolog.Logger) *Processor {
	return &Processor{
		counter:    counter,
		counterTTL: counterTTL,
		logger:     logger,
	}
}

func (p *Processor) Handle(ctx context.Context, msg redis.XMessage) error {
	event, err := decodeEvent(msg.Values)
	if err != nil {
		return fmt.Errorf("decode event %s: %w", msg.ID, err)
	}

	switch event.Type {
	case models.AuthEventSignedIn,
		models.AuthEventSignedOut,
		models.AuthEventTokenRefreshed,
		models.AuthEventUserCreated:
		return p.count(ctx, event)
	default:
		p.logger.Warn().Str("type", string(event.Type)).Str("message_id", msg.ID).Msg("unknown event type")
		return nil
	}
}

func (p *Processor) count(ctx context.Context, event models.AuthEvent) error {
	key := events.CounterKey(event.Type, event.At)
	n, err := p.counter.Increment(ctx, key, p.counterTTL)
	if err != nil {
		return fmt.Errorf("increment %s: %w", key, err)
	}
	p.logger.Debug().
		Str("type", string(event.Type)).
		Str("user_id", event.UserID).
		Int64("count", n).
		Msg("event counted")
	return nil
}

func decodeEvent(values map[string]interface{}) (models.AuthEvent, error) {
	str := func(key string) string {
		if v, ok := values[key].(string); ok {
			return v
		}
		return ""
	}

	event := models.AuthEvent{
		Type:      models.AuthEventType(str("type")),
		UserID:    str("userId"),
		Email:     str("email"),
		SessionID: str("sessionId"),
	}
	if event.Type == "" {
		return models.AuthEvent{}, fmt.Errorf("missing type")
	}

	event.At = time.Now()
	if at := str("at"); at != "" {
		parsed, err := time.Parse(time.RFC3339, at)
		if err != nil {
			return models.AuthEvent{}, fmt.Errorf("parse at: %w", err)
		}
		event.At = parsed
	}
	return event, nil
}
