package session

import (
	"context"
	"errors"
	"time"

	"elretiro/console/internal/models"
)

var ErrNotFound = errors.New("session not found")

// Store keeps sessions and the busy flags that block duplicate submissions.
type Store interface {
	Get(ctx context.Context, id string) (models.Session, error)
	Save(ctx context.Context, s models.Session, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
	// Acquire sets key to token if it is not already held and reports
	// whether it did.
	Acquire(ctx context.Context, key, token string, ttl time.Duration) (bool, error)
	// Release clears key only while it still holds token.
	Release(ctx context.Context, key, token string) error
}
