package session

import (
	"context"
	"sync"
	"time"

	"elretiro/console/internal/models"
)

type busyEntry struct {
	token string
	until time.Time
}

type memoryEntry struct {
	session   models.Session
	expiresAt time.Time
}

// MemoryStore is an in-process Store for single-instance deployments without
// redis.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]memoryEntry
	busy     map[string]busyEntry
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]memoryEntry),
		busy:     make(map[string]busyEntry),
		now:      time.Now,
	}
}

func (m *MemoryStore) Get(_ context.Context, id string) (models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.sessions[id]
	if !ok {
		return models.Session{}, ErrNotFound
	}
	if !entry.expiresAt.IsZero() && m.now().After(entry.expiresAt) {
		delete(m.sessions, id)
		return models.Session{}, ErrNotFound
	}
	return entry.session, nil
}

func (m *MemoryStore) Save(_ context.Context, sess models.Session, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry := memoryEntry{session: sess}
	if ttl > 0 {
		entry.expiresAt = m.now().Add(ttl)
	}
	m.sessions[sess.ID] = entry
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *MemoryStore) Acquire(_ context.Context, key, token string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if entry, held := m.busy[key]; held && now.Before(entry.until) {
		return false, nil
	}
	m.busy[key] = busyEntry{token: token, until: now.Add(ttl)}
	return true, nil
}

func (m *MemoryStore) Release(_ context.Context, key, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if entry, held := m.busy[key]; held && entry.token == token {
		delete(m.busy, key)
	}
	return nil
}
