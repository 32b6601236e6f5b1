package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"elretiro/console/internal/backend"
	"elretiro/console/internal/config"
	"elretiro/console/internal/models"
	"elretiro/console/internal/session"
)

type fakeBackend struct {
	mu sync.Mutex

	signInCalls  int
	refreshCalls int
	signOutCalls int
	createCalls  int
	insertCalls  int

	signInErr  error
	refreshErr error
	signOutErr error
	createErr  error
	insertErr  error

	tokens   backend.Tokens
	inserted []models.Profile
	tokenFor string

	// block holds SignInWithPassword until closed.
	block chan struct{}
}

func (f *fakeBackend) SignInWithPassword(ctx context.Context, email, password string) (backend.Tokens, error) {
	f.mu.Lock()
	f.signInCalls++
	block := f.block
	f.mu.Unlock()

	if block != nil {
		<-block
	}
	if f.signInErr != nil {
		return backend.Tokens{}, f.signInErr
	}
	return f.tokens, nil
}

func (f *fakeBackend) RefreshSession(ctx context.Context, refreshToken string) (backend.Tokens, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshCalls++
	if f.refreshErr != nil {
		return backend.Tokens{}, f.refreshErr
	}
	return f.tokens, nil
}

func (f *fakeBackend) SignOut(ctx context.Context, accessToken string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signOutCalls++
	return f.signOutErr
}

func (f *fakeBackend) CreateAccount(ctx context.Context, email, password string) (backend.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.createErr != nil {
		return backend.Account{}, f.createErr
	}
	return backend.Account{ID: "new-" + email, Email: email}, nil
}

func (f *fakeBackend) InsertProfile(ctx context.Context, accessToken string, profile models.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.insertCalls++
	f.tokenFor = accessToken
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, profile)
	return nil
}

func (f *fakeBackend) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.signInCalls + f.refreshCalls + f.signOutCalls + f.createCalls + f.insertCalls
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.AuthEvent
}

func (p *recordingPublisher) Publish(_ context.Context, event models.AuthEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []models.AuthEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]models.AuthEventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

func newTestManager() *session.Manager {
	return session.NewManager(session.NewMemoryStore(), config.SessionConfig{
		SigningSecret: "cookie-secret",
		TTL:           time.Hour,
		BusyTTL:       time.Minute,
	})
}

func newTestAuthService(b *fakeBackend, jwtSecret string) (*AuthService, *session.Manager, *recordingPublisher) {
	sessions := newTestManager()
	publisher := &recordingPublisher{}
	cfg := &config.AppConfig{Backend: config.BackendConfig{JWTSecret: jwtSecret}}
	return NewAuthService(b, sessions, publisher, cfg, zerolog.Nop()), sessions, publisher
}
