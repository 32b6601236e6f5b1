package session

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"elretiro/console/internal/config"
	"elretiro/console/internal/ids"
	"elretiro/console/internal/models"
	"elretiro/console/internal/security"
)

var ErrBusy = errors.New("request already in flight")

type Manager struct {
	store Store
	cfg   config.SessionConfig
}

func NewManager(store Store, cfg config.SessionConfig) *Manager {
	if cfg.CookieName == "" {
		cfg.CookieName = "retiro_session"
	}
	if cfg.BusyTTL <= 0 {
		cfg.BusyTTL = 30 * time.Second
	}
	return &Manager{store: store, cfg: cfg}
}

func (m *Manager) RefreshLeeway() time.Duration {
	return m.cfg.RefreshLeeway
}

// Create assigns an id to s and persists it.
func (m *Manager) Create(ctx context.Context, s models.Session) (models.Session, error) {
	now := time.Now()
	s.ID = ids.New()
	s.CreatedAt = now
	s.LastSeenAt = now
	if err := m.store.Save(ctx, s, m.cfg.TTL); err != nil {
		return models.Session{}, err
	}
	return s, nil
}

func (m *Manager) Update(ctx context.Context, s models.Session) error {
	s.LastSeenAt = time.Now()
	return m.store.Save(ctx, s, m.cfg.TTL)
}

// Lookup resolves a signed cookie value to its session.
func (m *Manager) Lookup(ctx context.Context, cookieValue string) (models.Session, error) {
	id, ok := security.VerifyValue(m.cfg.SigningSecret, cookieValue)
	if !ok {
		return models.Session{}, ErrNotFound
	}
	return m.store.Get(ctx, id)
}

func (m *Manager) Destroy(ctx context.Context, id string) error {
	return m.store.Delete(ctx, id)
}

// Acquire raises the busy flag for key. The returned func lowers it, unless
// the flag expired and was taken by another request in the meantime.
func (m *Manager) Acquire(ctx context.Context, key string) (func(), error) {
	token := ids.New()
	ok, err := m.store.Acquire(ctx, key, token, m.cfg.BusyTTL)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrBusy
	}
	return func() {
		_ = m.store.Release(context.Background(), key, token)
	}, nil
}

func (m *Manager) SetCookie(c *gin.Context, s models.Session) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    security.SignValue(m.cfg.SigningSecret, s.ID),
		Path:     "/",
		HttpOnly: true,
		Secure:   m.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(m.cfg.TTL.Seconds()),
	})
}

func (m *Manager) ReadCookie(c *gin.Context) string {
	value, err := c.Cookie(m.cfg.CookieName)
	if err != nil {
		return ""
	}
	return value
}

func (m *Manager) ClearCookie(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   m.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
