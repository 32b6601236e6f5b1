package middleware

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"elretiro/console/internal/guard"
	"elretiro/console/internal/models"
	"elretiro/console/internal/service"
	"elretiro/console/internal/session"
)

const currentSessionKey = "current_session"

type sessionRefresher interface {
	Refresh(ctx context.Context, sess models.Session, segment guard.Segment) (service.RefreshResult, error)
}

// Session resolves the session cookie and refreshes backend tokens that are
// about to expire. A session that cannot be loaded or refreshed is treated as
// absent.
func Session(manager *session.Manager, refresher sessionRefresher, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		value := manager.ReadCookie(c)
		if value == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		sess, err := manager.Lookup(ctx, value)
		if err != nil {
			if !errors.Is(err, session.ErrNotFound) {
				log.Error().Err(err).Msg("session lookup failed")
			}
			manager.ClearCookie(c)
			c.Next()
			return
		}

		if sess.ExpiresWithin(manager.RefreshLeeway()) {
			result, err := refresher.Refresh(ctx, sess, guard.SegmentOf(c.Request.URL.Path))
			if err != nil || result.Session == nil {
				manager.ClearCookie(c)
				c.Next()
				return
			}
			sess = *result.Session
		}

		c.Set(currentSessionKey, sess)
		c.Next()
	}
}

func CurrentSession(c *gin.Context) (models.Session, bool) {
	val, exists := c.Get(currentSessionKey)
	if !exists {
		return models.Session{}, false
	}
	sess, ok := val.(models.Session)
	return sess, ok
}
