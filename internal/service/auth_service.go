package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"elretiro/console/internal/backend"
	"elretiro/console/internal/config"
	"elretiro/console/internal/events"
	"elretiro/console/internal/guard"
	"elretiro/console/internal/models"
	"elretiro/console/internal/security"
	"elretiro/console/internal/session"
	"elretiro/console/internal/validation"
)

type AuthBackend interface {
	SignInWithPassword(ctx context.Context, email, password string) (backend.Tokens, error)
	RefreshSession(ctx context.Context, refreshToken string) (backend.Tokens, error)
	SignOut(ctx context.Context, accessToken string) error
}

type AuthService struct {
	backend   AuthBackend
	sessions  *session.Manager
	events    events.Publisher
	jwtSecret string
	log       zerolog.Logger
}

func NewAuthService(
	b AuthBackend,
	sessions *session.Manager,
	publisher events.Publisher,
	cfg *config.AppConfig,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		backend:   b,
		sessions:  sessions,
		events:    publisher,
		jwtSecret: cfg.Backend.JWTSecret,
		log:       log,
	}
}

type LoginInput struct {
	Email    string
	Password string
}

type LoginResult struct {
	Session  models.Session
	Decision guard.Decision
}

func (s *AuthService) SignIn(ctx context.Context, input LoginInput) (LoginResult, error) {
	form := validation.LoginForm()
	form.Set(validation.FieldEmail, strings.TrimSpace(input.Email))
	form.Set(validation.FieldPassword, input.Password)
	if !form.Validate() {
		return LoginResult{}, &FormError{Form: form}
	}

	email := strings.ToLower(form.Value(validation.FieldEmail))

	release, err := s.sessions.Acquire(ctx, "login:"+email)
	if err != nil {
		if errors.Is(err, session.ErrBusy) {
			return LoginResult{}, ErrBusy
		}
		return LoginResult{}, &RemoteError{Message: MsgSignInFailed, Err: err}
	}
	defer release()

	tokens, err := s.backend.SignInWithPassword(ctx, email, input.Password)
	if err != nil {
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) {
			s.log.Warn().Err(err).Str("email", email).Msg("sign in rejected")
			return LoginResult{}, &RemoteError{Message: MsgSignInRejected, Err: err}
		}
		s.log.Error().Err(err).Str("email", email).Msg("sign in failed")
		return LoginResult{}, &RemoteError{Message: MsgSignInFailed, Err: err}
	}

	sess, err := s.sessionFromTokens(tokens)
	if err != nil {
		s.log.Error().Err(err).Msg("unusable backend session")
		return LoginResult{}, &RemoteError{Message: MsgSignInFailed, Err: err}
	}
	sess, err = s.sessions.Create(ctx, sess)
	if err != nil {
		s.log.Error().Err(err).Msg("persist session failed")
		return LoginResult{}, &RemoteError{Message: MsgSignInFailed, Err: err}
	}

	s.publish(ctx, models.AuthEventSignedIn, sess)

	machine := guard.NewMachine(false)
	return LoginResult{
		Session:  sess,
		Decision: machine.Apply(guard.EventSignInSucceeded, guard.SegmentEntry),
	}, nil
}

// SignOut always ends the local session; a failed backend logout is only
// logged because the user is navigated away regardless.
func (s *AuthService) SignOut(ctx context.Context, sess models.Session) (guard.Decision, error) {
	if err := s.backend.SignOut(ctx, sess.AccessToken); err != nil {
		s.log.Warn().Err(err).Str("user_id", sess.UserID).Msg("backend sign out failed")
	}

	machine := guard.NewMachine(true)
	decision := machine.Apply(guard.EventSignedOut, guard.SegmentAuthenticated)

	if err := s.sessions.Destroy(ctx, sess.ID); err != nil {
		return decision, fmt.Errorf("destroy session: %w", err)
	}

	s.publish(ctx, models.AuthEventSignedOut, sess)
	return decision, nil
}

type RefreshResult struct {
	// Session is nil when the refresh failed and the session was ended.
	Session  *models.Session
	Decision guard.Decision
}

// Refresh exchanges the refresh token for new tokens. A rejected refresh is a
// sign-out.
func (s *AuthService) Refresh(ctx context.Context, sess models.Session, segment guard.Segment) (RefreshResult, error) {
	machine := guard.NewMachine(true)

	tokens, err := s.backend.RefreshSession(ctx, sess.RefreshToken)
	if err == nil {
		var refreshed models.Session
		refreshed, err = s.sessionFromTokens(tokens)
		if err == nil {
			refreshed.ID = sess.ID
			refreshed.CreatedAt = sess.CreatedAt
			err = s.sessions.Update(ctx, refreshed)
		}
		if err == nil {
			s.publish(ctx, models.AuthEventTokenRefreshed, refreshed)
			return RefreshResult{
				Session:  &refreshed,
				Decision: machine.Apply(guard.EventTokenRefreshed, segment),
			}, nil
		}
	}

	s.log.Info().Err(err).Str("user_id", sess.UserID).Msg("session refresh failed, signing out")
	if derr := s.sessions.Destroy(ctx, sess.ID); derr != nil {
		s.log.Error().Err(derr).Msg("destroy session failed")
	}
	s.publish(ctx, models.AuthEventSignedOut, sess)

	return RefreshResult{
		Decision: machine.Apply(guard.EventSignedOut, segment),
	}, fmt.Errorf("refresh session: %w", err)
}

func (s *AuthService) sessionFromTokens(tokens backend.Tokens) (models.Session, error) {
	if tokens.AccessToken == "" {
		return models.Session{}, errors.New("backend returned no access token")
	}

	sess := models.Session{
		UserID:       tokens.User.ID,
		Email:        tokens.User.Email,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresAt:    tokens.Expiry(time.Now()),
	}

	claims, err := security.ParseAccessToken(tokens.AccessToken, s.jwtSecret)
	if err != nil {
		if s.jwtSecret != "" {
			return models.Session{}, fmt.Errorf("verify access token: %w", err)
		}
		s.log.Debug().Err(err).Msg("access token claims unreadable, using response body")
	} else {
		sess.UserID = claims.UserID()
		if claims.Email != "" {
			sess.Email = claims.Email
		}
		if exp := claims.Expiry(); !exp.IsZero() {
			sess.ExpiresAt = exp
		}
	}

	if sess.UserID == "" {
		return models.Session{}, errors.New("backend session has no user id")
	}
	return sess, nil
}

func (s *AuthService) publish(ctx context.Context, eventType models.AuthEventType, sess models.Session) {
	err := s.events.Publish(ctx, models.AuthEvent{
		Type:      eventType,
		UserID:    sess.UserID,
		Email:     sess.Email,
		SessionID: sess.ID,
		At:        time.Now(),
	})
	if err != nil {
		s.log.Warn().Err(err).Str("type", string(eventType)).Msg("publish auth event failed")
	}
}
