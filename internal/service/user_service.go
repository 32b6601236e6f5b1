package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"elretiro/console/internal/backend"
	"elretiro/console/internal/events"
	"elretiro/console/internal/models"
	"elretiro/console/internal/session"
	"elretiro/console/internal/validation"
)

type UserBackend interface {
	CreateAccount(ctx context.Context, email, password string) (backend.Account, error)
	InsertProfile(ctx context.Context, accessToken string, profile models.Profile) error
}

type UserService struct {
	backend  UserBackend
	sessions *session.Manager
	events   events.Publisher
	log      zerolog.Logger
}

func NewUserService(b UserBackend, sessions *session.Manager, publisher events.Publisher, log zerolog.Logger) *UserService {
	return &UserService{
		backend:  b,
		sessions: sessions,
		events:   publisher,
		log:      log,
	}
}

type CreateUserInput struct {
	Email       string
	Password    string
	DisplayName string
	Phone       string
	Role        string
}

// Create registers an account and writes its profile row. The row is written
// with the actor's token.
func (s *UserService) Create(ctx context.Context, actor models.Session, input CreateUserInput) (models.Profile, error) {
	form := validation.CreateUserForm()
	form.Set(validation.FieldEmail, strings.TrimSpace(input.Email))
	form.Set(validation.FieldPassword, input.Password)
	form.Set(validation.FieldDisplayName, strings.TrimSpace(input.DisplayName))
	form.Set(validation.FieldPhone, strings.TrimSpace(input.Phone))
	form.Set(validation.FieldRole, strings.TrimSpace(input.Role))
	if !form.Validate() {
		return models.Profile{}, &FormError{Form: form}
	}

	release, err := s.sessions.Acquire(ctx, "create-user:"+actor.ID)
	if err != nil {
		if errors.Is(err, session.ErrBusy) {
			return models.Profile{}, ErrBusy
		}
		return models.Profile{}, &RemoteError{Message: MsgCreateFailed, Err: err}
	}
	defer release()

	email := strings.ToLower(form.Value(validation.FieldEmail))

	account, err := s.backend.CreateAccount(ctx, email, input.Password)
	if err != nil {
		s.log.Error().Err(err).Str("email", email).Msg("create account failed")
		return models.Profile{}, &RemoteError{Message: MsgCreateFailed, Err: err}
	}

	profile := models.Profile{
		ID:          account.ID,
		Email:       email,
		DisplayName: form.Value(validation.FieldDisplayName),
		Phone:       form.Value(validation.FieldPhone),
		Role:        models.UserRole(form.Value(validation.FieldRole)),
		CreatedAt:   time.Now(),
	}

	if err := s.backend.InsertProfile(ctx, actor.AccessToken, profile); err != nil {
		s.log.Error().Err(err).Str("user_id", account.ID).Msg("insert profile failed")
		return models.Profile{}, &RemoteError{Message: MsgCreateFailed, Err: err}
	}

	if err := s.events.Publish(ctx, models.AuthEvent{
		Type:      models.AuthEventUserCreated,
		UserID:    profile.ID,
		Email:     profile.Email,
		SessionID: actor.ID,
		At:        profile.CreatedAt,
	}); err != nil {
		s.log.Warn().Err(err).Msg("publish user created failed")
	}

	s.log.Info().
		Str("user_id", profile.ID).
		Str("role", string(profile.Role)).
		Str("created_by", actor.UserID).
		Msg("user created")

	return profile, nil
}
