package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"elretiro/console/internal/models"
	"elretiro/console/internal/validation"
)

func validUserInput() CreateUserInput {
	return CreateUserInput{
		Email:       "Nora@Retiro.com",
		Password:    "secret1",
		DisplayName: " Nora ",
		Phone:       "88887777",
		Role:        "empleado",
	}
}

func TestCreateUser(t *testing.T) {
	b := &fakeBackend{}
	publisher := &recordingPublisher{}
	svc := NewUserService(b, newTestManager(), publisher, zerolog.Nop())

	actor := models.Session{ID: "s1", UserID: "admin-1", AccessToken: "actor-token"}
	profile, err := svc.Create(context.Background(), actor, validUserInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if profile.Email != "nora@retiro.com" || profile.DisplayName != "Nora" || profile.Role != models.UserRoleEmployee {
		t.Fatalf("profile = %+v", profile)
	}
	if b.createCalls != 1 || b.insertCalls != 1 {
		t.Fatalf("calls create=%d insert=%d", b.createCalls, b.insertCalls)
	}
	if b.tokenFor != "actor-token" {
		t.Fatalf("profile written with %q", b.tokenFor)
	}
	if types := publisher.types(); len(types) != 1 || types[0] != models.AuthEventUserCreated {
		t.Fatalf("events = %v", types)
	}
}

func TestCreateUserInvalid(t *testing.T) {
	b := &fakeBackend{}
	svc := NewUserService(b, newTestManager(), &recordingPublisher{}, zerolog.Nop())

	in := validUserInput()
	in.Phone = "1234"
	in.Role = "root"

	_, err := svc.Create(context.Background(), models.Session{ID: "s1"}, in)
	var formErr *FormError
	if !errors.As(err, &formErr) {
		t.Fatalf("err = %v", err)
	}
	fields := formErr.Fields()
	if fields[validation.FieldPhone] != validation.MsgPhoneDigits || fields[validation.FieldRole] != validation.MsgRoleInvalid {
		t.Fatalf("fields = %v", fields)
	}
	if b.calls() != 0 {
		t.Fatalf("invalid form reached the backend")
	}
}

func TestCreateUserBackendFailures(t *testing.T) {
	cases := []struct {
		name    string
		backend *fakeBackend
		inserts int
	}{
		{"account", &fakeBackend{createErr: errors.New("boom")}, 0},
		{"profile", &fakeBackend{insertErr: errors.New("rls")}, 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			publisher := &recordingPublisher{}
			svc := NewUserService(tc.backend, newTestManager(), publisher, zerolog.Nop())

			_, err := svc.Create(context.Background(), models.Session{ID: "s1"}, validUserInput())
			var remote *RemoteError
			if !errors.As(err, &remote) || remote.Message != MsgCreateFailed {
				t.Fatalf("err = %v", err)
			}
			if tc.backend.insertCalls != tc.inserts {
				t.Fatalf("insert calls = %d", tc.backend.insertCalls)
			}
			if len(publisher.types()) != 0 {
				t.Fatalf("failure must not publish")
			}
		})
	}
}
