package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"elretiro/console/internal/backend"
	"elretiro/console/internal/config"
	"elretiro/console/internal/events"
	"elretiro/console/internal/handlers"
	"elretiro/console/internal/service"
	"elretiro/console/internal/session"
	"elretiro/console/internal/storage"
	"elretiro/console/internal/validation"
)

type testServer struct {
	engine       *gin.Engine
	sessions     *session.Manager
	backendCalls *int32
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var calls int32
	fake := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		switch r.URL.Path {
		case "/auth/v1/token":
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			if body["password"] != "secret1" {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"Invalid login credentials"}`))
				return
			}
			_, _ = w.Write([]byte(`{"access_token":"opaque-at","refresh_token":"rt","expires_in":3600,"user":{"id":"user-1","email":"a@b.com"}}`))
		case "/auth/v1/logout":
			w.WriteHeader(http.StatusNoContent)
		case "/auth/v1/health":
			_, _ = w.Write([]byte(`{"name":"GoTrue"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(fake.Close)

	cfg := &config.AppConfig{
		Environment: "test",
		Backend: config.BackendConfig{
			URL:     fake.URL,
			AnonKey: "anon",
			Timeout: 5 * time.Second,
		},
		Session: config.SessionConfig{
			CookieName:    "retiro_session",
			TTL:           time.Hour,
			SigningSecret: "cookie-secret",
			BusyTTL:       time.Minute,
			RefreshLeeway: time.Minute,
		},
	}
	logger := zerolog.Nop()

	client, err := backend.NewClient(cfg.Backend, logger)
	if err != nil {
		t.Fatalf("backend client: %v", err)
	}
	sessions := session.NewManager(session.NewMemoryStore(), cfg.Session)
	publisher := events.NopPublisher{}

	handlerSet := handlers.NewHandlerSet(logger, cfg, handlers.Dependencies{
		Auth:      service.NewAuthService(client, sessions, publisher, cfg, logger),
		Users:     service.NewUserService(client, sessions, publisher, logger),
		Dashboard: service.NewDashboardService(nil, nil, time.Minute, logger),
		Sessions:  sessions,
		Assets:    storage.NewAssetResolver(nil, cfg.Assets, logger),
		Checks:    map[string]handlers.HealthCheck{"backend": client.Ping},
	})

	return &testServer{
		engine:       NewEngine(cfg, logger, handlerSet),
		sessions:     sessions,
		backendCalls: &calls,
	}
}

func (s *testServer) do(req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	return rec
}

func postForm(path string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == "retiro_session" && c.Value != "" {
			return c
		}
	}
	t.Fatalf("no session cookie in response")
	return nil
}

func (s *testServer) login(t *testing.T) *http.Cookie {
	t.Helper()
	rec := s.do(postForm("/login", url.Values{"email": {"a@b.com"}, "password": {"secret1"}}))
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/app" {
		t.Fatalf("login = %d %q", rec.Code, rec.Header().Get("Location"))
	}
	return sessionCookie(t, rec)
}

func TestGuardWithoutSession(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/app", "/app/profile", "/app/users/new"} {
		rec := srv.do(httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/" {
			t.Fatalf("GET %s = %d %q, want redirect to /", path, rec.Code, rec.Header().Get("Location"))
		}
	}

	rec := srv.do(httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Bienvenido") {
		t.Fatalf("login page = %d", rec.Code)
	}
}

func TestLoginValidationMakesNoBackendCall(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(postForm("/login", url.Values{"email": {"nope"}, "password": {"123"}}))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, validation.MsgEmailInvalid) || !strings.Contains(body, validation.MsgPasswordShort) {
		t.Fatalf("field messages missing from page")
	}
	if atomic.LoadInt32(srv.backendCalls) != 0 {
		t.Fatalf("backend called %d times", *srv.backendCalls)
	}
}

func TestLoginRejected(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(postForm("/login", url.Values{"email": {"a@b.com"}, "password": {"wrong12"}}))
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), service.MsgSignInRejected) {
		t.Fatalf("rejection banner missing")
	}
	for _, c := range rec.Result().Cookies() {
		if c.Name == "retiro_session" && c.Value != "" {
			t.Fatalf("rejected login must not set a session")
		}
	}
}

func TestLoginThenSignOut(t *testing.T) {
	srv := newTestServer(t)
	cookie := srv.login(t)

	rec := srv.do(httptest.NewRequest(http.MethodGet, "/", nil), cookie)
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/app" {
		t.Fatalf("entry with session = %d %q", rec.Code, rec.Header().Get("Location"))
	}

	rec = srv.do(httptest.NewRequest(http.MethodGet, "/app", nil), cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("home = %d", rec.Code)
	}

	rec = srv.do(httptest.NewRequest(http.MethodGet, "/app/profile", nil), cookie)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "a@b.com") {
		t.Fatalf("profile = %d", rec.Code)
	}

	rec = srv.do(httptest.NewRequest(http.MethodPost, "/app/profile/signout", nil), cookie)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/" {
		t.Fatalf("sign out = %d %q", rec.Code, rec.Header().Get("Location"))
	}

	rec = srv.do(httptest.NewRequest(http.MethodGet, "/app", nil), cookie)
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/" {
		t.Fatalf("old cookie after sign out = %d %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestTamperedCookieIsIgnored(t *testing.T) {
	srv := newTestServer(t)
	cookie := srv.login(t)
	cookie.Value = cookie.Value + "x"

	rec := srv.do(httptest.NewRequest(http.MethodGet, "/app", nil), cookie)
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/" {
		t.Fatalf("tampered cookie = %d %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestCreateUserFormErrors(t *testing.T) {
	srv := newTestServer(t)
	cookie := srv.login(t)
	before := atomic.LoadInt32(srv.backendCalls)

	req := postForm("/app/users", url.Values{
		"email":        {"n@b.com"},
		"password":     {"secret1"},
		"display_name": {"Nora"},
		"phone":        {"1234"},
		"role":         {"empleado"},
	})
	rec := srv.do(req, cookie)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), validation.MsgPhoneDigits) {
		t.Fatalf("phone message missing")
	}
	if atomic.LoadInt32(srv.backendCalls) != before {
		t.Fatalf("invalid form reached the backend")
	}
}

func TestAPIGuardAndLogin(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(httptest.NewRequest(http.MethodGet, "/api/v1/auth/guard?segment=authenticated", nil))
	var guardResp struct {
		Authenticated bool `json:"authenticated"`
		Decision      struct {
			Outcome string `json:"outcome"`
			Target  string `json:"target"`
		} `json:"decision"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &guardResp); err != nil {
		t.Fatalf("decode guard: %v", err)
	}
	if guardResp.Authenticated || guardResp.Decision.Outcome != "redirect_entry" || guardResp.Decision.Target != "/" {
		t.Fatalf("guard = %+v", guardResp)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"a@b.com","password":"wrong12"}`))
	req.Header.Set("Content-Type", "application/json")
	if rec := srv.do(req); rec.Code != http.StatusUnauthorized {
		t.Fatalf("rejected api login = %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"a@b.com","password":"secret1"}`))
	req.Header.Set("Content-Type", "application/json")
	rec = srv.do(req)
	if rec.Code != http.StatusOK {
		t.Fatalf("api login = %d %s", rec.Code, rec.Body.String())
	}
	cookie := sessionCookie(t, rec)

	rec = srv.do(httptest.NewRequest(http.MethodGet, "/api/v1/auth/guard?segment=entry", nil), cookie)
	if err := json.Unmarshal(rec.Body.Bytes(), &guardResp); err != nil {
		t.Fatalf("decode guard: %v", err)
	}
	if !guardResp.Authenticated || guardResp.Decision.Outcome != "redirect_home" || guardResp.Decision.Target != "/app" {
		t.Fatalf("guard with session = %+v", guardResp)
	}
}

func postJSON(path, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestAPIFieldErrors(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(postJSON("/api/v1/auth/login", `{"email":"nope","password":""}`))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	var body struct {
		Fields map[string]string `json:"fields"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Fields[validation.FieldEmail] != validation.MsgEmailInvalid || body.Fields[validation.FieldPassword] != validation.MsgPasswordRequired {
		t.Fatalf("fields = %v", body.Fields)
	}
	if atomic.LoadInt32(srv.backendCalls) != 0 {
		t.Fatalf("backend called %d times", *srv.backendCalls)
	}

	cookie := srv.login(t)
	before := atomic.LoadInt32(srv.backendCalls)
	rec = srv.do(postJSON("/api/v1/users", `{"email":"n@b.com","password":"secret1","displayName":"Nora","phone":"1234","role":"empleado"}`), cookie)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("create user status = %d, want 422", rec.Code)
	}
	body.Fields = nil
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Fields) != 1 || body.Fields[validation.FieldPhone] != validation.MsgPhoneDigits {
		t.Fatalf("fields = %v", body.Fields)
	}
	if atomic.LoadInt32(srv.backendCalls) != before {
		t.Fatalf("invalid form reached the backend")
	}
}

func TestAPILoginWhileBusy(t *testing.T) {
	srv := newTestServer(t)

	release, err := srv.sessions.Acquire(context.Background(), "login:a@b.com")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}

	rec := srv.do(postJSON("/api/v1/auth/login", `{"email":"A@b.com","password":"secret1"}`))
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error != service.MsgBusy {
		t.Fatalf("error = %q", body.Error)
	}
	if atomic.LoadInt32(srv.backendCalls) != 0 {
		t.Fatalf("busy login reached the backend")
	}

	release()
	if rec := srv.do(postJSON("/api/v1/auth/login", `{"email":"a@b.com","password":"secret1"}`)); rec.Code != http.StatusOK {
		t.Fatalf("login after release = %d", rec.Code)
	}
}

func TestAPIRequiresSession(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	if rec := srv.do(req); rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec := srv.do(httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil)); rec.Code != http.StatusUnauthorized {
		t.Fatalf("dashboard status = %d", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(httptest.NewRequest(http.MethodGet, "/api/healthz", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Fatalf("health = %d %s", rec.Code, rec.Body.String())
	}
}

