package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newCORSEngine(origins []string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(CORS(origins))
	engine.GET("/api/v1/dashboard", func(c *gin.Context) { c.Status(http.StatusOK) })
	engine.POST("/api/v1/users", func(c *gin.Context) { c.Status(http.StatusCreated) })
	engine.OPTIONS("/api/v1/users", func(c *gin.Context) { c.Status(http.StatusOK) })
	return engine
}

func preflight(engine *gin.Engine, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/users", nil)
	req.Header.Set("Origin", origin)
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestCORSEmptyListAllowsNoOrigin(t *testing.T) {
	for _, origins := range [][]string{nil, {}, {"*"}} {
		engine := newCORSEngine(origins)

		rec := preflight(engine, "https://evil.example")
		if rec.Code != http.StatusForbidden {
			t.Fatalf("origins=%v preflight status = %d, want 403", origins, rec.Code)
		}
		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Fatalf("origins=%v ACAO = %q, want none", origins, got)
		}
		if got := rec.Header().Get("Access-Control-Allow-Credentials"); got != "" {
			t.Fatalf("origins=%v ACAC = %q, want none", origins, got)
		}

		req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil)
		req.Header.Set("Origin", "https://evil.example")
		rec = httptest.NewRecorder()
		engine.ServeHTTP(rec, req)
		if rec.Header().Get("Access-Control-Allow-Origin") != "" || rec.Header().Get("Access-Control-Allow-Credentials") != "" {
			t.Fatalf("origins=%v simple request got CORS headers", origins)
		}
	}
}

func TestCORSListedOrigin(t *testing.T) {
	engine := newCORSEngine([]string{" https://app.elretiro.cr "})

	rec := preflight(engine, "https://app.elretiro.cr")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("preflight status = %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "https://app.elretiro.cr" {
		t.Fatalf("ACAO = %q", rec.Header().Get("Access-Control-Allow-Origin"))
	}
	if rec.Header().Get("Access-Control-Allow-Credentials") != "true" {
		t.Fatalf("ACAC = %q", rec.Header().Get("Access-Control-Allow-Credentials"))
	}

	rec = preflight(engine, "https://evil.example")
	if rec.Code != http.StatusForbidden || rec.Header().Get("Access-Control-Allow-Credentials") != "" {
		t.Fatalf("unlisted origin = %d ACAC=%q", rec.Code, rec.Header().Get("Access-Control-Allow-Credentials"))
	}
}

func TestCORSSameOriginRequestUntouched(t *testing.T) {
	engine := newCORSEngine(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d", rec.Code)
	}
}
