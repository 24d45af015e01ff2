package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/config"
	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/internal/api/handler"
	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/internal/grading"
	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/pkg/jwt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockChecker struct {
	revoked map[string]bool
	err     error
}

func (m *mockChecker) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	return m.revoked[jti], m.err
}

type mockLimiter struct {
	allowed bool
	err     error
	keys    []string
}

func (m *mockLimiter) CheckRateLimit(_ context.Context, key string, _ int, _ time.Duration) (bool, error) {
	m.keys = append(m.keys, key)
	return m.allowed, m.err
}

func newTestManager() *jwt.Manager {
	return jwt.NewManager(&config.AuthConfig{JWTSecret: "middleware-test-secret-123", AccessTokenTTL: time.Minute})
}

func doRequest(r *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", "/x", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuth_InjectsProfile(t *testing.T) {
	mgr := newTestManager()
	classroom := int64(10)
	token, err := mgr.GenerateAccessToken("doc-1", "docente", &classroom)
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}

	var got map[string]interface{}
	r := gin.New()
	r.GET("/x", JWTAuth(mgr, nil), func(c *gin.Context) {
		got = map[string]interface{}{
			"user":  c.GetString(handler.CtxUserID),
			"role":  c.GetString(handler.CtxRole),
			"app":   c.GetString(handler.CtxAppRole),
			"tutor": c.GetInt64(handler.CtxTutorClassroomID),
			"jti":   c.GetString(handler.CtxTokenJTI),
		}
		c.Status(http.StatusOK)
	})

	w := doRequest(r, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got["user"] != "doc-1" || got["role"] != "docente" || got["app"] != string(grading.RoleDocente) {
		t.Errorf("unexpected identity %v", got)
	}
	if got["tutor"] != int64(10) || got["jti"] == "" {
		t.Errorf("unexpected token data %v", got)
	}
}

func TestJWTAuth_Rejects(t *testing.T) {
	mgr := newTestManager()
	r := gin.New()
	r.GET("/x", JWTAuth(mgr, nil), func(c *gin.Context) { c.Status(http.StatusOK) })

	if w := doRequest(r, ""); w.Code != http.StatusUnauthorized {
		t.Errorf("missing header: expected 401, got %d", w.Code)
	}
	if w := doRequest(r, "basura"); w.Code != http.StatusUnauthorized {
		t.Errorf("invalid token: expected 401, got %d", w.Code)
	}

	other := jwt.NewManager(&config.AuthConfig{JWTSecret: "another-secret-entirely-456", AccessTokenTTL: time.Minute})
	foreign, _ := other.GenerateAccessToken("doc-1", "docente", nil)
	if w := doRequest(r, foreign); w.Code != http.StatusUnauthorized {
		t.Errorf("foreign signature: expected 401, got %d", w.Code)
	}
}

func TestJWTAuth_Blacklist(t *testing.T) {
	mgr := newTestManager()
	token, _ := mgr.GenerateAccessToken("sup-1", "supervisor", nil)
	claims, _ := mgr.ParseToken(token)

	checker := &mockChecker{revoked: map[string]bool{claims.ID: true}}
	r := gin.New()
	r.GET("/x", JWTAuth(mgr, checker), func(c *gin.Context) { c.Status(http.StatusOK) })
	if w := doRequest(r, token); w.Code != http.StatusUnauthorized {
		t.Errorf("revoked token: expected 401, got %d", w.Code)
	}

	down := &mockChecker{err: errors.New("redis caído")}
	r = gin.New()
	r.GET("/x", JWTAuth(mgr, down), func(c *gin.Context) { c.Status(http.StatusOK) })
	if w := doRequest(r, token); w.Code != http.StatusOK {
		t.Errorf("redis outage must not block, got %d", w.Code)
	}
}

func TestRoleAuth(t *testing.T) {
	tests := []struct {
		appRole string
		want    int
	}{
		{string(grading.RoleAdministrador), http.StatusOK},
		{string(grading.RoleSupervisor), http.StatusOK},
		{string(grading.RoleDocente), http.StatusForbidden},
		{"", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		r := gin.New()
		r.GET("/x", func(c *gin.Context) {
			if tt.appRole != "" {
				c.Set(handler.CtxAppRole, tt.appRole)
			}
		}, RoleAuth(grading.RoleSupervisor, grading.RoleAdministrador), func(c *gin.Context) { c.Status(http.StatusOK) })

		if w := doRequest(r, ""); w.Code != tt.want {
			t.Errorf("role %q: expected %d, got %d", tt.appRole, tt.want, w.Code)
		}
	}
}

func TestRateLimit(t *testing.T) {
	limiter := &mockLimiter{allowed: false}
	r := gin.New()
	r.GET("/x", RateLimit(limiter, 5, time.Minute), func(c *gin.Context) { c.Status(http.StatusOK) })

	if w := doRequest(r, ""); w.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", w.Code)
	}
	if len(limiter.keys) != 1 || limiter.keys[0] != "rate_limit:192.0.2.1:/x" {
		t.Errorf("unexpected limiter key %v", limiter.keys)
	}

	limiter.err = errors.New("redis caído")
	if w := doRequest(r, ""); w.Code != http.StatusOK {
		t.Errorf("limiter failure must let requests through, got %d", w.Code)
	}

	r = gin.New()
	r.GET("/x", RateLimit(nil, 5, time.Minute), func(c *gin.Context) { c.Status(http.StatusOK) })
	if w := doRequest(r, ""); w.Code != http.StatusOK {
		t.Errorf("nil limiter must let requests through, got %d", w.Code)
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.GET("/x", RequestID(), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := doRequest(r, "")
	if len(w.Header().Get("X-Request-ID")) != 36 {
		t.Errorf("expected a generated UUID, got %q", w.Header().Get("X-Request-ID"))
	}

	req := httptest.NewRequest("GET", "/x", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Header().Get("X-Request-ID") != "abc-123" {
		t.Errorf("expected the client id to be echoed, got %q", w.Header().Get("X-Request-ID"))
	}
}

func TestRequestID_RejectsUnsafeClientID(t *testing.T) {
	r := gin.New()
	r.GET("/x", RequestID(), func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest("GET", "/x", nil)
	req.Header.Set("X-Request-ID", "abc\" level=error")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get("X-Request-ID"); got == "abc\" level=error" || len(got) != 36 {
		t.Errorf("expected a generated id, got %q", got)
	}
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"https://notas.colegio.pe/"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		name       string
		method     string
		origin     string
		wantStatus int
		wantOrigin string
	}{
		{"allowed origin", "GET", "https://notas.colegio.pe", http.StatusOK, "https://notas.colegio.pe"},
		{"unknown origin", "GET", "https://otro.pe", http.StatusOK, ""},
		{"preflight", "OPTIONS", "https://notas.colegio.pe", http.StatusNoContent, "https://notas.colegio.pe"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/x", nil)
			req.Header.Set("Origin", tt.origin)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.wantStatus {
				t.Errorf("expected %d, got %d", tt.wantStatus, w.Code)
			}
			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("expected allow-origin %q, got %q", tt.wantOrigin, got)
			}
		})
	}
}

func TestCORS_Wildcard(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"*"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest("GET", "/x", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("expected wildcard origin, got %q", w.Header().Get("Access-Control-Allow-Origin"))
	}
	if w.Header().Get("Access-Control-Allow-Credentials") != "" {
		t.Error("wildcard must not allow credentials")
	}
}

func TestBodyLimit_DeclaredLengthTooLarge(t *testing.T) {
	r := gin.New()
	r.PUT("/x", BodyLimit(16), func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest("PUT", "/x", strings.NewReader(`{"comment":"un texto bastante largo"}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413, got %d", w.Code)
	}
}

func TestSecurityHeaders(t *testing.T) {
	r := gin.New()
	r.GET("/x", SecurityHeaders(), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := doRequest(r, "")
	if w.Header().Get("Cache-Control") != "no-store" {
		t.Errorf("expected no-store, got %q", w.Header().Get("Cache-Control"))
	}
	if w.Header().Get("X-Frame-Options") != "DENY" {
		t.Error("expected framing to be denied")
	}
}
