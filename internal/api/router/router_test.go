package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/config"
	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/internal/api/handler"
	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/internal/dto"
	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/internal/grading"
	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/internal/service"
	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/pkg/jwt"
)

// roleGatedAppreciations answers approval changes the way the service
// guard does for a teacher.
type roleGatedAppreciations struct {
	service.AppreciationService
}

func (roleGatedAppreciations) SetApproval(_ context.Context, caller service.Caller, _ *dto.SetApprovalRequest) (*dto.AppreciationMutationResponse, error) {
	return skipFor(caller), nil
}

func (roleGatedAppreciations) ToggleApproval(_ context.Context, caller service.Caller, _ *dto.AppreciationKeyRequest) (*dto.AppreciationMutationResponse, error) {
	return skipFor(caller), nil
}

func skipFor(caller service.Caller) *dto.AppreciationMutationResponse {
	if caller.Role.IsStaff() {
		return &dto.AppreciationMutationResponse{MutationResult: dto.MutationResult{Applied: true, Synced: true}}
	}
	return &dto.AppreciationMutationResponse{MutationResult: *dto.Skipped(grading.ReasonRoleDenied)}
}

func setupTestRouterWith(svc *service.Service) (http.Handler, *jwt.Manager) {
	cfg := &config.Config{Auth: config.AuthConfig{JWTSecret: "router-test-secret-123", AccessTokenTTL: time.Minute}}
	mgr := jwt.NewManager(&cfg.Auth)
	return Setup(cfg, handler.NewHandler(svc), mgr, nil, zap.NewNop()), mgr
}

func setupTestRouter() http.Handler {
	r, _ := setupTestRouterWith(&service.Service{})
	return r
}

func TestSetup_Health(t *testing.T) {
	w := httptest.NewRecorder()
	setupTestRouter().ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("expected a request id header")
	}
}

func TestSetup_ProtectedRoutes(t *testing.T) {
	r := setupTestRouter()
	routes := []struct{ method, path string }{
		{"GET", "/api/v1/periods"},
		{"GET", "/api/v1/periods/calendar.ics"},
		{"PUT", "/api/v1/grades"},
		{"PUT", "/api/v1/appreciations/draft"},
		{"GET", "/api/v1/monitoring/overview?period_id=1"},
		{"GET", "/api/v1/export/report-card/abc?period_id=1"},
	}
	for _, rt := range routes {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(rt.method, rt.path, nil))
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: expected 401 without token, got %d", rt.method, rt.path, w.Code)
		}
	}
}

func TestSetup_ApprovalRoleGateIsSilent(t *testing.T) {
	r, mgr := setupTestRouterWith(&service.Service{Appreciation: roleGatedAppreciations{}})
	token, err := mgr.GenerateAccessToken("11111111-2222-3333-4444-555555555555", "docente", nil)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	routes := []struct{ method, path, body string }{
		{"PUT", "/api/v1/appreciations/approval", `{"period_id":1,"student_id":"aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee","approved":true}`},
		{"POST", "/api/v1/appreciations/toggle", `{"period_id":1,"student_id":"aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee"}`},
	}
	for _, rt := range routes {
		req := httptest.NewRequest(rt.method, rt.path, strings.NewReader(rt.body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("%s %s: expected 200 for a teacher, got %d", rt.method, rt.path, w.Code)
		}
		var body struct {
			Data dto.MutationResult `json:"data"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.Data.Applied || body.Data.Reason != grading.ReasonRoleDenied {
			t.Errorf("%s %s: expected role no-op, got %+v", rt.method, rt.path, body.Data)
		}
	}
}
