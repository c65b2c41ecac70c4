package routes_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/arklim/identity-core/internal/core/domain"
	"github.com/arklim/identity-core/internal/infra/config"
	"github.com/arklim/identity-core/internal/infra/security"
	httproutes "github.com/arklim/identity-core/internal/transport/http/routes"
	"github.com/arklim/identity-core/internal/usecase"
)

type stubChecker struct {
	err error
}

func (s stubChecker) Ping(ctx context.Context) error        { return s.err }
func (s stubChecker) HealthCheck(ctx context.Context) error { return s.err }

func newTestDependencies(t *testing.T) (httproutes.Dependencies, *security.TokenService) {
	t.Helper()

	logger, _ := zap.NewDevelopment()
	cfg := &config.AppConfig{App: config.AppSettings{Env: "test"}}

	tokens, err := security.NewTokenService("routes-test-secret", "identity-core-test", 0)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}

	guard := security.NewGuard()
	auth := usecase.NewAuthService(nil, nil, tokens)

	return httproutes.Dependencies{
		Config: cfg,
		Logger: logger,
		Guard:  guard,
		Services: httproutes.ServiceSet{
			Auth:  auth,
			Admin: usecase.NewAdminService(nil, guard, nil),
		},
	}, tokens
}

func TestHealthEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	deps, _ := newTestDependencies(t)

	r := httproutes.Register(deps)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/healthz", nil)

	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
}

func TestReadyEndpointReportsDegraded(t *testing.T) {
	gin.SetMode(gin.TestMode)
	deps, _ := newTestDependencies(t)
	deps.Database = stubChecker{}
	deps.Cache = stubChecker{err: errors.New("connection refused")}

	r := httproutes.Register(deps)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/readyz", nil)

	r.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "degraded") {
		t.Fatalf("expected degraded status, got %s", w.Body.String())
	}
}

func TestAdminRoutesRequireAuthentication(t *testing.T) {
	gin.SetMode(gin.TestMode)
	deps, _ := newTestDependencies(t)

	r := httproutes.Register(deps)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPatch, "/api/v1/admin/accounts/target-1/role", strings.NewReader(`{"role":"moderator"}`))
	req.Header.Set("Content-Type", "application/json")

	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", w.Code)
	}
}

func TestAdminRoutesRejectMemberTier(t *testing.T) {
	gin.SetMode(gin.TestMode)
	deps, tokens := newTestDependencies(t)

	token, err := tokens.IssueSessionToken(domain.Account{ID: "acct-1", Role: domain.RoleMember})
	if err != nil {
		t.Fatalf("IssueSessionToken: %v", err)
	}

	r := httproutes.Register(deps)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPatch, "/api/v1/admin/accounts/target-1/role", strings.NewReader(`{"role":"moderator"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", w.Code)
	}
}

func TestLoginRejectsMalformedPayload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	deps, _ := newTestDependencies(t)

	r := httproutes.Register(deps)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":""}`))
	req.Header.Set("Content-Type", "application/json")

	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
}

func TestMetricsEndpointExposed(t *testing.T) {
	gin.SetMode(gin.TestMode)
	deps, _ := newTestDependencies(t)

	r := httproutes.Register(deps)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/metrics", nil)

	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
}
