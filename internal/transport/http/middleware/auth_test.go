package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/arklim/identity-core/internal/core/domain"
	"github.com/arklim/identity-core/internal/infra/security"
	"github.com/arklim/identity-core/internal/usecase"
)

func newAuthFixture(t *testing.T) (*usecase.AuthService, *security.TokenService) {
	t.Helper()
	tokens, err := security.NewTokenService("middleware-test-secret", "identity-core-test", 0)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	// Session verification only touches the token service.
	return usecase.NewAuthService(nil, nil, tokens), tokens
}

func TestRequireAuth_ValidToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	auth, tokens := newAuthFixture(t)
	token, err := tokens.IssueSessionToken(domain.Account{ID: "acct-1", Role: domain.RoleAdmin})
	if err != nil {
		t.Fatalf("IssueSessionToken: %v", err)
	}

	router := gin.New()
	router.GET("/protected", RequireAuth(auth), func(c *gin.Context) {
		claims := GetSessionClaims(c)
		if claims == nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"account_id": claims.AccountID, "role": claims.Role.String()})
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rr.Code, rr.Body.String())
	}
}

func TestRequireAuth_Rejections(t *testing.T) {
	gin.SetMode(gin.TestMode)

	auth, _ := newAuthFixture(t)

	router := gin.New()
	router.GET("/protected", RequireAuth(auth), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	cases := []struct {
		name   string
		header string
	}{
		{name: "missing header", header: ""},
		{name: "no bearer prefix", header: "Token abc"},
		{name: "empty token", header: "Bearer   "},
		{name: "garbage token", header: "Bearer not-a-jwt"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			if rr.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rr.Code)
			}
		})
	}
}

func TestRequireAuth_TamperedToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	auth, _ := newAuthFixture(t)

	other, err := security.NewTokenService("a-different-secret", "identity-core-test", 0)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	forged, err := other.IssueSessionToken(domain.Account{ID: "acct-1", Role: domain.RoleOwner})
	if err != nil {
		t.Fatalf("IssueSessionToken: %v", err)
	}

	router := gin.New()
	router.GET("/protected", RequireAuth(auth), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+forged)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for forged token, got %d", rr.Code)
	}
}

func TestRequireMinimumRole(t *testing.T) {
	gin.SetMode(gin.TestMode)

	auth, tokens := newAuthFixture(t)
	guard := security.NewGuard()

	router := gin.New()
	router.GET("/staff", RequireAuth(auth), RequireMinimumRole(guard, domain.RoleSupport), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	cases := []struct {
		role domain.Role
		want int
	}{
		{role: domain.RoleMember, want: http.StatusForbidden},
		{role: domain.RoleSupport, want: http.StatusOK},
		{role: domain.RoleOwner, want: http.StatusOK},
	}

	for _, tc := range cases {
		token, err := tokens.IssueSessionToken(domain.Account{ID: "acct-1", Role: tc.role})
		if err != nil {
			t.Fatalf("IssueSessionToken: %v", err)
		}

		req := httptest.NewRequest(http.MethodGet, "/staff", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		if rr.Code != tc.want {
			t.Fatalf("role %s: expected %d, got %d", tc.role, tc.want, rr.Code)
		}
	}
}
