package security

import (
	"errors"
	"testing"
	"time"

	"github.com/arklim/identity-core/internal/core/domain"
)

func newTokenService(t *testing.T) *TokenService {
	t.Helper()
	svc, err := NewTokenService("token-test-secret", "identity-core-test", 0)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return svc
}

func TestNewTokenService_RequiresSecret(t *testing.T) {
	if _, err := NewTokenService("", "issuer", 0); err == nil {
		t.Fatal("expected error for empty secret")
	}
	if _, err := NewTokenService("   ", "issuer", 0); err == nil {
		t.Fatal("expected error for blank secret")
	}
}

func TestTokenService_SessionRoundTrip(t *testing.T) {
	svc := newTokenService(t)

	account := domain.Account{ID: "acct-1", Role: domain.RoleModerator}
	token, err := svc.IssueSessionToken(account)
	if err != nil {
		t.Fatalf("IssueSessionToken returned error: %v", err)
	}

	claims, err := svc.VerifySessionToken(token)
	if err != nil {
		t.Fatalf("VerifySessionToken returned error: %v", err)
	}
	if claims.AccountID != "acct-1" {
		t.Fatalf("expected account acct-1, got %s", claims.AccountID)
	}
	if claims.Role != domain.RoleModerator {
		t.Fatalf("expected moderator role, got %v", claims.Role)
	}
}

func TestTokenService_SessionTTLFourteenDays(t *testing.T) {
	svc := newTokenService(t)

	issued := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	svc.WithClock(func() time.Time { return issued })

	token, err := svc.IssueSessionToken(domain.Account{ID: "acct-1", Role: domain.RoleMember})
	if err != nil {
		t.Fatalf("IssueSessionToken: %v", err)
	}

	claims, err := svc.VerifySessionToken(token)
	if err != nil {
		t.Fatalf("VerifySessionToken: %v", err)
	}
	if got := claims.ExpiresAt.Time; !got.Equal(issued.Add(14 * 24 * time.Hour)) {
		t.Fatalf("expected 14 day expiry, got %v", got)
	}

	// Still valid one hour before the window closes.
	svc.WithClock(func() time.Time { return issued.Add(14*24*time.Hour - time.Hour) })
	if _, err := svc.VerifySessionToken(token); err != nil {
		t.Fatalf("expected token valid inside the window, got %v", err)
	}

	svc.WithClock(func() time.Time { return issued.Add(14*24*time.Hour + time.Minute) })
	if _, err := svc.VerifySessionToken(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestTokenService_TamperedSignature(t *testing.T) {
	svc := newTokenService(t)

	token, err := svc.IssueSessionToken(domain.Account{ID: "acct-1", Role: domain.RoleMember})
	if err != nil {
		t.Fatalf("IssueSessionToken: %v", err)
	}

	other, err := NewTokenService("another-secret", "identity-core-test", 0)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}

	if _, err := other.VerifySessionToken(token); !errors.Is(err, ErrTokenSignatureInvalid) {
		t.Fatalf("expected ErrTokenSignatureInvalid, got %v", err)
	}
}

func TestTokenService_Malformed(t *testing.T) {
	svc := newTokenService(t)

	for _, token := range []string{"", "   ", "garbage", "a.b.c"} {
		if _, err := svc.VerifySessionToken(token); !errors.Is(err, ErrTokenMalformed) {
			t.Fatalf("token %q: expected ErrTokenMalformed, got %v", token, err)
		}
	}
}

func TestTokenService_PurposeRoundTrip(t *testing.T) {
	svc := newTokenService(t)

	token, err := svc.IssuePurposeToken("acct-1", PurposePasswordReset, 30*time.Minute)
	if err != nil {
		t.Fatalf("IssuePurposeToken returned error: %v", err)
	}

	claims, err := svc.VerifyPurposeToken(token, PurposePasswordReset)
	if err != nil {
		t.Fatalf("VerifyPurposeToken returned error: %v", err)
	}
	if claims.AccountID != "acct-1" || claims.Purpose != PurposePasswordReset {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestTokenService_PurposeMismatch(t *testing.T) {
	svc := newTokenService(t)

	token, err := svc.IssuePurposeToken("acct-1", PurposeEmailVerification, time.Hour)
	if err != nil {
		t.Fatalf("IssuePurposeToken: %v", err)
	}

	if _, err := svc.VerifyPurposeToken(token, PurposePasswordReset); !errors.Is(err, ErrTokenPurposeMismatch) {
		t.Fatalf("expected ErrTokenPurposeMismatch, got %v", err)
	}
}

func TestTokenService_PurposeExpiry(t *testing.T) {
	svc := newTokenService(t)

	issued := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	svc.WithClock(func() time.Time { return issued })

	token, err := svc.IssuePurposeToken("acct-1", PurposePasswordReset, 30*time.Minute)
	if err != nil {
		t.Fatalf("IssuePurposeToken: %v", err)
	}

	// Correct signature, past expiry.
	svc.WithClock(func() time.Time { return issued.Add(31 * time.Minute) })
	if _, err := svc.VerifyPurposeToken(token, PurposePasswordReset); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestTokenService_SessionTokenIsNotPurposeToken(t *testing.T) {
	svc := newTokenService(t)

	session, err := svc.IssueSessionToken(domain.Account{ID: "acct-1", Role: domain.RoleMember})
	if err != nil {
		t.Fatalf("IssueSessionToken: %v", err)
	}

	if _, err := svc.VerifyPurposeToken(session, PurposePasswordReset); !errors.Is(err, ErrTokenPurposeMismatch) {
		t.Fatalf("expected ErrTokenPurposeMismatch for session token, got %v", err)
	}
}

func TestHashToken(t *testing.T) {
	a := HashToken("value")
	b := HashToken("value")
	if a != b {
		t.Fatal("hash must be deterministic")
	}
	if len(a) != 64 {
		t.Fatalf("expected 64 hex characters, got %d", len(a))
	}
	if a == HashToken("other") {
		t.Fatal("different inputs must hash differently")
	}
}
