package security

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/arklim/identity-core/internal/core/domain"
)

// Purpose tags for single-purpose tokens.
const (
	PurposePasswordReset     = "password_reset"
	PurposeEmailVerification = "email_verification"
	PurposePhoneVerification = "phone_verification"
)

const defaultSessionTTL = 14 * 24 * time.Hour

var (
	// ErrTokenMalformed indicates the token is not a parseable signed structure.
	ErrTokenMalformed = errors.New("token malformed")
	// ErrTokenExpired indicates the token is past its expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenSignatureInvalid indicates the token failed signature verification.
	ErrTokenSignatureInvalid = errors.New("token signature invalid")
	// ErrTokenPurposeMismatch indicates a purpose token presented for the wrong side effect.
	ErrTokenPurposeMismatch = errors.New("token purpose mismatch")
)

// SessionClaims is the canonical claims shape carried by session tokens.
// Every call site decodes into this struct; there is no alternate schema.
type SessionClaims struct {
	AccountID string      `json:"aid"`
	Role      domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// PurposeClaims is carried by single-purpose tokens (password reset,
// verification). Signature and expiry checks alone cannot detect reuse;
// callers enforce single use through a persisted marker.
type PurposeClaims struct {
	AccountID string `json:"aid"`
	Purpose   string `json:"purpose"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies signed, expiring tokens with an
// HMAC-SHA256 shared secret. The secret is deployment configuration, loaded
// once and read-only thereafter.
type TokenService struct {
	secret     []byte
	issuer     string
	sessionTTL time.Duration
	now        func() time.Time
}

// NewTokenService constructs a TokenService for the supplied shared secret.
func NewTokenService(secret, issuer string, sessionTTL time.Duration) (*TokenService, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, fmt.Errorf("token: signing secret is required")
	}
	if sessionTTL <= 0 {
		sessionTTL = defaultSessionTTL
	}
	return &TokenService{
		secret:     []byte(secret),
		issuer:     issuer,
		sessionTTL: sessionTTL,
		now:        time.Now,
	}, nil
}

// WithClock overrides the clock used for issuance and validation (tests).
func (s *TokenService) WithClock(clock func() time.Time) {
	if clock != nil {
		s.now = clock
	}
}

// IssueSessionToken signs a session token for the account. Validity window is
// the configured session TTL (14 days by default).
func (s *TokenService) IssueSessionToken(account domain.Account) (string, error) {
	if account.ID == "" {
		return "", fmt.Errorf("token: account id is required")
	}

	now := s.now().UTC()
	claims := SessionClaims{
		AccountID: account.ID,
		Role:      account.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   account.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.sessionTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// VerifySessionToken validates the token and returns its claims, or one of
// ErrTokenMalformed, ErrTokenExpired, ErrTokenSignatureInvalid.
func (s *TokenService) VerifySessionToken(token string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	if err := s.parse(token, claims); err != nil {
		return nil, err
	}
	if strings.TrimSpace(claims.AccountID) == "" || !claims.Role.Valid() {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}

// IssuePurposeToken signs a single-purpose token with the supplied TTL.
func (s *TokenService) IssuePurposeToken(accountID, purpose string, ttl time.Duration) (string, error) {
	if accountID == "" {
		return "", fmt.Errorf("token: account id is required")
	}
	if purpose == "" {
		return "", fmt.Errorf("token: purpose is required")
	}
	if ttl <= 0 {
		return "", fmt.Errorf("token: ttl must be positive")
	}

	now := s.now().UTC()
	claims := PurposeClaims{
		AccountID: accountID,
		Purpose:   purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   accountID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign purpose token: %w", err)
	}
	return signed, nil
}

// VerifyPurposeToken validates the token and checks it carries the expected
// purpose tag.
func (s *TokenService) VerifyPurposeToken(token, purpose string) (*PurposeClaims, error) {
	claims := &PurposeClaims{}
	if err := s.parse(token, claims); err != nil {
		return nil, err
	}
	if strings.TrimSpace(claims.AccountID) == "" {
		return nil, ErrTokenMalformed
	}
	if claims.Purpose != purpose {
		return nil, ErrTokenPurposeMismatch
	}
	return claims, nil
}

func (s *TokenService) parse(token string, claims jwt.Claims) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrTokenMalformed
	}

	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return s.now().UTC() }))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return ErrTokenSignatureInvalid
		default:
			return ErrTokenMalformed
		}
	}

	if parsed == nil || !parsed.Valid {
		return ErrTokenMalformed
	}
	return nil
}

// HashToken calculates a SHA-256 hash of the provided value. Single-use
// markers store this hash rather than the raw token.
func HashToken(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
