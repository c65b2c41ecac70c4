package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/arklim/identity-core/internal/core/domain"
	"github.com/arklim/identity-core/internal/core/port"
	"github.com/arklim/identity-core/internal/infra/security"
	"github.com/arklim/identity-core/internal/repository"
)

var (
	// ErrInvalidCredentials indicates the email or password is incorrect. It is
	// deliberately the same error whether the account exists or not.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountSuspended indicates the account is suspended.
	ErrAccountSuspended = errors.New("account suspended")
	// ErrAccountLocked indicates the account is locked.
	ErrAccountLocked = errors.New("account locked")
	// ErrAccountNotFound indicates the referenced account does not exist.
	ErrAccountNotFound = errors.New("account not found")
	// ErrInvalidSession indicates the presented session token failed validation.
	ErrInvalidSession = errors.New("invalid session")
)

// AuthService coordinates login and session validation.
type AuthService struct {
	accounts    port.AccountRepository
	credentials port.CredentialRepository
	tokens      *security.TokenService
	now         func() time.Time
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(accounts port.AccountRepository, credentials port.CredentialRepository, tokens *security.TokenService) *AuthService {
	return &AuthService{
		accounts:    accounts,
		credentials: credentials,
		tokens:      tokens,
		now:         time.Now,
	}
}

// WithClock overrides the service clock (tests).
func (s *AuthService) WithClock(clock func() time.Time) {
	if clock != nil {
		s.now = clock
	}
}

// Login validates credentials and issues a session token. The password check
// runs before any status check so a caller with a wrong password learns
// nothing about the account state.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, domain.Account, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return "", domain.Account{}, ErrInvalidCredentials
	}

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", domain.Account{}, ErrInvalidCredentials
		}
		return "", domain.Account{}, fmt.Errorf("lookup account: %w", err)
	}

	credential, err := s.credentials.GetByAccountID(ctx, account.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", domain.Account{}, ErrInvalidCredentials
		}
		return "", domain.Account{}, fmt.Errorf("lookup credential: %w", err)
	}

	if !security.VerifyDigest(password, credential.Salt, credential.Hash) {
		return "", domain.Account{}, ErrInvalidCredentials
	}

	switch account.Status {
	case domain.AccountStatusSuspended:
		return "", domain.Account{}, ErrAccountSuspended
	case domain.AccountStatusLocked:
		return "", domain.Account{}, ErrAccountLocked
	case domain.AccountStatusDeleted:
		return "", domain.Account{}, ErrInvalidCredentials
	}

	if !account.CanLogin() {
		return "", domain.Account{}, ErrInvalidCredentials
	}

	token, err := s.tokens.IssueSessionToken(*account)
	if err != nil {
		return "", domain.Account{}, fmt.Errorf("issue session token: %w", err)
	}

	return token, *account, nil
}

// VerifySession decodes and validates a session token. All token failures
// collapse into ErrInvalidSession so transport code maps them to one outcome.
func (s *AuthService) VerifySession(_ context.Context, token string) (*security.SessionClaims, error) {
	claims, err := s.tokens.VerifySessionToken(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	return claims, nil
}
