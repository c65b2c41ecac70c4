package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"

	"github.com/arklim/identity-core/internal/core/domain"
	"github.com/arklim/identity-core/internal/core/port"
	"github.com/arklim/identity-core/internal/infra/config"
	"github.com/arklim/identity-core/internal/infra/logger"
	"github.com/arklim/identity-core/internal/infra/security"
	"github.com/arklim/identity-core/internal/repository"
)

// ErrEmailTaken indicates the email is already bound to a live account.
var ErrEmailTaken = errors.New("email already registered")

// RegistrationService handles new account onboarding. Every registration
// creates the account, its credential, and the initial email verification
// challenge in one transaction.
type RegistrationService struct {
	transactor port.Transactor
	tokens     *security.TokenService
	publisher  port.EventPublisher
	notifier   port.Notifier
	cfg        config.VerificationSettings
	now        func() time.Time
}

// NewRegistrationService constructs a registration service.
func NewRegistrationService(
	transactor port.Transactor,
	tokens *security.TokenService,
	publisher port.EventPublisher,
	notifier port.Notifier,
	cfg config.VerificationSettings,
) *RegistrationService {
	return &RegistrationService{
		transactor: transactor,
		tokens:     tokens,
		publisher:  publisher,
		notifier:   notifier,
		cfg:        cfg,
		now:        time.Now,
	}
}

// WithClock overrides the service clock (tests).
func (s *RegistrationService) WithClock(clock func() time.Time) {
	if clock != nil {
		s.now = clock
	}
}

// RegisterInput is the profile payload for a new account.
type RegisterInput struct {
	Email       string
	Phone       string
	DisplayName string
	Password    string
}

// RegisterResult carries the created account, its session token, and the
// email verification artifact awaiting dispatch.
type RegisterResult struct {
	Account           domain.Account
	SessionToken      string
	VerificationToken string
	VerificationExp   time.Time
}

// Register creates an account with role member and status pending, stores the
// salted credential, and kicks off email verification.
func (s *RegistrationService) Register(ctx context.Context, input RegisterInput) (RegisterResult, error) {
	var zero RegisterResult

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return zero, fmt.Errorf("email is required")
	}
	if strings.TrimSpace(input.Password) == "" {
		return zero, fmt.Errorf("password is required")
	}

	salt, err := security.NewSalt()
	if err != nil {
		return zero, fmt.Errorf("generate salt: %w", err)
	}

	verificationToken, err := security.NewOpaqueToken(0)
	if err != nil {
		return zero, fmt.Errorf("generate verification token: %w", err)
	}

	now := s.now().UTC()
	account := domain.Account{
		ID:          uuid.NewString(),
		Email:       email,
		DisplayName: strings.TrimSpace(input.DisplayName),
		Role:        domain.RoleMember,
		Status:      domain.AccountStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if phone := strings.TrimSpace(input.Phone); phone != "" {
		account.Phone = &phone
	}

	credential := domain.Credential{
		AccountID: account.ID,
		Salt:      salt,
		Hash:      security.Digest(input.Password, salt),
		UpdatedAt: now,
	}

	verificationExp := now.Add(s.emailTokenTTL())
	verification := domain.EmailVerification{
		ID:        uuid.NewString(),
		AccountID: account.ID,
		Token:     verificationToken,
		CreatedAt: now,
		ExpiresAt: verificationExp,
	}

	err = s.transactor.WithinTx(ctx, func(repos port.RepositorySet) error {
		if err := repos.Accounts.Create(ctx, account); err != nil {
			return err
		}
		if err := repos.Credentials.Create(ctx, credential); err != nil {
			return err
		}
		return repos.EmailVerifications.Create(ctx, verification)
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return zero, ErrEmailTaken
		}
		return zero, fmt.Errorf("register account: %w", err)
	}

	sessionToken, err := s.tokens.IssueSessionToken(account)
	if err != nil {
		return zero, fmt.Errorf("issue session token: %w", err)
	}

	if s.notifier != nil {
		_ = s.notifier.SendEmailVerification(ctx, account.Email, verificationToken, verificationExp)
	}

	if s.publisher != nil {
		_ = s.publisher.PublishAccountRegistered(ctx, domain.AccountRegisteredEvent{
			EventID:      uuid.NewString(),
			AccountID:    account.ID,
			Email:        &account.Email,
			Phone:        account.Phone,
			Status:       string(account.Status),
			RegisteredAt: now,
		})
		_ = s.publisher.PublishVerificationRequested(ctx, domain.VerificationRequestedEvent{
			EventID:           uuid.NewString(),
			AccountID:         account.ID,
			Channel:           "email",
			MaskedDestination: logger.MaskEmail(account.Email),
			RequestedAt:       now,
			ExpiresAt:         verificationExp,
		})
	}

	return RegisterResult{
		Account:           account,
		SessionToken:      sessionToken,
		VerificationToken: verificationToken,
		VerificationExp:   verificationExp,
	}, nil
}

func (s *RegistrationService) emailTokenTTL() time.Duration {
	if s.cfg.EmailTokenTTL > 0 {
		return s.cfg.EmailTokenTTL
	}
	return 48 * time.Hour
}
