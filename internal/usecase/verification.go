package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	uuid "github.com/google/uuid"

	"github.com/arklim/identity-core/internal/core/domain"
	"github.com/arklim/identity-core/internal/core/port"
	"github.com/arklim/identity-core/internal/infra/config"
	"github.com/arklim/identity-core/internal/infra/logger"
	"github.com/arklim/identity-core/internal/infra/security"
	"github.com/arklim/identity-core/internal/repository"
)

var (
	// ErrAlreadyVerified indicates the channel is already confirmed for the account.
	ErrAlreadyVerified = errors.New("already verified")
	// ErrRateLimited indicates a challenge was issued too recently.
	ErrRateLimited = errors.New("verification requested too recently")
	// ErrInvalidToken indicates the email token does not match any live challenge.
	ErrInvalidToken = errors.New("invalid verification token")
	// ErrTokenExpired indicates the email token exists but is past expiry.
	ErrTokenExpired = errors.New("verification token expired")
	// ErrNoCodeFound indicates no phone challenge exists for the account.
	ErrNoCodeFound = errors.New("no verification code found")
	// ErrCodeExpired indicates the phone code is past expiry.
	ErrCodeExpired = errors.New("verification code expired")
	// ErrTooManyAttempts indicates the attempt budget is exhausted.
	ErrTooManyAttempts = errors.New("too many attempts")
	// ErrInvalidCode indicates a wrong code submission. It is wrapped with the
	// remaining attempt count.
	ErrInvalidCode = errors.New("invalid verification code")
	// ErrNoPhoneNumber indicates the account has no phone to verify.
	ErrNoPhoneNumber = errors.New("account has no phone number")
)

// Challenge is the artifact produced by a verification request, returned for
// dispatch and testing.
type Challenge struct {
	Secret    string
	ExpiresAt time.Time
}

// VerificationService runs the email and phone ownership state machines.
// Challenge replacement and confirmation both execute transactionally so no
// two challenges for the same channel are ever simultaneously valid.
type VerificationService struct {
	accounts   port.AccountRepository
	emails     port.EmailVerificationRepository
	phones     port.PhoneVerificationRepository
	transactor port.Transactor
	publisher  port.EventPublisher
	notifier   port.Notifier
	cfg        config.VerificationSettings
	now        func() time.Time
}

// NewVerificationService constructs a verification service.
func NewVerificationService(
	accounts port.AccountRepository,
	emails port.EmailVerificationRepository,
	phones port.PhoneVerificationRepository,
	transactor port.Transactor,
	publisher port.EventPublisher,
	notifier port.Notifier,
	cfg config.VerificationSettings,
) *VerificationService {
	return &VerificationService{
		accounts:   accounts,
		emails:     emails,
		phones:     phones,
		transactor: transactor,
		publisher:  publisher,
		notifier:   notifier,
		cfg:        cfg,
		now:        time.Now,
	}
}

// WithClock overrides the service clock (tests).
func (s *VerificationService) WithClock(clock func() time.Time) {
	if clock != nil {
		s.now = clock
	}
}

// RequestEmailVerification issues a fresh email challenge, superseding any
// prior one. Requests inside the resend window fail with ErrRateLimited and
// leave the existing challenge untouched.
func (s *VerificationService) RequestEmailVerification(ctx context.Context, accountID string) (Challenge, error) {
	var zero Challenge

	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return zero, ErrAccountNotFound
		}
		return zero, fmt.Errorf("lookup account: %w", err)
	}

	if account.EmailVerified {
		return zero, ErrAlreadyVerified
	}

	now := s.now().UTC()
	if existing, err := s.emails.GetByAccountID(ctx, accountID); err == nil {
		if now.Before(existing.CreatedAt.Add(s.emailResendWindow())) {
			return zero, ErrRateLimited
		}
	} else if !errors.Is(err, repository.ErrNotFound) {
		return zero, fmt.Errorf("lookup email verification: %w", err)
	}

	token, err := security.NewOpaqueToken(0)
	if err != nil {
		return zero, fmt.Errorf("generate verification token: %w", err)
	}

	record := domain.EmailVerification{
		ID:        uuid.NewString(),
		AccountID: accountID,
		Token:     token,
		CreatedAt: now,
		ExpiresAt: now.Add(s.emailTokenTTL()),
	}

	err = s.transactor.WithinTx(ctx, func(repos port.RepositorySet) error {
		if err := repos.EmailVerifications.DeleteByAccountID(ctx, accountID); err != nil {
			return err
		}
		return repos.EmailVerifications.Create(ctx, record)
	})
	if err != nil {
		return zero, fmt.Errorf("store email verification: %w", err)
	}

	if s.notifier != nil {
		_ = s.notifier.SendEmailVerification(ctx, account.Email, token, record.ExpiresAt)
	}
	s.publishRequested(ctx, account, "email", logger.MaskEmail(account.Email), now, record.ExpiresAt)

	return Challenge{Secret: token, ExpiresAt: record.ExpiresAt}, nil
}

// ConfirmEmailVerification consumes an email token and flips the account's
// verified flag. The flag flip and the challenge deletion are one unit, so a
// token can never confirm twice.
func (s *VerificationService) ConfirmEmailVerification(ctx context.Context, token string) error {
	record, err := s.emails.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidToken
		}
		return fmt.Errorf("lookup email verification: %w", err)
	}

	account, err := s.accounts.GetByID(ctx, record.AccountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidToken
		}
		return fmt.Errorf("lookup account: %w", err)
	}

	if account.EmailVerified {
		return ErrAlreadyVerified
	}

	now := s.now().UTC()
	if record.Expired(now) {
		return ErrTokenExpired
	}

	err = s.transactor.WithinTx(ctx, func(repos port.RepositorySet) error {
		if err := repos.Accounts.SetEmailVerified(ctx, account.ID, now); err != nil {
			return err
		}
		return repos.EmailVerifications.DeleteByAccountID(ctx, account.ID)
	})
	if err != nil {
		return fmt.Errorf("confirm email verification: %w", err)
	}

	s.publishConfirmed(ctx, account.ID, "email", now)
	return nil
}

// RequestPhoneVerification issues a fresh six-digit code, superseding any
// prior one. Requests inside the resend window fail with ErrRateLimited.
func (s *VerificationService) RequestPhoneVerification(ctx context.Context, accountID string) (Challenge, error) {
	var zero Challenge

	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return zero, ErrAccountNotFound
		}
		return zero, fmt.Errorf("lookup account: %w", err)
	}

	if account.Phone == nil || *account.Phone == "" {
		return zero, ErrNoPhoneNumber
	}
	if account.PhoneVerified {
		return zero, ErrAlreadyVerified
	}

	now := s.now().UTC()
	if existing, err := s.phones.GetByAccountID(ctx, accountID); err == nil {
		if now.Before(existing.CreatedAt.Add(s.phoneResendWindow())) {
			return zero, ErrRateLimited
		}
	} else if !errors.Is(err, repository.ErrNotFound) {
		return zero, fmt.Errorf("lookup phone verification: %w", err)
	}

	code, err := security.NewVerificationCode()
	if err != nil {
		return zero, fmt.Errorf("generate verification code: %w", err)
	}

	record := domain.PhoneVerification{
		ID:        uuid.NewString(),
		AccountID: accountID,
		Code:      code,
		Attempts:  0,
		CreatedAt: now,
		ExpiresAt: now.Add(s.phoneCodeTTL()),
	}

	err = s.transactor.WithinTx(ctx, func(repos port.RepositorySet) error {
		if err := repos.PhoneVerifications.DeleteByAccountID(ctx, accountID); err != nil {
			return err
		}
		return repos.PhoneVerifications.Create(ctx, record)
	})
	if err != nil {
		return zero, fmt.Errorf("store phone verification: %w", err)
	}

	if s.notifier != nil {
		_ = s.notifier.SendPhoneCode(ctx, *account.Phone, code, record.ExpiresAt)
	}
	s.publishRequested(ctx, account, "phone", logger.MaskPhone(*account.Phone), now, record.ExpiresAt)

	return Challenge{Secret: code, ExpiresAt: record.ExpiresAt}, nil
}

// ConfirmPhoneCode checks a submitted code against the live challenge. Expiry
// is checked before the attempt budget; a wrong submission burns an attempt
// and reports how many remain. Exhausting the budget locks the challenge
// until a new code is requested, and the correct code does not unlock it.
func (s *VerificationService) ConfirmPhoneCode(ctx context.Context, accountID, submittedCode string) error {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("lookup account: %w", err)
	}

	record, err := s.phones.GetByAccountID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNoCodeFound
		}
		return fmt.Errorf("lookup phone verification: %w", err)
	}

	if account.PhoneVerified {
		return ErrAlreadyVerified
	}

	now := s.now().UTC()
	if record.Expired(now) {
		return ErrCodeExpired
	}
	if record.Locked() {
		return ErrTooManyAttempts
	}

	if record.Code != submittedCode {
		attempts, err := s.phones.IncrementAttempts(ctx, record.ID)
		if err != nil {
			return fmt.Errorf("record failed attempt: %w", err)
		}
		remaining := domain.PhoneMaxAttempts - attempts
		if remaining < 0 {
			remaining = 0
		}
		return fmt.Errorf("%w: %d attempts remaining", ErrInvalidCode, remaining)
	}

	err = s.transactor.WithinTx(ctx, func(repos port.RepositorySet) error {
		if err := repos.Accounts.SetPhoneVerified(ctx, account.ID, now); err != nil {
			return err
		}
		return repos.PhoneVerifications.DeleteByAccountID(ctx, account.ID)
	})
	if err != nil {
		return fmt.Errorf("confirm phone verification: %w", err)
	}

	s.publishConfirmed(ctx, account.ID, "phone", now)
	return nil
}

func (s *VerificationService) publishRequested(ctx context.Context, account *domain.Account, channel, masked string, at, expiresAt time.Time) {
	if s.publisher == nil {
		return
	}
	_ = s.publisher.PublishVerificationRequested(ctx, domain.VerificationRequestedEvent{
		EventID:           uuid.NewString(),
		AccountID:         account.ID,
		Channel:           channel,
		MaskedDestination: masked,
		RequestedAt:       at,
		ExpiresAt:         expiresAt,
	})
}

func (s *VerificationService) publishConfirmed(ctx context.Context, accountID, channel string, at time.Time) {
	if s.publisher == nil {
		return
	}
	_ = s.publisher.PublishVerificationConfirmed(ctx, domain.VerificationConfirmedEvent{
		EventID:     uuid.NewString(),
		AccountID:   accountID,
		Channel:     channel,
		ConfirmedAt: at,
	})
}

func (s *VerificationService) emailTokenTTL() time.Duration {
	if s.cfg.EmailTokenTTL > 0 {
		return s.cfg.EmailTokenTTL
	}
	return 48 * time.Hour
}

func (s *VerificationService) emailResendWindow() time.Duration {
	if s.cfg.EmailResendWindow > 0 {
		return s.cfg.EmailResendWindow
	}
	return 5 * time.Minute
}

func (s *VerificationService) phoneCodeTTL() time.Duration {
	if s.cfg.PhoneCodeTTL > 0 {
		return s.cfg.PhoneCodeTTL
	}
	return 15 * time.Minute
}

func (s *VerificationService) phoneResendWindow() time.Duration {
	if s.cfg.PhoneResendWindow > 0 {
		return s.cfg.PhoneResendWindow
	}
	return time.Minute
}
