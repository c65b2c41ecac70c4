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
	"github.com/arklim/identity-core/internal/infra/logger"
	"github.com/arklim/identity-core/internal/infra/security"
	"github.com/arklim/identity-core/internal/repository"
)

const defaultPasswordResetTTL = 30 * time.Minute

var (
	// ErrPasswordUnchanged indicates the new password equals the current one.
	ErrPasswordUnchanged = errors.New("new password must differ from the current password")
	// ErrInvalidResetToken indicates the reset token is unknown, malformed, or
	// already consumed.
	ErrInvalidResetToken = errors.New("invalid reset token")
	// ErrResetTokenExpired indicates the reset token is past its validity window.
	ErrResetTokenExpired = errors.New("reset token expired")
)

// PasswordService coordinates password change and reset flows. Credential
// replacement always runs inside a transaction together with the account
// timestamp touch and, for resets, the marker consumption.
type PasswordService struct {
	accounts    port.AccountRepository
	credentials port.CredentialRepository
	resets      port.PasswordResetRepository
	transactor  port.Transactor
	tokens      *security.TokenService
	publisher   port.EventPublisher
	notifier    port.Notifier
	resetTTL    time.Duration
	now         func() time.Time
}

// NewPasswordService constructs a password service.
func NewPasswordService(
	accounts port.AccountRepository,
	credentials port.CredentialRepository,
	resets port.PasswordResetRepository,
	transactor port.Transactor,
	tokens *security.TokenService,
	publisher port.EventPublisher,
	notifier port.Notifier,
	resetTTL time.Duration,
) *PasswordService {
	if resetTTL <= 0 {
		resetTTL = defaultPasswordResetTTL
	}
	return &PasswordService{
		accounts:    accounts,
		credentials: credentials,
		resets:      resets,
		transactor:  transactor,
		tokens:      tokens,
		publisher:   publisher,
		notifier:    notifier,
		resetTTL:    resetTTL,
		now:         time.Now,
	}
}

// WithClock overrides the service clock (tests).
func (s *PasswordService) WithClock(clock func() time.Time) {
	if clock != nil {
		s.now = clock
	}
}

// ChangePassword replaces the credential after verifying the old password.
func (s *PasswordService) ChangePassword(ctx context.Context, accountID, oldPassword, newPassword string) error {
	if strings.TrimSpace(newPassword) == "" {
		return fmt.Errorf("new password is required")
	}

	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("lookup account: %w", err)
	}

	credential, err := s.credentials.GetByAccountID(ctx, account.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidCredentials
		}
		return fmt.Errorf("lookup credential: %w", err)
	}

	if !security.VerifyDigest(oldPassword, credential.Salt, credential.Hash) {
		return ErrInvalidCredentials
	}

	if security.VerifyDigest(newPassword, credential.Salt, credential.Hash) {
		return ErrPasswordUnchanged
	}

	replacement, err := s.newCredential(account.ID, newPassword)
	if err != nil {
		return err
	}

	err = s.transactor.WithinTx(ctx, func(repos port.RepositorySet) error {
		if err := repos.Credentials.Replace(ctx, replacement); err != nil {
			return err
		}
		if err := repos.Accounts.Touch(ctx, account.ID, replacement.UpdatedAt); err != nil {
			return err
		}
		// A password change invalidates any outstanding reset tokens.
		return repos.PasswordResets.DeleteByAccountID(ctx, account.ID)
	})
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}

	if s.publisher != nil {
		_ = s.publisher.PublishPasswordChanged(ctx, domain.PasswordChangedEvent{
			EventID:   uuid.NewString(),
			AccountID: account.ID,
			ChangedAt: replacement.UpdatedAt,
			ChangedBy: account.ID,
			Reason:    "change",
		})
	}

	return nil
}

// RequestPasswordReset issues a short-lived reset token and persists its
// single-use marker. The outcome is identical whether or not the email maps
// to an account, so callers cannot probe for registered addresses.
func (s *PasswordService) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil
	}

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("lookup account: %w", err)
	}

	token, err := s.tokens.IssuePurposeToken(account.ID, security.PurposePasswordReset, s.resetTTL)
	if err != nil {
		return fmt.Errorf("issue reset token: %w", err)
	}

	now := s.now().UTC()
	expiresAt := now.Add(s.resetTTL)
	marker := domain.PasswordReset{
		ID:        uuid.NewString(),
		AccountID: account.ID,
		TokenHash: security.HashToken(token),
		CreatedAt: now,
		ExpiresAt: expiresAt,
	}

	err = s.transactor.WithinTx(ctx, func(repos port.RepositorySet) error {
		// One live reset token per account; a new request supersedes older ones.
		if err := repos.PasswordResets.DeleteByAccountID(ctx, account.ID); err != nil {
			return err
		}
		return repos.PasswordResets.Create(ctx, marker)
	})
	if err != nil {
		return fmt.Errorf("store reset marker: %w", err)
	}

	if s.notifier != nil {
		_ = s.notifier.SendPasswordReset(ctx, account.Email, token, expiresAt)
	}

	if s.publisher != nil {
		_ = s.publisher.PublishPasswordResetRequested(ctx, domain.PasswordResetRequestedEvent{
			EventID:           uuid.NewString(),
			AccountID:         account.ID,
			RequestedAt:       now,
			MaskedDestination: logger.MaskEmail(account.Email),
			ExpiresAt:         expiresAt,
		})
	}

	return nil
}

// ResetPassword consumes a reset token and replaces the credential. The
// marker deletion runs in the same transaction as the credential replacement,
// so a replayed token finds no marker and fails even though its signature and
// expiry still check out.
func (s *PasswordService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if strings.TrimSpace(newPassword) == "" {
		return fmt.Errorf("new password is required")
	}

	claims, err := s.tokens.VerifyPurposeToken(token, security.PurposePasswordReset)
	if err != nil {
		if errors.Is(err, security.ErrTokenExpired) {
			return ErrResetTokenExpired
		}
		return ErrInvalidResetToken
	}

	marker, err := s.resets.GetByTokenHash(ctx, security.HashToken(token))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidResetToken
		}
		return fmt.Errorf("lookup reset marker: %w", err)
	}

	if marker.AccountID != claims.AccountID {
		return ErrInvalidResetToken
	}

	now := s.now().UTC()
	if marker.Expired(now) {
		return ErrResetTokenExpired
	}

	account, err := s.accounts.GetByID(ctx, marker.AccountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidResetToken
		}
		return fmt.Errorf("lookup account: %w", err)
	}

	replacement, err := s.newCredential(account.ID, newPassword)
	if err != nil {
		return err
	}

	err = s.transactor.WithinTx(ctx, func(repos port.RepositorySet) error {
		// Consuming the marker first makes concurrent replays lose the race.
		if err := repos.PasswordResets.Delete(ctx, marker.ID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrInvalidResetToken
			}
			return err
		}
		if err := repos.Credentials.Replace(ctx, replacement); err != nil {
			return err
		}
		if err := repos.Accounts.Touch(ctx, account.ID, replacement.UpdatedAt); err != nil {
			return err
		}
		return repos.PasswordResets.DeleteByAccountID(ctx, account.ID)
	})
	if err != nil {
		if errors.Is(err, ErrInvalidResetToken) {
			return ErrInvalidResetToken
		}
		return fmt.Errorf("reset password: %w", err)
	}

	if s.publisher != nil {
		_ = s.publisher.PublishPasswordChanged(ctx, domain.PasswordChangedEvent{
			EventID:   uuid.NewString(),
			AccountID: account.ID,
			ChangedAt: replacement.UpdatedAt,
			ChangedBy: account.ID,
			Reason:    "reset",
		})
	}

	return nil
}

func (s *PasswordService) newCredential(accountID, password string) (domain.Credential, error) {
	salt, err := security.NewSalt()
	if err != nil {
		return domain.Credential{}, fmt.Errorf("generate salt: %w", err)
	}
	return domain.Credential{
		AccountID: accountID,
		Salt:      salt,
		Hash:      security.Digest(password, salt),
		UpdatedAt: s.now().UTC(),
	}, nil
}
