package port

import (
	"context"

	"github.com/arklim/identity-core/internal/core/domain"
)

// EmailVerificationRepository persists the single active email challenge per
// account.
type EmailVerificationRepository interface {
	Create(ctx context.Context, record domain.EmailVerification) error
	GetByToken(ctx context.Context, token string) (*domain.EmailVerification, error)
	GetByAccountID(ctx context.Context, accountID string) (*domain.EmailVerification, error)
	DeleteByAccountID(ctx context.Context, accountID string) error
}

// PhoneVerificationRepository persists the single active phone challenge per
// account. IncrementAttempts returns the counter after the increment; the
// counter never decreases for the lifetime of a record.
type PhoneVerificationRepository interface {
	Create(ctx context.Context, record domain.PhoneVerification) error
	GetByAccountID(ctx context.Context, accountID string) (*domain.PhoneVerification, error)
	IncrementAttempts(ctx context.Context, id string) (int, error)
	DeleteByAccountID(ctx context.Context, accountID string) error
}

// PasswordResetRepository persists single-use markers for password reset
// purpose tokens, keyed by token hash.
type PasswordResetRepository interface {
	Create(ctx context.Context, record domain.PasswordReset) error
	GetByTokenHash(ctx context.Context, hash string) (*domain.PasswordReset, error)
	Delete(ctx context.Context, id string) error
	DeleteByAccountID(ctx context.Context, accountID string) error
}
