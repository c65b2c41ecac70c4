package port

import (
	"context"
	"time"

	"github.com/arklim/identity-core/internal/core/domain"
)

// AccountRepository exposes persistence behavior for accounts.
type AccountRepository interface {
	Create(ctx context.Context, account domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	UpdateStatus(ctx context.Context, id string, status domain.AccountStatus, updatedAt time.Time) error
	UpdateRole(ctx context.Context, id string, role domain.Role, updatedAt time.Time) error
	SetEmailVerified(ctx context.Context, id string, verifiedAt time.Time) error
	SetPhoneVerified(ctx context.Context, id string, verifiedAt time.Time) error
	Touch(ctx context.Context, id string, updatedAt time.Time) error
}

// CredentialRepository exposes persistence behavior for the 1:1 credential row.
type CredentialRepository interface {
	Create(ctx context.Context, credential domain.Credential) error
	GetByAccountID(ctx context.Context, accountID string) (*domain.Credential, error)
	Replace(ctx context.Context, credential domain.Credential) error
}
