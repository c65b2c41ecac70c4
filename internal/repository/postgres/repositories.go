package postgres

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arklim/identity-core/internal/core/port"
)

// Repositories groups concrete PostgreSQL repository implementations.
type Repositories struct {
	Accounts           *AccountRepository
	Credentials        *CredentialRepository
	EmailVerifications *EmailVerificationRepository
	PhoneVerifications *PhoneVerificationRepository
	PasswordResets     *PasswordResetRepository
}

// NewRepositories wires all repositories backed by the provided pool.
func NewRepositories(pool *pgxpool.Pool) *Repositories {
	return &Repositories{
		Accounts:           NewAccountRepository(pool),
		Credentials:        NewCredentialRepository(pool),
		EmailVerifications: NewEmailVerificationRepository(pool),
		PhoneVerifications: NewPhoneVerificationRepository(pool),
		PasswordResets:     NewPasswordResetRepository(pool),
	}
}

// Set adapts the group to the port.RepositorySet view used outside of
// transactions.
func (r *Repositories) Set() port.RepositorySet {
	return port.RepositorySet{
		Accounts:           r.Accounts,
		Credentials:        r.Credentials,
		EmailVerifications: r.EmailVerifications,
		PhoneVerifications: r.PhoneVerifications,
		PasswordResets:     r.PasswordResets,
	}
}
