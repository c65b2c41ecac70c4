package port

import "context"

// RepositorySet is the view of persistence handed to a transactional
// operation. All repositories in one set share the same unit of work.
type RepositorySet struct {
	Accounts           AccountRepository
	Credentials        CredentialRepository
	EmailVerifications EmailVerificationRepository
	PhoneVerifications PhoneVerificationRepository
	PasswordResets     PasswordResetRepository
}

// Transactor executes a caller-supplied sequence of persistence mutations as
// one atomic unit. If fn returns an error every mutation is rolled back and
// the error is returned unchanged; begin/commit failures surface as
// repository.ErrTransactionFailed. Partial application is never observable.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(repos RepositorySet) error) error
}
