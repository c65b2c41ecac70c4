package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arklim/identity-core/internal/core/port"
	"github.com/arklim/identity-core/internal/repository"
)

// pgExecutor is satisfied by *pgxpool.Pool, pgx.Tx, and the pgxmock test
// doubles. Repositories issue all statements through it so the same code
// serves both pooled and transactional execution.
type pgExecutor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// txBeginner is the slice of pool behavior the transactor needs.
type txBeginner interface {
	pgExecutor
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Store owns the PostgreSQL connection pool and implements port.Transactor.
type Store struct {
	db txBeginner
}

// NewStore wraps an established pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{db: pool}
}

// newStoreWithConn exists for tests that substitute a mock connection.
func newStoreWithConn(db txBeginner) *Store {
	return &Store{db: db}
}

// WithinTx runs fn inside a single database transaction. Errors returned by
// fn roll the transaction back and propagate unchanged; failures to begin or
// commit are reported as repository.ErrTransactionFailed.
func (s *Store) WithinTx(ctx context.Context, fn func(repos port.RepositorySet) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", repository.ErrTransactionFailed, err)
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	repos := port.RepositorySet{
		Accounts:           NewAccountRepository(tx),
		Credentials:        NewCredentialRepository(tx),
		EmailVerifications: NewEmailVerificationRepository(tx),
		PhoneVerifications: NewPhoneVerificationRepository(tx),
		PasswordResets:     NewPasswordResetRepository(tx),
	}

	if err := fn(repos); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: commit: %v", repository.ErrTransactionFailed, err)
	}

	return nil
}

// Close releases resources associated with the store.
func (s *Store) Close() {
	if s == nil {
		return
	}
	if pool, ok := s.db.(*pgxpool.Pool); ok && pool != nil {
		pool.Close()
	}
}

var _ port.Transactor = (*Store)(nil)
