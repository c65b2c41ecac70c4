package postgres

import (
	"context"
	"errors"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/arklim/identity-core/internal/core/domain"
	"github.com/arklim/identity-core/internal/core/port"
	"github.com/arklim/identity-core/internal/repository"
)

// CredentialRepository implements port.CredentialRepository using PostgreSQL.
// Each account owns exactly one credential row.
type CredentialRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewCredentialRepository wires a PostgreSQL-backed credential repository.
func NewCredentialRepository(exec pgExecutor) *CredentialRepository {
	return &CredentialRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// WithTx returns a repository instance operating within the supplied transaction.
func (r *CredentialRepository) WithTx(tx pgx.Tx) *CredentialRepository {
	if tx == nil {
		return r
	}
	return &CredentialRepository{exec: tx, builder: r.builder}
}

// Create inserts the credential row for a newly registered account.
func (r *CredentialRepository) Create(ctx context.Context, credential domain.Credential) error {
	stmt, args, err := r.builder.Insert("identity.credentials").
		Columns("account_id", "salt", "hash", "updated_at").
		Values(credential.AccountID, credential.Salt, credential.Hash, credential.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert credential sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return repository.ErrConflict
		}
		return fmt.Errorf("insert credential: %w", err)
	}

	return nil
}

// GetByAccountID retrieves the credential for an account.
func (r *CredentialRepository) GetByAccountID(ctx context.Context, accountID string) (*domain.Credential, error) {
	stmt, args, err := r.builder.Select("account_id", "salt", "hash", "updated_at").
		From("identity.credentials").
		Where(squirrel.Eq{"account_id": accountID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select credential sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)

	var credential domain.Credential
	if err := row.Scan(
		&credential.AccountID,
		&credential.Salt,
		&credential.Hash,
		&credential.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan credential: %w", err)
	}

	return &credential, nil
}

// Replace overwrites the salt and hash for an account in one statement. Old
// material is never retained.
func (r *CredentialRepository) Replace(ctx context.Context, credential domain.Credential) error {
	stmt, args, err := r.builder.Update("identity.credentials").
		Set("salt", credential.Salt).
		Set("hash", credential.Hash).
		Set("updated_at", credential.UpdatedAt).
		Where(squirrel.Eq{"account_id": credential.AccountID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build replace credential sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("replace credential: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

var _ port.CredentialRepository = (*CredentialRepository)(nil)
