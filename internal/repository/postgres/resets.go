package postgres

import (
	"context"
	"errors"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/arklim/identity-core/internal/core/domain"
	"github.com/arklim/identity-core/internal/core/port"
	"github.com/arklim/identity-core/internal/repository"
)

// PasswordResetRepository implements port.PasswordResetRepository using
// PostgreSQL. Rows are single-use markers keyed by the SHA-256 hash of the
// issued token; the raw token is never stored.
type PasswordResetRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewPasswordResetRepository wires a PostgreSQL-backed password reset repository.
func NewPasswordResetRepository(exec pgExecutor) *PasswordResetRepository {
	return &PasswordResetRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// WithTx returns a repository instance operating within the supplied transaction.
func (r *PasswordResetRepository) WithTx(tx pgx.Tx) *PasswordResetRepository {
	if tx == nil {
		return r
	}
	return &PasswordResetRepository{exec: tx, builder: r.builder}
}

// Create inserts a new password reset marker.
func (r *PasswordResetRepository) Create(ctx context.Context, record domain.PasswordReset) error {
	stmt, args, err := r.builder.Insert("identity.password_resets").
		Columns("id", "account_id", "token_hash", "created_at", "expires_at").
		Values(record.ID, record.AccountID, record.TokenHash, record.CreatedAt, record.ExpiresAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert password reset sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert password reset: %w", err)
	}

	return nil
}

// GetByTokenHash retrieves a marker by token hash.
func (r *PasswordResetRepository) GetByTokenHash(ctx context.Context, hash string) (*domain.PasswordReset, error) {
	stmt, args, err := r.builder.Select("id", "account_id", "token_hash", "created_at", "expires_at").
		From("identity.password_resets").
		Where(squirrel.Eq{"token_hash": hash}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select password reset sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)

	var record domain.PasswordReset
	if err := row.Scan(
		&record.ID,
		&record.AccountID,
		&record.TokenHash,
		&record.CreatedAt,
		&record.ExpiresAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan password reset: %w", err)
	}

	return &record, nil
}

// Delete removes a single marker by identifier. Deleting an absent marker
// reports ErrNotFound so callers can detect token replay.
func (r *PasswordResetRepository) Delete(ctx context.Context, id string) error {
	stmt, args, err := r.builder.Delete("identity.password_resets").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete password reset sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete password reset: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// DeleteByAccountID removes every marker for an account. Used when a reset
// completes so sibling tokens die with the consumed one.
func (r *PasswordResetRepository) DeleteByAccountID(ctx context.Context, accountID string) error {
	stmt, args, err := r.builder.Delete("identity.password_resets").
		Where(squirrel.Eq{"account_id": accountID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete password resets sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("delete password resets: %w", err)
	}

	return nil
}

var _ port.PasswordResetRepository = (*PasswordResetRepository)(nil)
