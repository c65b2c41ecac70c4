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

// EmailVerificationRepository implements port.EmailVerificationRepository
// using PostgreSQL.
type EmailVerificationRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewEmailVerificationRepository wires a PostgreSQL-backed email verification repository.
func NewEmailVerificationRepository(exec pgExecutor) *EmailVerificationRepository {
	return &EmailVerificationRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// WithTx returns a repository instance operating within the supplied transaction.
func (r *EmailVerificationRepository) WithTx(tx pgx.Tx) *EmailVerificationRepository {
	if tx == nil {
		return r
	}
	return &EmailVerificationRepository{exec: tx, builder: r.builder}
}

// Create inserts a new email verification challenge.
func (r *EmailVerificationRepository) Create(ctx context.Context, record domain.EmailVerification) error {
	stmt, args, err := r.builder.Insert("identity.email_verifications").
		Columns("id", "account_id", "token", "created_at", "expires_at").
		Values(record.ID, record.AccountID, record.Token, record.CreatedAt, record.ExpiresAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert email verification sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert email verification: %w", err)
	}

	return nil
}

// GetByToken retrieves an email verification challenge by its opaque token.
func (r *EmailVerificationRepository) GetByToken(ctx context.Context, token string) (*domain.EmailVerification, error) {
	stmt, args, err := r.builder.Select("id", "account_id", "token", "created_at", "expires_at").
		From("identity.email_verifications").
		Where(squirrel.Eq{"token": token}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select email verification sql: %w", err)
	}

	return scanEmailVerification(r.exec.QueryRow(ctx, stmt, args...))
}

// GetByAccountID retrieves the active email verification challenge for an account.
func (r *EmailVerificationRepository) GetByAccountID(ctx context.Context, accountID string) (*domain.EmailVerification, error) {
	stmt, args, err := r.builder.Select("id", "account_id", "token", "created_at", "expires_at").
		From("identity.email_verifications").
		Where(squirrel.Eq{"account_id": accountID}).
		OrderBy("created_at DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select email verification by account sql: %w", err)
	}

	return scanEmailVerification(r.exec.QueryRow(ctx, stmt, args...))
}

// DeleteByAccountID removes every email verification challenge for an account.
func (r *EmailVerificationRepository) DeleteByAccountID(ctx context.Context, accountID string) error {
	stmt, args, err := r.builder.Delete("identity.email_verifications").
		Where(squirrel.Eq{"account_id": accountID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete email verifications sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("delete email verifications: %w", err)
	}

	return nil
}

func scanEmailVerification(row pgx.Row) (*domain.EmailVerification, error) {
	var record domain.EmailVerification
	if err := row.Scan(
		&record.ID,
		&record.AccountID,
		&record.Token,
		&record.CreatedAt,
		&record.ExpiresAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan email verification: %w", err)
	}

	return &record, nil
}

var _ port.EmailVerificationRepository = (*EmailVerificationRepository)(nil)

// PhoneVerificationRepository implements port.PhoneVerificationRepository
// using PostgreSQL.
type PhoneVerificationRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewPhoneVerificationRepository wires a PostgreSQL-backed phone verification repository.
func NewPhoneVerificationRepository(exec pgExecutor) *PhoneVerificationRepository {
	return &PhoneVerificationRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// WithTx returns a repository instance operating within the supplied transaction.
func (r *PhoneVerificationRepository) WithTx(tx pgx.Tx) *PhoneVerificationRepository {
	if tx == nil {
		return r
	}
	return &PhoneVerificationRepository{exec: tx, builder: r.builder}
}

// Create inserts a new phone verification challenge with a zero attempt counter.
func (r *PhoneVerificationRepository) Create(ctx context.Context, record domain.PhoneVerification) error {
	stmt, args, err := r.builder.Insert("identity.phone_verifications").
		Columns("id", "account_id", "code", "attempts", "created_at", "expires_at").
		Values(record.ID, record.AccountID, record.Code, record.Attempts, record.CreatedAt, record.ExpiresAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert phone verification sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert phone verification: %w", err)
	}

	return nil
}

// GetByAccountID retrieves the active phone verification challenge for an account.
func (r *PhoneVerificationRepository) GetByAccountID(ctx context.Context, accountID string) (*domain.PhoneVerification, error) {
	stmt, args, err := r.builder.Select("id", "account_id", "code", "attempts", "created_at", "expires_at").
		From("identity.phone_verifications").
		Where(squirrel.Eq{"account_id": accountID}).
		OrderBy("created_at DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select phone verification sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)

	var record domain.PhoneVerification
	if err := row.Scan(
		&record.ID,
		&record.AccountID,
		&record.Code,
		&record.Attempts,
		&record.CreatedAt,
		&record.ExpiresAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan phone verification: %w", err)
	}

	return &record, nil
}

// IncrementAttempts bumps the attempt counter atomically and returns the new
// value. The counter never decreases for the lifetime of the record.
func (r *PhoneVerificationRepository) IncrementAttempts(ctx context.Context, id string) (int, error) {
	stmt := `
		UPDATE identity.phone_verifications
		   SET attempts = attempts + 1
		 WHERE id = $1
		RETURNING attempts
	`

	var attempts int
	if err := r.exec.QueryRow(ctx, stmt, id).Scan(&attempts); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, repository.ErrNotFound
		}
		return 0, fmt.Errorf("increment phone verification attempts: %w", err)
	}

	return attempts, nil
}

// DeleteByAccountID removes every phone verification challenge for an account.
func (r *PhoneVerificationRepository) DeleteByAccountID(ctx context.Context, accountID string) error {
	stmt, args, err := r.builder.Delete("identity.phone_verifications").
		Where(squirrel.Eq{"account_id": accountID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete phone verifications sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("delete phone verifications: %w", err)
	}

	return nil
}

var _ port.PhoneVerificationRepository = (*PhoneVerificationRepository)(nil)
