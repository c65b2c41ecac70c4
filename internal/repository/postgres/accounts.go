package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/arklim/identity-core/internal/core/domain"
	"github.com/arklim/identity-core/internal/core/port"
	"github.com/arklim/identity-core/internal/repository"
)

const uniqueViolationCode = "23505"

// AccountRepository implements port.AccountRepository using PostgreSQL.
type AccountRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewAccountRepository wires a PostgreSQL-backed account repository.
func NewAccountRepository(exec pgExecutor) *AccountRepository {
	return &AccountRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// WithTx returns a repository instance operating within the supplied transaction.
func (r *AccountRepository) WithTx(tx pgx.Tx) *AccountRepository {
	if tx == nil {
		return r
	}
	return &AccountRepository{exec: tx, builder: r.builder}
}

// Create inserts a new account row.
func (r *AccountRepository) Create(ctx context.Context, account domain.Account) error {
	var phoneValue any
	if account.Phone != nil && *account.Phone != "" {
		phoneValue = *account.Phone
	}

	query := r.builder.Insert("identity.accounts").
		Columns(
			"id",
			"email",
			"phone",
			"display_name",
			"role",
			"status",
			"email_verified",
			"phone_verified",
			"created_at",
			"updated_at",
		).
		Values(
			account.ID,
			account.Email,
			phoneValue,
			account.DisplayName,
			int(account.Role),
			account.Status,
			account.EmailVerified,
			account.PhoneVerified,
			account.CreatedAt,
			account.UpdatedAt,
		)

	stmt, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build insert account sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return repository.ErrConflict
		}
		return fmt.Errorf("insert account: %w", err)
	}

	return nil
}

// GetByID retrieves an account by identifier.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	stmt, args, err := r.selectAccounts().
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select account sql: %w", err)
	}

	return r.scanAccount(r.exec.QueryRow(ctx, stmt, args...))
}

// GetByEmail retrieves an account by email address. Deleted accounts are not
// visible through this lookup.
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	stmt, args, err := r.selectAccounts().
		Where(squirrel.Eq{"email": email}).
		Where(squirrel.NotEq{"status": domain.AccountStatusDeleted}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select account by email sql: %w", err)
	}

	return r.scanAccount(r.exec.QueryRow(ctx, stmt, args...))
}

// UpdateStatus updates the status field for an account.
func (r *AccountRepository) UpdateStatus(ctx context.Context, id string, status domain.AccountStatus, updatedAt time.Time) error {
	stmt, args, err := r.builder.Update("identity.accounts").
		Set("status", status).
		Set("updated_at", updatedAt).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update account status sql: %w", err)
	}

	return r.execExpectingRow(ctx, stmt, args, "update account status")
}

// UpdateRole updates the role field for an account.
func (r *AccountRepository) UpdateRole(ctx context.Context, id string, role domain.Role, updatedAt time.Time) error {
	stmt, args, err := r.builder.Update("identity.accounts").
		Set("role", int(role)).
		Set("updated_at", updatedAt).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update account role sql: %w", err)
	}

	return r.execExpectingRow(ctx, stmt, args, "update account role")
}

// SetEmailVerified marks the account email as verified.
func (r *AccountRepository) SetEmailVerified(ctx context.Context, id string, verifiedAt time.Time) error {
	stmt, args, err := r.builder.Update("identity.accounts").
		Set("email_verified", true).
		Set("updated_at", verifiedAt).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build set email verified sql: %w", err)
	}

	return r.execExpectingRow(ctx, stmt, args, "set email verified")
}

// SetPhoneVerified marks the account phone as verified.
func (r *AccountRepository) SetPhoneVerified(ctx context.Context, id string, verifiedAt time.Time) error {
	stmt, args, err := r.builder.Update("identity.accounts").
		Set("phone_verified", true).
		Set("updated_at", verifiedAt).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build set phone verified sql: %w", err)
	}

	return r.execExpectingRow(ctx, stmt, args, "set phone verified")
}

// Touch bumps the account updated_at timestamp.
func (r *AccountRepository) Touch(ctx context.Context, id string, updatedAt time.Time) error {
	stmt, args, err := r.builder.Update("identity.accounts").
		Set("updated_at", updatedAt).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build touch account sql: %w", err)
	}

	return r.execExpectingRow(ctx, stmt, args, "touch account")
}

func (r *AccountRepository) selectAccounts() squirrel.SelectBuilder {
	return r.builder.Select(
		"id",
		"email",
		"phone",
		"display_name",
		"role",
		"status",
		"email_verified",
		"phone_verified",
		"created_at",
		"updated_at",
	).From("identity.accounts")
}

func (r *AccountRepository) scanAccount(row pgx.Row) (*domain.Account, error) {
	var (
		account domain.Account
		phone   sql.NullString
		role    int
	)

	if err := row.Scan(
		&account.ID,
		&account.Email,
		&phone,
		&account.DisplayName,
		&role,
		&account.Status,
		&account.EmailVerified,
		&account.PhoneVerified,
		&account.CreatedAt,
		&account.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan account: %w", err)
	}

	account.Role = domain.Role(role)
	if phone.Valid {
		val := phone.String
		account.Phone = &val
	}

	return &account, nil
}

func (r *AccountRepository) execExpectingRow(ctx context.Context, stmt string, args []any, op string) error {
	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

var _ port.AccountRepository = (*AccountRepository)(nil)
