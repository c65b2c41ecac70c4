package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/arklim/identity-core/internal/core/domain"
	"github.com/arklim/identity-core/internal/repository"
)

func TestAccountRepository_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewAccountRepository(mock)

	now := time.Now().UTC()
	account := domain.Account{
		ID:          "acct-1",
		Email:       "user@example.com",
		DisplayName: "User",
		Role:        domain.RoleMember,
		Status:      domain.AccountStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	mock.ExpectExec(`INSERT INTO identity\.accounts`).
		WithArgs(
			account.ID,
			account.Email,
			nil,
			account.DisplayName,
			int(account.Role),
			account.Status,
			false,
			false,
			account.CreatedAt,
			account.UpdatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := repo.Create(context.Background(), account); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAccountRepository_GetByEmail(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewAccountRepository(mock)

	now := time.Now().UTC()
	phone := "+15550100"

	rows := pgxmock.NewRows([]string{
		"id", "email", "phone", "display_name", "role", "status", "email_verified", "phone_verified", "created_at", "updated_at",
	}).AddRow(
		"acct-1", "user@example.com", phone, "User", 3, domain.AccountStatusActive, true, false, now, now,
	)

	mock.ExpectQuery(`SELECT .*FROM identity\.accounts`).
		WithArgs("user@example.com", domain.AccountStatusDeleted).
		WillReturnRows(rows)

	account, err := repo.GetByEmail(context.Background(), "user@example.com")
	if err != nil {
		t.Fatalf("GetByEmail returned error: %v", err)
	}
	if account.Role != domain.RoleModerator {
		t.Fatalf("expected moderator role, got %v", account.Role)
	}
	if account.Phone == nil || *account.Phone != phone {
		t.Fatalf("expected phone pointer populated")
	}
	if !account.EmailVerified {
		t.Fatal("expected email_verified to scan true")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAccountRepository_GetByID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewAccountRepository(mock)

	rows := pgxmock.NewRows([]string{
		"id", "email", "phone", "display_name", "role", "status", "email_verified", "phone_verified", "created_at", "updated_at",
	})

	mock.ExpectQuery(`SELECT .*FROM identity\.accounts`).
		WithArgs("missing").
		WillReturnRows(rows)

	if _, err := repo.GetByID(context.Background(), "missing"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAccountRepository_UpdateStatus_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewAccountRepository(mock)

	now := time.Now().UTC()

	mock.ExpectExec(`UPDATE identity\.accounts`).
		WithArgs(domain.AccountStatusSuspended, now, "missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err = repo.UpdateStatus(context.Background(), "missing", domain.AccountStatusSuspended, now)
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPhoneVerificationRepository_IncrementAttempts(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewPhoneVerificationRepository(mock)

	rows := pgxmock.NewRows([]string{"attempts"}).AddRow(2)

	mock.ExpectQuery(`UPDATE identity\.phone_verifications`).
		WithArgs("pv-1").
		WillReturnRows(rows)

	attempts, err := repo.IncrementAttempts(context.Background(), "pv-1")
	if err != nil {
		t.Fatalf("IncrementAttempts returned error: %v", err)
	}
	if attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", attempts)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
