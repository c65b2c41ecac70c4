package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/arklim/identity-core/internal/core/domain"
	"github.com/arklim/identity-core/internal/core/port"
	"github.com/arklim/identity-core/internal/repository"
)

func TestStore_WithinTx_Commits(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE identity\.credentials`).
		WithArgs("salt-new", "hash-new", now, "acct-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`DELETE FROM identity\.password_resets`).
		WithArgs("reset-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectCommit()

	store := newStoreWithConn(mock)

	err = store.WithinTx(context.Background(), func(repos port.RepositorySet) error {
		credential := domain.Credential{
			AccountID: "acct-1",
			Salt:      "salt-new",
			Hash:      "hash-new",
			UpdatedAt: now,
		}
		if err := repos.Credentials.Replace(context.Background(), credential); err != nil {
			return err
		}
		return repos.PasswordResets.Delete(context.Background(), "reset-1")
	})
	if err != nil {
		t.Fatalf("WithinTx returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestStore_WithinTx_RollsBackOnError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	now := time.Now().UTC()
	boom := errors.New("marker already consumed")

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE identity\.credentials`).
		WithArgs("salt-new", "hash-new", now, "acct-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectRollback()

	store := newStoreWithConn(mock)

	err = store.WithinTx(context.Background(), func(repos port.RepositorySet) error {
		credential := domain.Credential{
			AccountID: "acct-1",
			Salt:      "salt-new",
			Hash:      "hash-new",
			UpdatedAt: now,
		}
		if err := repos.Credentials.Replace(context.Background(), credential); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected fn error to propagate unchanged, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestStore_WithinTx_BeginFailure(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	mock.ExpectBegin().WillReturnError(errors.New("connection refused"))

	store := newStoreWithConn(mock)

	err = store.WithinTx(context.Background(), func(port.RepositorySet) error {
		t.Fatal("fn must not run when begin fails")
		return nil
	})
	if !errors.Is(err, repository.ErrTransactionFailed) {
		t.Fatalf("expected ErrTransactionFailed, got %v", err)
	}
}

func TestStore_WithinTx_CommitFailure(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(errors.New("deadlock detected"))
	mock.ExpectRollback()

	store := newStoreWithConn(mock)

	err = store.WithinTx(context.Background(), func(port.RepositorySet) error {
		return nil
	})
	if !errors.Is(err, repository.ErrTransactionFailed) {
		t.Fatalf("expected ErrTransactionFailed, got %v", err)
	}
}
