package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	uuid "github.com/google/uuid"

	"github.com/arklim/identity-core/internal/core/domain"
	"github.com/arklim/identity-core/internal/core/port"
	"github.com/arklim/identity-core/internal/infra/security"
	"github.com/arklim/identity-core/internal/repository"
)

var (
	// ErrInvalidRole indicates the requested role is outside the hierarchy.
	ErrInvalidRole = errors.New("invalid role")
	// ErrInvalidStatus indicates the requested status is unknown.
	ErrInvalidStatus = errors.New("invalid status")
)

// AdminService executes administrative actions gated by the role hierarchy.
// Every path goes through the guard before any mutation.
type AdminService struct {
	accounts  port.AccountRepository
	guard     *security.Guard
	publisher port.EventPublisher
	now       func() time.Time
}

// NewAdminService constructs an admin service.
func NewAdminService(accounts port.AccountRepository, guard *security.Guard, publisher port.EventPublisher) *AdminService {
	return &AdminService{
		accounts:  accounts,
		guard:     guard,
		publisher: publisher,
		now:       time.Now,
	}
}

// WithClock overrides the service clock (tests).
func (s *AdminService) WithClock(clock func() time.Time) {
	if clock != nil {
		s.now = clock
	}
}

// ChangeRole assigns a new role to the target account. Both the target's
// current role and the requested role must sit strictly below the actor.
func (s *AdminService) ChangeRole(ctx context.Context, claims *security.SessionClaims, targetID string, newRole domain.Role) error {
	if !newRole.Valid() {
		return ErrInvalidRole
	}

	target, err := s.accounts.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("lookup target account: %w", err)
	}

	if err := s.guard.AuthorizeRoleChange(claims, target.ID, target.Role, newRole); err != nil {
		return err
	}

	if target.Role == newRole {
		return nil
	}

	now := s.now().UTC()
	if err := s.accounts.UpdateRole(ctx, target.ID, newRole, now); err != nil {
		return fmt.Errorf("update role: %w", err)
	}

	if s.publisher != nil {
		_ = s.publisher.PublishRoleChanged(ctx, domain.RoleChangedEvent{
			EventID:      uuid.NewString(),
			AccountID:    target.ID,
			ActorID:      claims.AccountID,
			PreviousRole: target.Role,
			NewRole:      newRole,
			ChangedAt:    now,
		})
	}

	return nil
}

// ChangeStatus transitions the target account's status. Deletion is a status
// transition like any other; rows are never removed.
func (s *AdminService) ChangeStatus(ctx context.Context, claims *security.SessionClaims, targetID string, status domain.AccountStatus) error {
	switch status {
	case domain.AccountStatusPending, domain.AccountStatusActive,
		domain.AccountStatusSuspended, domain.AccountStatusLocked,
		domain.AccountStatusDeleted:
	default:
		return ErrInvalidStatus
	}

	target, err := s.accounts.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("lookup target account: %w", err)
	}

	if err := s.guard.AuthorizeActOn(claims, target.ID, target.Role); err != nil {
		return err
	}

	if target.Status == status {
		return nil
	}

	if err := s.accounts.UpdateStatus(ctx, target.ID, status, s.now().UTC()); err != nil {
		return fmt.Errorf("update status: %w", err)
	}

	return nil
}
