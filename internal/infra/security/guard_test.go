package security

import (
	"errors"
	"testing"

	"github.com/arklim/identity-core/internal/core/domain"
)

func TestCanActOn_FullGrid(t *testing.T) {
	// Strict order: an actor acts only on strictly lower roles. All 25
	// pairs, including every equal-role case returning false.
	for actor := domain.RoleMember; actor <= domain.RoleOwner; actor++ {
		for target := domain.RoleMember; target <= domain.RoleOwner; target++ {
			want := target < actor
			if got := actor.CanActOn(target); got != want {
				t.Errorf("CanActOn(actor=%d, target=%d) = %v, want %v", actor, target, got, want)
			}
		}
	}
}

func TestGuard_RequireMinimumRole(t *testing.T) {
	guard := NewGuard()

	if err := guard.RequireMinimumRole(nil, domain.RoleMember); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated for absent claims, got %v", err)
	}

	claims := &SessionClaims{AccountID: "acct-1", Role: domain.RoleModerator}

	if err := guard.RequireMinimumRole(claims, domain.RoleModerator); err != nil {
		t.Fatalf("expected equal role to pass, got %v", err)
	}
	if err := guard.RequireMinimumRole(claims, domain.RoleMember); err != nil {
		t.Fatalf("expected higher role to pass, got %v", err)
	}
	if err := guard.RequireMinimumRole(claims, domain.RoleAdmin); !errors.Is(err, ErrInsufficientRole) {
		t.Fatalf("expected ErrInsufficientRole, got %v", err)
	}
}

func TestGuard_AuthorizeActOn(t *testing.T) {
	guard := NewGuard()
	claims := &SessionClaims{AccountID: "actor-1", Role: domain.RoleAdmin}

	if err := guard.AuthorizeActOn(nil, "target-1", domain.RoleMember); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if err := guard.AuthorizeActOn(claims, "actor-1", domain.RoleMember); !errors.Is(err, ErrSelfModification) {
		t.Fatalf("expected ErrSelfModification, got %v", err)
	}
	if err := guard.AuthorizeActOn(claims, "target-1", domain.RoleAdmin); !errors.Is(err, ErrInsufficientRole) {
		t.Fatalf("expected ErrInsufficientRole for equal role, got %v", err)
	}
	if err := guard.AuthorizeActOn(claims, "target-1", domain.RoleOwner); !errors.Is(err, ErrInsufficientRole) {
		t.Fatalf("expected ErrInsufficientRole for higher role, got %v", err)
	}
	if err := guard.AuthorizeActOn(claims, "target-1", domain.RoleModerator); err != nil {
		t.Fatalf("expected lower role to pass, got %v", err)
	}
}

func TestGuard_AuthorizeRoleChange(t *testing.T) {
	guard := NewGuard()
	claims := &SessionClaims{AccountID: "actor-1", Role: domain.RoleAdmin}

	// Both current and requested roles strictly below the actor.
	if err := guard.AuthorizeRoleChange(claims, "target-1", domain.RoleMember, domain.RoleModerator); err != nil {
		t.Fatalf("expected promotion to pass, got %v", err)
	}

	// Requested role at the actor's own tier.
	if err := guard.AuthorizeRoleChange(claims, "target-1", domain.RoleMember, domain.RoleAdmin); !errors.Is(err, ErrInsufficientRole) {
		t.Fatalf("expected ErrInsufficientRole for requested tier, got %v", err)
	}

	// Current role at the actor's own tier.
	if err := guard.AuthorizeRoleChange(claims, "target-1", domain.RoleAdmin, domain.RoleMember); !errors.Is(err, ErrInsufficientRole) {
		t.Fatalf("expected ErrInsufficientRole for current tier, got %v", err)
	}

	// Actors never change their own role.
	if err := guard.AuthorizeRoleChange(claims, "actor-1", domain.RoleMember, domain.RoleModerator); !errors.Is(err, ErrSelfModification) {
		t.Fatalf("expected ErrSelfModification, got %v", err)
	}
}
