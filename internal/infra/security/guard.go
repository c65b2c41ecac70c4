package security

import (
	"errors"

	"github.com/arklim/identity-core/internal/core/domain"
)

var (
	// ErrUnauthenticated indicates the caller presented no valid claims.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrInsufficientRole indicates the caller's role is below the required tier
	// or the hierarchy rule rejects the target.
	ErrInsufficientRole = errors.New("insufficient role")
	// ErrSelfModification indicates an actor attempted an administrative action
	// on its own account.
	ErrSelfModification = errors.New("cannot act on own account")
)

// Guard evaluates decoded session claims against the role hierarchy. It is
// the only hierarchy primitive in the service; every administrative path goes
// through it.
type Guard struct{}

// NewGuard constructs a Guard.
func NewGuard() *Guard {
	return &Guard{}
}

// RequireMinimumRole admits the caller iff claims are present and
// claims.Role >= minimum.
func (g *Guard) RequireMinimumRole(claims *SessionClaims, minimum domain.Role) error {
	if claims == nil {
		return ErrUnauthenticated
	}
	if claims.Role < minimum {
		return ErrInsufficientRole
	}
	return nil
}

// AuthorizeActOn admits the actor iff the target account sits strictly below
// it in the hierarchy and is not the actor itself.
func (g *Guard) AuthorizeActOn(claims *SessionClaims, targetID string, targetRole domain.Role) error {
	if claims == nil {
		return ErrUnauthenticated
	}
	if claims.AccountID == targetID {
		return ErrSelfModification
	}
	if !claims.Role.CanActOn(targetRole) {
		return ErrInsufficientRole
	}
	return nil
}

// AuthorizeRoleChange admits a role assignment iff both the target's current
// role and the requested role sit strictly below the actor, and the actor is
// not changing itself.
func (g *Guard) AuthorizeRoleChange(claims *SessionClaims, targetID string, currentRole, requestedRole domain.Role) error {
	if err := g.AuthorizeActOn(claims, targetID, currentRole); err != nil {
		return err
	}
	if !claims.Role.CanActOn(requestedRole) {
		return ErrInsufficientRole
	}
	return nil
}
