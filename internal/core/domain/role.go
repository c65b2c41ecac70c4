package domain

import "fmt"

// Role is a permission tier on a strict total order. Higher values outrank
// lower values; every administrative action requires the target to sit
// strictly below the actor.
type Role int

const (
	RoleMember    Role = 1
	RoleSupport   Role = 2
	RoleModerator Role = 3
	RoleAdmin     Role = 4
	RoleOwner     Role = 5
)

// Valid reports whether the role falls inside the defined hierarchy.
func (r Role) Valid() bool {
	return r >= RoleMember && r <= RoleOwner
}

// CanActOn reports whether an actor at this role may administratively act on
// a target role. The rule is strict ordering: only targets below the actor
// qualify, so equal roles (including the actor itself) are always rejected.
func (r Role) CanActOn(target Role) bool {
	return target < r
}

func (r Role) String() string {
	switch r {
	case RoleMember:
		return "member"
	case RoleSupport:
		return "support"
	case RoleModerator:
		return "moderator"
	case RoleAdmin:
		return "admin"
	case RoleOwner:
		return "owner"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}
