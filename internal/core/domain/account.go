package domain

import "time"

// AccountStatus enumerates possible account states.
type AccountStatus string

const (
	AccountStatusPending   AccountStatus = "pending"
	AccountStatusActive    AccountStatus = "active"
	AccountStatusSuspended AccountStatus = "suspended"
	AccountStatusLocked    AccountStatus = "locked"
	AccountStatusDeleted   AccountStatus = "deleted"
)

// Account mirrors the persisted representation in the accounts table.
// Accounts are never hard-deleted; deletion is a status transition.
type Account struct {
	ID            string
	Email         string
	Phone         *string
	DisplayName   string
	Role          Role
	Status        AccountStatus
	EmailVerified bool
	PhoneVerified bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CanLogin reports whether the account status admits authentication.
func (a Account) CanLogin() bool {
	return a.Status == AccountStatusActive || a.Status == AccountStatusPending
}

// Credential holds the salted password digest for exactly one account.
// A credential is created together with its account and replaced as a whole
// on every password change or reset.
type Credential struct {
	AccountID string
	Salt      string
	Hash      string
	UpdatedAt time.Time
}
