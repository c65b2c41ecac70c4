package domain

import "time"

// PhoneMaxAttempts is the number of wrong code submissions after which a
// phone verification record becomes inert until replaced.
const PhoneMaxAttempts = 3

// EmailVerification is the single active email ownership challenge for an
// account. Requesting a new one always replaces it; confirming one deletes it.
type EmailVerification struct {
	ID        string
	AccountID string
	Token     string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the challenge is past its expiry at the given time.
func (v EmailVerification) Expired(now time.Time) bool {
	return now.After(v.ExpiresAt)
}

// PhoneVerification is the single active phone ownership challenge for an
// account. Attempts only ever increase; at PhoneMaxAttempts the record is
// inert and every further check fails until a new code is requested.
type PhoneVerification struct {
	ID        string
	AccountID string
	Code      string
	Attempts  int
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the challenge is past its expiry at the given time.
func (v PhoneVerification) Expired(now time.Time) bool {
	return now.After(v.ExpiresAt)
}

// Locked reports whether the attempt budget is exhausted.
func (v PhoneVerification) Locked() bool {
	return v.Attempts >= PhoneMaxAttempts
}

// RemainingAttempts returns how many wrong submissions are still tolerated.
func (v PhoneVerification) RemainingAttempts() int {
	remaining := PhoneMaxAttempts - v.Attempts
	if remaining < 0 {
		return 0
	}
	return remaining
}

// PasswordReset is the persisted single-use marker for a password reset
// purpose token. The signed token alone cannot detect reuse, so confirmation
// requires a live marker and consumes it atomically with the credential
// replacement.
type PasswordReset struct {
	ID        string
	AccountID string
	TokenHash string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the marker is past its expiry at the given time.
func (r PasswordReset) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}
