package domain

import "time"

// AccountRegisteredEvent announces a newly created account.
type AccountRegisteredEvent struct {
	EventID      string
	AccountID    string
	Email        *string
	Phone        *string
	Status       string
	RegisteredAt time.Time
	Metadata     map[string]any
}

// PasswordChangedEvent announces a credential replacement.
type PasswordChangedEvent struct {
	EventID   string
	AccountID string
	ChangedAt time.Time
	ChangedBy string
	Reason    string
	Metadata  map[string]any
}

// PasswordResetRequestedEvent carries the reset artifact for downstream
// delivery. The core never sends the email itself.
type PasswordResetRequestedEvent struct {
	EventID           string
	AccountID         string
	RequestedAt       time.Time
	MaskedDestination string
	ExpiresAt         time.Time
	Metadata          map[string]any
}

// VerificationRequestedEvent carries a freshly generated email token or phone
// code for downstream delivery.
type VerificationRequestedEvent struct {
	EventID           string
	AccountID         string
	Channel           string
	MaskedDestination string
	RequestedAt       time.Time
	ExpiresAt         time.Time
	Metadata          map[string]any
}

// VerificationConfirmedEvent announces a verified contact channel.
type VerificationConfirmedEvent struct {
	EventID     string
	AccountID   string
	Channel     string
	ConfirmedAt time.Time
	Metadata    map[string]any
}

// RoleChangedEvent announces an administrative role assignment.
type RoleChangedEvent struct {
	EventID      string
	AccountID    string
	ActorID      string
	PreviousRole Role
	NewRole      Role
	ChangedAt    time.Time
	Metadata     map[string]any
}
