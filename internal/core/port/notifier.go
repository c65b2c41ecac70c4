package port

import (
	"context"
	"time"
)

// Notifier delivers verification and reset material to an account's contact
// points. The core decides what to send and when; transports live outside.
type Notifier interface {
	SendEmailVerification(ctx context.Context, email, token string, expiresAt time.Time) error
	SendPhoneCode(ctx context.Context, phone, code string, expiresAt time.Time) error
	SendPasswordReset(ctx context.Context, email, token string, expiresAt time.Time) error
}
