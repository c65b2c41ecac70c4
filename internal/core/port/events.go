package port

import (
	"context"

	"github.com/arklim/identity-core/internal/core/domain"
)

// EventPublisher fans identity lifecycle events out to downstream consumers
// (delivery services, audit). Publish failures must never fail the operation
// that produced the event.
type EventPublisher interface {
	PublishAccountRegistered(ctx context.Context, event domain.AccountRegisteredEvent) error
	PublishPasswordChanged(ctx context.Context, event domain.PasswordChangedEvent) error
	PublishPasswordResetRequested(ctx context.Context, event domain.PasswordResetRequestedEvent) error
	PublishVerificationRequested(ctx context.Context, event domain.VerificationRequestedEvent) error
	PublishVerificationConfirmed(ctx context.Context, event domain.VerificationConfirmedEvent) error
	PublishRoleChanged(ctx context.Context, event domain.RoleChangedEvent) error
}
