package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/arklim/identity-core/internal/core/domain"
	"github.com/arklim/identity-core/internal/core/port"
)

// StubPublisher logs events instead of sending them to Kafka. Useful for
// development environments with no brokers configured.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

func (p *StubPublisher) logEvent(eventType, accountID string, at time.Time, payload any) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.logger.Info("stub event published",
		zap.String("event_type", eventType),
		zap.String("account_id", accountID),
		zap.Time("timestamp", at.UTC()),
		zap.Any("payload", payload),
	)
}

func (p *StubPublisher) PublishAccountRegistered(_ context.Context, event domain.AccountRegisteredEvent) error {
	p.logEvent("identity.account.registered", event.AccountID, event.RegisteredAt, event)
	return nil
}

func (p *StubPublisher) PublishPasswordChanged(_ context.Context, event domain.PasswordChangedEvent) error {
	p.logEvent("identity.password.changed", event.AccountID, event.ChangedAt, event)
	return nil
}

func (p *StubPublisher) PublishPasswordResetRequested(_ context.Context, event domain.PasswordResetRequestedEvent) error {
	p.logEvent("identity.password.reset_requested", event.AccountID, event.RequestedAt, event)
	return nil
}

func (p *StubPublisher) PublishVerificationRequested(_ context.Context, event domain.VerificationRequestedEvent) error {
	p.logEvent("identity.verification.requested", event.AccountID, event.RequestedAt, event)
	return nil
}

func (p *StubPublisher) PublishVerificationConfirmed(_ context.Context, event domain.VerificationConfirmedEvent) error {
	p.logEvent("identity.verification.confirmed", event.AccountID, event.ConfirmedAt, event)
	return nil
}

func (p *StubPublisher) PublishRoleChanged(_ context.Context, event domain.RoleChangedEvent) error {
	p.logEvent("identity.role.changed", event.AccountID, event.ChangedAt, event)
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)
