package notify

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/arklim/identity-core/internal/core/port"
	"github.com/arklim/identity-core/internal/infra/logger"
)

// LogNotifier records outbound notifications in the service log instead of
// delivering them. Real transports (email, SMS) hang off the same interface
// in downstream deployments.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier constructs a logging notifier.
func NewLogNotifier(log *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: log}
}

func (n *LogNotifier) SendEmailVerification(_ context.Context, email, token string, expiresAt time.Time) error {
	n.logger.Info("email verification dispatch",
		zap.String("email", logger.MaskEmail(email)),
		zap.String("token", logger.MaskString(token)),
		zap.Time("expires_at", expiresAt),
	)
	return nil
}

func (n *LogNotifier) SendPhoneCode(_ context.Context, phone, code string, expiresAt time.Time) error {
	n.logger.Info("phone code dispatch",
		zap.String("phone", logger.MaskPhone(phone)),
		zap.String("code", logger.MaskString(code)),
		zap.Time("expires_at", expiresAt),
	)
	return nil
}

func (n *LogNotifier) SendPasswordReset(_ context.Context, email, token string, expiresAt time.Time) error {
	n.logger.Info("password reset dispatch",
		zap.String("email", logger.MaskEmail(email)),
		zap.String("token", logger.MaskString(token)),
		zap.Time("expires_at", expiresAt),
	)
	return nil
}

var _ port.Notifier = (*LogNotifier)(nil)
