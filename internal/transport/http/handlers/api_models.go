package handlers

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arklim/identity-core/internal/core/domain"
)

// ErrorResponse represents a generic error payload with trace ID for debugging.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// NewErrorResponse creates an error response with trace ID from context
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	traceID, _ := c.Get("trace_id")
	traceIDStr, _ := traceID.(string)

	return ErrorResponse{
		Error:   errorMsg,
		TraceID: traceIDStr,
	}
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// AccountSummary describes a minimal view of an account returned by the API.
type AccountSummary struct {
	ID            string               `json:"id"`
	Email         string               `json:"email"`
	Phone         *string              `json:"phone,omitempty"`
	DisplayName   string               `json:"display_name,omitempty"`
	Role          string               `json:"role"`
	Status        domain.AccountStatus `json:"status"`
	EmailVerified bool                 `json:"email_verified"`
	PhoneVerified bool                 `json:"phone_verified"`
	CreatedAt     time.Time            `json:"created_at"`
}

// RegisterRequest defines the account registration payload.
type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Phone       string `json:"phone" binding:"omitempty"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password" binding:"required,min=8"`
}

// RegisterResponse contains registration results and next steps.
type RegisterResponse struct {
	Account              AccountSummary `json:"account"`
	SessionToken         string         `json:"session_token"`
	TokenType            string         `json:"token_type"`
	RequiresVerification bool           `json:"requires_verification"`
	VerificationExpires  *string        `json:"verification_expires_at,omitempty"`
	// SECURITY: DevToken is ONLY exposed in development mode. In production,
	// verification tokens are delivered via the notification channel.
	DevToken *string `json:"dev_token,omitempty"`
}

// LoginRequest defines the payload for the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse describes the response returned for a successful login.
type LoginResponse struct {
	SessionToken string         `json:"session_token"`
	TokenType    string         `json:"token_type"`
	Account      AccountSummary `json:"account"`
}

// SessionResponse conveys the decoded session of the caller.
type SessionResponse struct {
	AccountID string    `json:"account_id"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

// PasswordChangeRequest captures a password change request body.
type PasswordChangeRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}

// PasswordResetRequest represents a password reset initiation payload.
type PasswordResetRequest struct {
	Email string `json:"email" binding:"required"`
}

// PasswordResetConfirmRequest captures a password reset confirmation payload.
type PasswordResetConfirmRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

// VerificationChallengeResponse returns information about an issued challenge.
type VerificationChallengeResponse struct {
	Message   string    `json:"message"`
	ExpiresAt time.Time `json:"expires_at"`
	// SECURITY: DevSecret is ONLY exposed in development mode.
	DevSecret *string `json:"dev_secret,omitempty"`
}

// EmailVerifyConfirmRequest holds the email confirmation payload.
type EmailVerifyConfirmRequest struct {
	Token string `json:"token" binding:"required"`
}

// PhoneVerifyConfirmRequest holds the phone confirmation payload.
type PhoneVerifyConfirmRequest struct {
	Code string `json:"code" binding:"required"`
}

// RoleChangeRequest assigns a new role to a target account.
type RoleChangeRequest struct {
	Role string `json:"role" binding:"required"`
}

// StatusChangeRequest transitions a target account to a new status.
type StatusChangeRequest struct {
	Status string `json:"status" binding:"required"`
}

// HealthResponse describes the service health payload.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
	Timestamp time.Time `json:"timestamp"`
}

// ReadyResponse describes readiness probe results with dependency checks.
type ReadyResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// newAccountSummary converts a domain account to a summary suitable for API responses.
func newAccountSummary(account domain.Account) AccountSummary {
	summary := AccountSummary{
		ID:            account.ID,
		Email:         account.Email,
		DisplayName:   account.DisplayName,
		Role:          account.Role.String(),
		Status:        account.Status,
		EmailVerified: account.EmailVerified,
		PhoneVerified: account.PhoneVerified,
		CreatedAt:     account.CreatedAt,
	}

	if account.Phone != nil {
		phone := strings.TrimSpace(*account.Phone)
		if phone != "" {
			summary.Phone = &phone
		}
	}

	return summary
}

// parseRole resolves a role name to its hierarchy tier.
func parseRole(name string) (domain.Role, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "member":
		return domain.RoleMember, true
	case "support":
		return domain.RoleSupport, true
	case "moderator":
		return domain.RoleModerator, true
	case "admin":
		return domain.RoleAdmin, true
	case "owner":
		return domain.RoleOwner, true
	default:
		return 0, false
	}
}

// parseStatus resolves a status name to its domain value.
func parseStatus(name string) (domain.AccountStatus, bool) {
	switch domain.AccountStatus(strings.ToLower(strings.TrimSpace(name))) {
	case domain.AccountStatusPending:
		return domain.AccountStatusPending, true
	case domain.AccountStatusActive:
		return domain.AccountStatusActive, true
	case domain.AccountStatusSuspended:
		return domain.AccountStatusSuspended, true
	case domain.AccountStatusLocked:
		return domain.AccountStatusLocked, true
	case domain.AccountStatusDeleted:
		return domain.AccountStatusDeleted, true
	default:
		return "", false
	}
}
