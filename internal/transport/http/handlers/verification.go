package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/arklim/identity-core/internal/transport/http/middleware"
	"github.com/arklim/identity-core/internal/usecase"
)

// VerificationHandler exposes the email and phone verification endpoints.
type VerificationHandler struct {
	verification *usecase.VerificationService
	isDev        bool
}

// NewVerificationHandler constructs VerificationHandler.
func NewVerificationHandler(verification *usecase.VerificationService, isDev bool) *VerificationHandler {
	return &VerificationHandler{
		verification: verification,
		isDev:        isDev,
	}
}

// RequestEmail issues a fresh email verification token for the caller.
func (h *VerificationHandler) RequestEmail(c *gin.Context) {
	accountID, ok := middleware.GetAuthenticatedAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	challenge, err := h.verification.RequestEmailVerification(c.Request.Context(), accountID)
	if err != nil {
		h.respondRequestError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, h.challengeResponse("verification email sent", challenge))
}

// ConfirmEmail consumes an email verification token. The token itself
// identifies the account, so no authentication is required.
func (h *VerificationHandler) ConfirmEmail(c *gin.Context) {
	var req EmailVerifyConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid confirmation payload"))
		return
	}

	err := h.verification.ConfirmEmailVerification(c.Request.Context(), strings.TrimSpace(req.Token))
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrInvalidToken, Status: http.StatusBadRequest, Message: "verification token is invalid"},
			{Err: usecase.ErrTokenExpired, Status: http.StatusBadRequest, Message: "verification token has expired"},
			{Err: usecase.ErrAlreadyVerified, Status: http.StatusConflict, Message: "email already verified"},
		}, http.StatusInternalServerError, "failed to confirm email")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "email verified"})
}

// RequestPhone issues a fresh six-digit phone code for the caller.
func (h *VerificationHandler) RequestPhone(c *gin.Context) {
	accountID, ok := middleware.GetAuthenticatedAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	challenge, err := h.verification.RequestPhoneVerification(c.Request.Context(), accountID)
	if err != nil {
		h.respondRequestError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, h.challengeResponse("verification code sent", challenge))
}

// ConfirmPhone checks a submitted code against the caller's live challenge.
func (h *VerificationHandler) ConfirmPhone(c *gin.Context) {
	accountID, ok := middleware.GetAuthenticatedAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req PhoneVerifyConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid confirmation payload"))
		return
	}

	err := h.verification.ConfirmPhoneCode(c.Request.Context(), accountID, strings.TrimSpace(req.Code))
	if err != nil {
		// Wrong submissions carry the remaining attempt count in the message.
		if errors.Is(err, usecase.ErrInvalidCode) {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, err.Error()))
			return
		}
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrNoCodeFound, Status: http.StatusNotFound, Message: "no verification code found"},
			{Err: usecase.ErrCodeExpired, Status: http.StatusBadRequest, Message: "verification code has expired"},
			{Err: usecase.ErrTooManyAttempts, Status: http.StatusTooManyRequests, Message: "too many attempts, request a new code"},
			{Err: usecase.ErrAlreadyVerified, Status: http.StatusConflict, Message: "phone already verified"},
			{Err: usecase.ErrAccountNotFound, Status: http.StatusNotFound, Message: "account not found"},
		}, http.StatusInternalServerError, "failed to confirm phone")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "phone verified"})
}

func (h *VerificationHandler) respondRequestError(c *gin.Context, err error) {
	RespondWithMappedError(c, err, []ErrorCase{
		{Err: usecase.ErrAlreadyVerified, Status: http.StatusConflict, Message: "already verified"},
		{Err: usecase.ErrRateLimited, Status: http.StatusTooManyRequests, Message: "verification requested too recently"},
		{Err: usecase.ErrNoPhoneNumber, Status: http.StatusBadRequest, Message: "account has no phone number"},
		{Err: usecase.ErrAccountNotFound, Status: http.StatusNotFound, Message: "account not found"},
	}, http.StatusInternalServerError, "failed to issue verification challenge")
}

func (h *VerificationHandler) challengeResponse(message string, challenge usecase.Challenge) VerificationChallengeResponse {
	resp := VerificationChallengeResponse{
		Message:   message,
		ExpiresAt: challenge.ExpiresAt,
	}

	// SECURITY: Only expose the raw secret in development mode.
	if h.isDev {
		if secret := strings.TrimSpace(challenge.Secret); secret != "" {
			resp.DevSecret = &secret
		}
	}

	return resp
}
