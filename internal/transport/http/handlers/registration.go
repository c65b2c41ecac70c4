package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arklim/identity-core/internal/core/domain"
	"github.com/arklim/identity-core/internal/usecase"
)

// RegistrationHandler exposes the account registration endpoint.
type RegistrationHandler struct {
	registration *usecase.RegistrationService
	isDev        bool // Development mode flag
}

// NewRegistrationHandler constructs RegistrationHandler.
func NewRegistrationHandler(registration *usecase.RegistrationService, isDev bool) *RegistrationHandler {
	return &RegistrationHandler{
		registration: registration,
		isDev:        isDev,
	}
}

// RegisterRoutes binds registration endpoints.
func (h *RegistrationHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/register", h.Register)
}

// Register creates a new account with the provided credentials and contact
// information and kicks off email verification.
func (h *RegistrationHandler) Register(c *gin.Context) {
	if h.registration == nil {
		c.JSON(http.StatusServiceUnavailable, NewErrorResponse(c, "registration service unavailable"))
		return
	}

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid registration payload"))
		return
	}

	result, err := h.registration.Register(c.Request.Context(), usecase.RegisterInput{
		Email:       strings.TrimSpace(req.Email),
		Phone:       strings.TrimSpace(req.Phone),
		DisplayName: strings.TrimSpace(req.DisplayName),
		Password:    req.Password,
	})
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrEmailTaken, Status: http.StatusConflict, Message: "email already registered"},
		}, http.StatusInternalServerError, "failed to register account")
		return
	}

	resp := RegisterResponse{
		Account:              newAccountSummary(result.Account),
		SessionToken:         result.SessionToken,
		TokenType:            "Bearer",
		RequiresVerification: result.Account.Status == domain.AccountStatusPending,
	}

	if !result.VerificationExp.IsZero() {
		expires := result.VerificationExp.UTC().Format(time.RFC3339)
		resp.VerificationExpires = &expires
	}

	// SECURITY: Only expose the raw verification token in development mode.
	if h.isDev {
		if token := strings.TrimSpace(result.VerificationToken); token != "" {
			resp.DevToken = &token
		}
	}

	c.JSON(http.StatusCreated, resp)
}
