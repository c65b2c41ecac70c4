package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arklim/identity-core/internal/infra/security"
	"github.com/arklim/identity-core/internal/transport/http/middleware"
	"github.com/arklim/identity-core/internal/usecase"
)

// AdminHandler exposes administrative role and status operations. Every
// request passes the strict hierarchy check inside the admin service.
type AdminHandler struct {
	admin *usecase.AdminService
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(admin *usecase.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

// RegisterRoutes binds administrative endpoints.
func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.PATCH("/accounts/:id/role", h.ChangeRole)
	r.PATCH("/accounts/:id/status", h.ChangeStatus)
}

// ChangeRole assigns a new role to the target account.
func (h *AdminHandler) ChangeRole(c *gin.Context) {
	claims := middleware.GetSessionClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req RoleChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid role change payload"))
		return
	}

	role, ok := parseRole(req.Role)
	if !ok {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "unknown role"))
		return
	}

	err := h.admin.ChangeRole(c.Request.Context(), claims, c.Param("id"), role)
	if err != nil {
		h.respondAdminError(c, err, "failed to change role")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "role changed"})
}

// ChangeStatus transitions the target account's status.
func (h *AdminHandler) ChangeStatus(c *gin.Context) {
	claims := middleware.GetSessionClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req StatusChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid status change payload"))
		return
	}

	status, ok := parseStatus(req.Status)
	if !ok {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "unknown status"))
		return
	}

	err := h.admin.ChangeStatus(c.Request.Context(), claims, c.Param("id"), status)
	if err != nil {
		h.respondAdminError(c, err, "failed to change status")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "status changed"})
}

func (h *AdminHandler) respondAdminError(c *gin.Context, err error, fallback string) {
	RespondWithMappedError(c, err, []ErrorCase{
		{Err: security.ErrUnauthenticated, Status: http.StatusUnauthorized, Message: "authentication required"},
		{Err: security.ErrSelfModification, Status: http.StatusForbidden, Message: "cannot act on own account"},
		{Err: security.ErrInsufficientRole, Status: http.StatusForbidden, Message: "insufficient role"},
		{Err: usecase.ErrAccountNotFound, Status: http.StatusNotFound, Message: "account not found"},
		{Err: usecase.ErrInvalidRole, Status: http.StatusBadRequest, Message: "unknown role"},
		{Err: usecase.ErrInvalidStatus, Status: http.StatusBadRequest, Message: "unknown status"},
	}, http.StatusInternalServerError, fallback)
}
