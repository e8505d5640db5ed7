package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/academic-records-service/internal/services"
)

// AccountHandler lets any authenticated user edit their own profile and password
type AccountHandler struct {
	BaseHandler
	identity services.IdentityService
}

func NewAccountHandler(identity services.IdentityService, base BaseHandler) *AccountHandler {
	return &AccountHandler{BaseHandler: base, identity: identity}
}

func (h *AccountHandler) UpdateProfile(c *gin.Context) {
	var req services.UpdateUserRequest
	if !h.bindJSON(c, &req) {
		return
	}

	user, err := h.identity.UpdateProfile(c.Request.Context(), principal(c), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *AccountHandler) ChangePassword(c *gin.Context) {
	var req services.ChangePasswordRequest
	if !h.bindJSON(c, &req) {
		return
	}

	if err := h.identity.ChangePassword(c.Request.Context(), principal(c), &req); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Password changed"})
}
