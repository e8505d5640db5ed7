package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/academic-records-service/internal/auth"
	"github.com/SAP-F-2025/academic-records-service/internal/services"
	"github.com/SAP-F-2025/academic-records-service/internal/utils"
	"github.com/SAP-F-2025/academic-records-service/internal/validator"
)

// Gin context keys set by the auth middleware
const (
	ctxUserID    = "user_id"
	ctxUserRole  = "user_role"
	ctxUserEmail = "user_email"
	ctxPrincipal = "user"
)

const unexpectedErrorMessage = "An unexpected error occurred."

type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// BaseHandler carries what every handler needs: a logger and the error mapping
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	utils.GetLogger(c, h.logger).Info(msg, args...)
}

func (h *BaseHandler) LogError(c *gin.Context, err error, msg string, args ...any) {
	utils.GetLogger(c, h.logger).Error(msg, append(args, "error", err)...)
}

func (h *BaseHandler) RespondWithError(c *gin.Context, status int, message string, err error) {
	resp := ErrorResponse{Message: message}
	if err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			resp.Details = verrs
		} else {
			resp.Details = err.Error()
		}
	}
	c.JSON(status, resp)
}

// handleServiceError maps a service error kind to its HTTP status. Errors
// without a kind are logged and hidden behind a generic 500.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var se *services.ServiceError
	if !errors.As(err, &se) {
		h.LogError(c, err, "Unhandled service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: unexpectedErrorMessage})
		return
	}

	resp := ErrorResponse{Message: se.Message}
	var verrs validator.ValidationErrors
	if errors.As(se.Err, &verrs) {
		resp.Details = verrs
	}
	c.JSON(statusForKind(se.Kind), resp)
}

func statusForKind(kind services.ErrorKind) int {
	switch kind {
	case services.KindConflict:
		return http.StatusConflict
	case services.KindUnauthorized:
		return http.StatusUnauthorized
	case services.KindForbidden:
		return http.StatusForbidden
	case services.KindNotFound, services.KindInvalidState, services.KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// bindJSON decodes the body and answers 400 on failure
func (h *BaseHandler) bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err)
		return false
	}
	return true
}

func (h *BaseHandler) parseIDParam(c *gin.Context, param string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid " + param})
		return 0, false
	}
	return uint(id), true
}

// parseUintQuery reads an optional numeric query parameter
func (h *BaseHandler) parseUintQuery(c *gin.Context, name string) (*uint, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid " + name})
		return nil, false
	}
	id := uint(v)
	return &id, true
}

// principal returns the caller set by the auth middleware, or nil
func principal(c *gin.Context) *auth.Principal {
	v, ok := c.Get(ctxPrincipal)
	if !ok {
		return nil
	}
	p, _ := v.(*auth.Principal)
	return p
}
