package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/academic-records-service/internal/models"
	"github.com/SAP-F-2025/academic-records-service/internal/services"
)

const (
	accessTokenCookie  = "accessToken"
	refreshTokenCookie = "refreshToken"
	userRoleCookie     = "userRole"
)

// AuthMiddleware authenticates requests with the service's own access tokens
type AuthMiddleware struct {
	BaseHandler
	authService services.AuthService
}

func NewAuthMiddleware(authService services.AuthService, base BaseHandler) *AuthMiddleware {
	return &AuthMiddleware{BaseHandler: base, authService: authService}
}

// Authenticate resolves the bearer token (or the accessToken cookie) into a
// principal and stores it on the context
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := accessToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Message: "invalid authorization header format"})
			return
		}

		p, err := m.authService.Authenticate(c.Request.Context(), token)
		if err != nil {
			m.handleServiceError(c, err)
			c.Abort()
			return
		}

		c.Set(ctxPrincipal, p)
		c.Set(ctxUserID, p.UserID)
		c.Set(ctxUserRole, p.Role)
		c.Set(ctxUserEmail, p.Email)
		c.Next()
	}
}

// RequireRoleMiddleware lets through callers with one of roles. Admins pass every gate.
func (m *AuthMiddleware) RequireRoleMiddleware(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := principal(c)
		if p == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
			return
		}
		if err := p.Require(roles...); err != nil {
			m.LogRequest(c, "Role gate rejected request", "user_id", p.UserID, "role", p.Role)
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{Message: "Access denied"})
			return
		}
		c.Next()
	}
}

// accessToken prefers the Authorization header and falls back to the cookie.
// A present but malformed header is reported as not ok.
func accessToken(c *gin.Context) (string, bool) {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return "", false
		}
		return strings.TrimSpace(parts[1]), true
	}
	token, _ := c.Cookie(accessTokenCookie)
	return token, true
}
