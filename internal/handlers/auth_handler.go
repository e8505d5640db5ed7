package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/academic-records-service/internal/auth"
	"github.com/SAP-F-2025/academic-records-service/internal/services"
	"github.com/SAP-F-2025/academic-records-service/internal/validator"
)

type AuthHandler struct {
	BaseHandler
	authService   services.AuthService
	secureCookies bool
}

func NewAuthHandler(authService services.AuthService, base BaseHandler, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		BaseHandler:   base,
		authService:   authService,
		secureCookies: secureCookies,
	}
}

// Login verifies the credential, sets the session cookies and returns the token pair
// @Summary Log in
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body services.LoginRequest true "Email and password"
// @Success 200 {object} auth.TokenPair
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if !h.bindJSON(c, &req) {
		return
	}

	pair, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.setSessionCookies(c, pair)
	c.JSON(http.StatusOK, pair)
}

// Register creates a student account
// @Summary Register
// @Tags auth
// @Accept json
// @Produce json
// @Param user body services.RegisterRequest true "New student"
// @Success 201 {object} models.User
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterRequest
	if !h.bindJSON(c, &req) {
		return
	}

	user, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// Refresh exchanges a refresh token, from the body or the cookie, for a new pair.
// An empty body falls back to the cookie; a malformed one is rejected.
// @Summary Refresh tokens
// @Tags auth
// @Produce json
// @Success 200 {object} auth.TokenPair
// @Failure 401 {object} ErrorResponse
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req validator.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}
	if req.RefreshToken == "" {
		req.RefreshToken, _ = c.Cookie(refreshTokenCookie)
	}

	pair, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.setSessionCookies(c, pair)
	c.JSON(http.StatusOK, pair)
}

// Logout revokes the presented tokens and clears the session cookies
// @Summary Log out
// @Tags auth
// @Produce json
// @Success 200 {object} SuccessResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	access, _ := accessToken(c)
	refresh, _ := c.Cookie(refreshTokenCookie)

	if err := h.authService.Logout(c.Request.Context(), access, refresh); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.clearSessionCookies(c)
	c.JSON(http.StatusOK, SuccessResponse{Message: "Logout successful"})
}

// Me returns the authenticated user
// @Summary Current user
// @Tags auth
// @Produce json
// @Success 200 {object} models.User
// @Failure 401 {object} ErrorResponse
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.authService.Me(c.Request.Context(), principal(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) setSessionCookies(c *gin.Context, pair *auth.TokenPair) {
	now := time.Now()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(accessTokenCookie, pair.AccessToken, maxAge(pair.ExpiresAt, now), "/", "", h.secureCookies, true)
	c.SetCookie(refreshTokenCookie, pair.RefreshToken, maxAge(pair.RefreshExpiresAt, now), "/auth", "", h.secureCookies, true)
	c.SetCookie(userRoleCookie, string(pair.Role), maxAge(pair.ExpiresAt, now), "/", "", h.secureCookies, false)
}

func (h *AuthHandler) clearSessionCookies(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(accessTokenCookie, "", -1, "/", "", h.secureCookies, true)
	c.SetCookie(refreshTokenCookie, "", -1, "/auth", "", h.secureCookies, true)
	c.SetCookie(userRoleCookie, "", -1, "/", "", h.secureCookies, false)
}

func maxAge(expiresAt, now time.Time) int {
	secs := int(expiresAt.Sub(now).Seconds())
	if secs < 1 {
		return 1
	}
	return secs
}
