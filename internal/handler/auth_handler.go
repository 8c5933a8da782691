package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"dtbank/internal/auth"
	"dtbank/internal/errors"
	"dtbank/internal/session"
)

// AuthHandler handles operator login and logout.
type AuthHandler struct {
	controller *session.Controller
	jwtService *auth.JWTService
	tokenStore auth.TokenStoreInterface
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(controller *session.Controller, jwtService *auth.JWTService, tokenStore auth.TokenStoreInterface) *AuthHandler {
	return &AuthHandler{
		controller: controller,
		jwtService: jwtService,
		tokenStore: tokenStore,
	}
}

// LoginRequest represents an operator login request.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse represents a successful login.
type LoginResponse struct {
	Authenticated bool      `json:"authenticated"`
	Message       string    `json:"message"`
	AccessToken   string    `json:"access_token"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// Login godoc
// @Summary Operator login
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body", "INVALID_REQUEST")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(err.Error(), "VALIDATION_ERROR")
	}

	s, ok := h.controller.Login(req.Username, req.Password)
	if !ok {
		return toHTTPError(errors.ErrInvalidCredentials)
	}

	token, _, expiresAt, err := h.jwtService.GenerateAccessToken(s.Operator())
	if err != nil {
		c.Logger().Errorf("issue access token: %v", err)
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, LoginResponse{
		Authenticated: true,
		Message:       fmt.Sprintf("Welcome, %s", s.Operator()),
		AccessToken:   token,
		ExpiresAt:     expiresAt,
	})
}

// Logout godoc
// @Summary Operator logout
// @Description Revokes the presented access token until it expires.
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} MessageResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	claims, ok := c.Get(ClaimsKey).(*auth.Claims)
	if !ok || claims == nil {
		return unauthorized("invalid token")
	}

	var ttl time.Duration
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	if err := h.tokenStore.RevokeToken(c.Request().Context(), claims.ID, ttl); err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "logged out successfully"})
}
