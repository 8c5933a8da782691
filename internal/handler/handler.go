package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"dtbank/internal/errors"
	"dtbank/internal/session"
)

const (
	// SessionKey is the echo context key holding the operator *session.Session.
	SessionKey = "session"
	// ClaimsKey is the echo context key holding the verified *auth.Claims.
	ClaimsKey = "user"
)

// MessageResponse is a plain confirmation message.
type MessageResponse struct {
	Message string `json:"message"`
}

func sessionFrom(c echo.Context) (*session.Session, error) {
	s, ok := c.Get(SessionKey).(*session.Session)
	if !ok || s == nil {
		return nil, unauthorized("operator session required")
	}
	return s, nil
}

// toHTTPError converts a domain error into an echo error carrying ErrorResponse.
func toHTTPError(err error) *echo.HTTPError {
	httpErr := errors.MapErrorToHTTP(err)
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}

func badRequest(message, code string) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
		Error: message,
		Code:  code,
	})
}

func unauthorized(message string) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
		Error: message,
		Code:  "UNAUTHORIZED",
	})
}
