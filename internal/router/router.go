package router

import (
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"dtbank/docs"
	"dtbank/internal/auth"
	"dtbank/internal/config"
	apperrors "dtbank/internal/errors"
	"dtbank/internal/handler"
	"dtbank/internal/session"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	jwtService *auth.JWTService,
	tokenStore auth.TokenStoreInterface,
	controller *session.Controller,
	authHandler *handler.AuthHandler,
	accountHandler *handler.AccountHandler,
) {
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.Validator = &CustomValidator{validator: validator.New()}

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = strings.TrimPrefix(strings.TrimPrefix(cfg.SwaggerHost, "https://"), "http://")
	}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes
	api.POST("/auth/login", authHandler.Login)

	// Secured routes (require an operator token)
	secured := api.Group("",
		echojwt.WithConfig(echojwt.Config{
			ContextKey:  handler.ClaimsKey,
			TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
			ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
				claims, err := jwtService.ValidateToken(token)
				if err != nil {
					return nil, err
				}
				if tokenStore.IsRevoked(c.Request().Context(), claims.ID) {
					return nil, echo.ErrUnauthorized
				}
				return claims, nil
			},
			ErrorHandler: func(c echo.Context, err error) error {
				return echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrorResponse{
					Error: "missing, invalid or expired token",
					Code:  "UNAUTHORIZED",
				})
			},
		}),
		RequireSession(controller),
	)

	secured.POST("/auth/logout", authHandler.Logout)

	// Account routes
	secured.POST("/accounts", accountHandler.CreateAccount)
	secured.GET("/accounts/:number", accountHandler.ViewAccount)
	secured.PATCH("/accounts/:number", accountHandler.UpdateField)
	secured.POST("/accounts/:number/transactions", accountHandler.Transact)
	secured.GET("/accounts/:number/balance", accountHandler.CheckBalance)
	secured.DELETE("/accounts/:number", accountHandler.DeleteAccount)
}

// RequireSession resumes the operator session named by the verified token.
func RequireSession(controller *session.Controller) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := c.Get(handler.ClaimsKey).(*auth.Claims)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrorResponse{
					Error: "invalid token",
					Code:  "UNAUTHORIZED",
				})
			}
			s, err := controller.Resume(claims.Operator)
			if err != nil {
				httpErr := apperrors.MapErrorToHTTP(err)
				return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
			}
			c.Set(handler.SessionKey, s)
			return next(c)
		}
	}
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
