package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	_ "dtbank/docs" // swagger docs

	"github.com/labstack/echo/v4"

	"dtbank/internal/auth"
	"dtbank/internal/cache"
	"dtbank/internal/config"
	"dtbank/internal/db"
	"dtbank/internal/handler"
	"dtbank/internal/repository"
	"dtbank/internal/router"
	"dtbank/internal/service"
	"dtbank/internal/session"
)

// @title Bank Customer Records API
// @version 1.0
// @description Single-operator customer account management with deposits, withdrawals and JWT sessions.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := config.Load()

	gormDB, err := db.Open(cfg)
	if err != nil {
		logger.Error("database init", "driver", cfg.DBDriver, "error", err)
		os.Exit(1)
	}

	if cfg.ResetDB {
		logger.Warn("RESET_DB=true detected, dropping customers table")
		if err := db.Reset(gormDB); err != nil {
			logger.Warn("drop customers table (may not exist)", "error", err)
		}
	}

	if err := db.Migrate(gormDB); err != nil {
		logger.Error("migrate", "error", err)
		os.Exit(1)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()
	pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	if err := cacheClient.Ping(pingCtx); err != nil {
		logger.Warn("redis unavailable, logout will not revoke tokens", "addr", cfg.RedisAddr, "error", err)
	}
	cancel()

	credentials, err := newCredentialStore(cfg)
	if err != nil {
		logger.Error("operator credential", "error", err)
		os.Exit(1)
	}

	// Initialize repositories and services
	accountRepo := repository.NewAccountRepository(gormDB)
	accountService := service.NewAccountService(accountRepo)
	transactionService := service.NewTransactionService(accountRepo)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.AccessTokenTTL)
	tokenStore := auth.NewTokenStore(cacheClient)
	controller := session.NewController(credentials, accountService, transactionService, logger)

	e := echo.New()
	e.HideBanner = true
	router.Register(
		e,
		cfg,
		jwtService,
		tokenStore,
		controller,
		handler.NewAuthHandler(controller, jwtService, tokenStore),
		handler.NewAccountHandler(),
	)

	logger.Info("swagger documentation available", "url", swaggerURL(cfg))

	addr := ":" + cfg.ServerPort
	logger.Info("server starting", "addr", addr, "driver", cfg.DBDriver)
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		logger.Error("server start", "error", err)
		os.Exit(1)
	}
}

func newCredentialStore(cfg *config.Config) (*auth.CredentialStore, error) {
	if cfg.OperatorPasswordHash != "" {
		return auth.NewCredentialStoreFromHash(cfg.OperatorUsername, cfg.OperatorPasswordHash)
	}
	return auth.NewCredentialStore(cfg.OperatorUsername, cfg.OperatorPassword)
}

func swaggerURL(cfg *config.Config) string {
	host := cfg.SwaggerHost
	if host == "" {
		host = "localhost:" + cfg.ServerPort
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	return host + "/swagger/index.html"
}
