package router

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dtbank/internal/auth"
	"dtbank/internal/config"
	"dtbank/internal/db"
	apperrors "dtbank/internal/errors"
	"dtbank/internal/handler"
	"dtbank/internal/repository"
	"dtbank/internal/service"
	"dtbank/internal/session"
)

// memoryTokenStore stands in for redis.
type memoryTokenStore struct {
	mu      sync.Mutex
	revoked map[string]bool
}

func (s *memoryTokenStore) RevokeToken(_ context.Context, tokenID string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[tokenID] = true
	return nil
}

func (s *memoryTokenStore) IsRevoked(_ context.Context, tokenID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revoked[tokenID]
}

func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()
	gormDB, err := db.NewSQLite(filepath.Join(t.TempDir(), "bank.db"))
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gormDB))

	creds, err := auth.NewCredentialStore("emp_007", "007")
	require.NoError(t, err)

	repo := repository.NewAccountRepository(gormDB)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	controller := session.NewController(creds, service.NewAccountService(repo), service.NewTransactionService(repo), logger)

	jwtService := auth.NewJWTService("test-secret", time.Minute)
	tokenStore := &memoryTokenStore{revoked: map[string]bool{}}

	e := echo.New()
	e.Logger.SetOutput(io.Discard)
	Register(e, &config.Config{}, jwtService, tokenStore, controller,
		handler.NewAuthHandler(controller, jwtService, tokenStore),
		handler.NewAccountHandler(),
	)
	return e
}

func do(t *testing.T, e *echo.Echo, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, e *echo.Echo) string {
	t.Helper()
	rec := do(t, e, http.MethodPost, "/api/auth/login", "", `{"username":"emp_007","password":"007"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp handler.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Authenticated)
	assert.Equal(t, "Welcome, emp_007", resp.Message)
	require.NotEmpty(t, resp.AccessToken)
	return resp.AccessToken
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp apperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp.Code
}

const createBody = `{
	"account_number": "AC100",
	"name": "Asha Rao",
	"date_of_birth": "1990-04-12",
	"phone_number": "9845012345",
	"email": "asha@example.com",
	"national_id": "ID123456",
	"address": "12 MG Road",
	"account_type": "savings",
	"initial_balance": "1000.00"
}`

func TestHealthz(t *testing.T) {
	e := newTestServer(t)
	rec := do(t, e, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestLogin_InvalidCredentials(t *testing.T) {
	e := newTestServer(t)

	rec := do(t, e, http.MethodPost, "/api/auth/login", "", `{"username":"emp_007","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", errorCode(t, rec))

	rec = do(t, e, http.MethodPost, "/api/auth/login", "", `{"username":"emp_007"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, rec))
}

func TestAccountsRequireToken(t *testing.T) {
	e := newTestServer(t)

	rec := do(t, e, http.MethodGet, "/api/accounts/AC100", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, e, http.MethodGet, "/api/accounts/AC100", "garbage", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, rec))
}

func TestAccountLifecycle(t *testing.T) {
	e := newTestServer(t)
	token := login(t, e)

	rec := do(t, e, http.MethodPost, "/api/accounts", token, createBody)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var account handler.AccountResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &account))
	assert.Equal(t, "1000.00", account.Balance)

	rec = do(t, e, http.MethodPost, "/api/accounts", token, createBody)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "DUPLICATE_ACCOUNT", errorCode(t, rec))

	rec = do(t, e, http.MethodPost, "/api/accounts/AC100/transactions", token, `{"amount":200,"kind":"deposit"}`)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, e, http.MethodGet, "/api/accounts/AC100/balance", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var balance handler.BalanceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &balance))
	assert.Equal(t, "1200.00", balance.Balance)
	assert.Equal(t, "Asha Rao", balance.Name)

	rec = do(t, e, http.MethodPost, "/api/accounts/AC100/transactions", token, `{"amount":"5000","kind":"withdrawal"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "INSUFFICIENT_FUNDS", errorCode(t, rec))

	rec = do(t, e, http.MethodPost, "/api/accounts/AC100/transactions", token, `{"amount":0,"kind":"deposit"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_AMOUNT", errorCode(t, rec))

	rec = do(t, e, http.MethodPatch, "/api/accounts/AC100", token, `{"field":"balance","value":"1000000"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_FIELD", errorCode(t, rec))

	rec = do(t, e, http.MethodPatch, "/api/accounts/AC100", token, `{"field":"email","value":"rao@example.com"}`)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, e, http.MethodGet, "/api/accounts/AC100", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &account))
	assert.Equal(t, "rao@example.com", account.Email)
	assert.Equal(t, "1200.00", account.Balance)

	rec = do(t, e, http.MethodDelete, "/api/accounts/AC100", token, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, e, http.MethodGet, "/api/accounts/AC100", token, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "ACCOUNT_NOT_FOUND", errorCode(t, rec))

	rec = do(t, e, http.MethodDelete, "/api/accounts/AC100", token, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateAccount_InvalidInput(t *testing.T) {
	e := newTestServer(t)
	token := login(t, e)

	body := strings.Replace(createBody, `"1000.00"`, `"-5"`, 1)
	rec := do(t, e, http.MethodPost, "/api/accounts", token, body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_INPUT", errorCode(t, rec))

	rec = do(t, e, http.MethodPost, "/api/accounts", token, `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_REQUEST", errorCode(t, rec))
}

func TestLogoutRevokesToken(t *testing.T) {
	e := newTestServer(t)
	token := login(t, e)

	rec := do(t, e, http.MethodPost, "/api/auth/logout", token, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, e, http.MethodGet, "/api/accounts/AC100/balance", token, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTokenForUnknownOperatorIsRejected(t *testing.T) {
	e := newTestServer(t)

	token, _, _, err := auth.NewJWTService("test-secret", time.Minute).GenerateAccessToken("intruder")
	require.NoError(t, err)

	rec := do(t, e, http.MethodGet, "/api/accounts/AC100", token, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", errorCode(t, rec))
}

func TestTransact_NonNumericAmountIsInvalidAmount(t *testing.T) {
	e := newTestServer(t)
	token := login(t, e)
	require.Equal(t, http.StatusCreated, do(t, e, http.MethodPost, "/api/accounts", token, createBody).Code)

	for _, body := range []string{
		`{"amount":"abc","kind":"deposit"}`,
		`{"amount":"1.001","kind":"deposit"}`,
		`{"amount":true,"kind":"withdrawal"}`,
	} {
		rec := do(t, e, http.MethodPost, "/api/accounts/AC100/transactions", token, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Equal(t, "INVALID_AMOUNT", errorCode(t, rec), body)
	}
}

func TestTransact_WithdrawDisplayedBalance(t *testing.T) {
	e := newTestServer(t)
	token := login(t, e)
	require.Equal(t, http.StatusCreated, do(t, e, http.MethodPost, "/api/accounts", token, createBody).Code)

	deposits := []string{`"1e2"`, `0.1`, `"0.2"`, `0.1`, `"0.2"`, `0.1`, `"0.2"`}
	for _, amount := range deposits {
		rec := do(t, e, http.MethodPost, "/api/accounts/AC100/transactions", token, `{"amount":`+amount+`,"kind":"deposit"}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	rec := do(t, e, http.MethodGet, "/api/accounts/AC100/balance", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var balance handler.BalanceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &balance))
	assert.Equal(t, "1100.90", balance.Balance)

	rec = do(t, e, http.MethodPost, "/api/accounts/AC100/transactions", token, `{"amount":"`+balance.Balance+`","kind":"withdrawal"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, e, http.MethodGet, "/api/accounts/AC100/balance", token, "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &balance))
	assert.Equal(t, "0.00", balance.Balance)
}
