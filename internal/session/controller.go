package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"dtbank/internal/auth"
	"dtbank/internal/errors"
	"dtbank/internal/model"
	"dtbank/internal/service"
)

// Controller gates account operations behind the operator login.
type Controller struct {
	credentials  *auth.CredentialStore
	accounts     service.AccountService
	transactions service.TransactionService
	logger       *slog.Logger
}

// NewController creates a new session controller.
func NewController(credentials *auth.CredentialStore, accounts service.AccountService, transactions service.TransactionService, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		credentials:  credentials,
		accounts:     accounts,
		transactions: transactions,
		logger:       logger,
	}
}

// Login verifies the operator credential. On success the returned session is
// the only way to reach account operations.
func (c *Controller) Login(username, password string) (*Session, bool) {
	if !c.credentials.Verify(username, password) {
		c.logger.Warn("operator login failed", "username", username)
		return nil, false
	}
	c.logger.Info("operator logged in", "username", username)
	return c.newSession(username), true
}

// Resume re-opens a session for an operator whose token was already verified.
func (c *Controller) Resume(operator string) (*Session, error) {
	if operator != c.credentials.Username() {
		return nil, errors.ErrInvalidCredentials
	}
	return c.newSession(operator), nil
}

func (c *Controller) newSession(operator string) *Session {
	return &Session{
		operator:     operator,
		accounts:     c.accounts,
		transactions: c.transactions,
	}
}

// Session is an authenticated operator session.
type Session struct {
	operator     string
	accounts     service.AccountService
	transactions service.TransactionService
}

// Operator returns the name the session was opened for.
func (s *Session) Operator() string {
	return s.operator
}

// CreateAccount stores a new customer record.
func (s *Session) CreateAccount(ctx context.Context, in service.CreateAccountInput) (*model.Account, error) {
	return s.accounts.CreateAccount(ctx, in)
}

// ViewAccount returns the full record for accountNumber.
func (s *Session) ViewAccount(ctx context.Context, accountNumber string) (*model.Account, error) {
	return s.accounts.GetAccount(ctx, accountNumber)
}

// UpdateField changes one descriptive field of an account.
func (s *Session) UpdateField(ctx context.Context, accountNumber, field, value string) error {
	return s.accounts.UpdateField(ctx, accountNumber, field, value)
}

// Transact applies a deposit or withdrawal entered as text.
func (s *Session) Transact(ctx context.Context, accountNumber, rawAmount, rawKind string) error {
	kind, ok := model.ParseTransactionKind(rawKind)
	if !ok {
		return fmt.Errorf("%w: transaction kind must be deposit or withdrawal", errors.ErrInvalidInput)
	}
	amount, err := service.ParseAmount(rawAmount)
	if err != nil {
		return err
	}
	return s.transactions.ApplyTransaction(ctx, strings.TrimSpace(accountNumber), amount, kind)
}

// CheckBalance returns the holder name and balance.
func (s *Session) CheckBalance(ctx context.Context, accountNumber string) (*service.BalanceSummary, error) {
	return s.accounts.GetBalance(ctx, accountNumber)
}

// DeleteAccount removes an account permanently.
func (s *Session) DeleteAccount(ctx context.Context, accountNumber string) error {
	return s.accounts.DeleteAccount(ctx, accountNumber)
}
