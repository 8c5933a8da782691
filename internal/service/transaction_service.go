package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"dtbank/internal/errors"
	"dtbank/internal/model"
	"dtbank/internal/repository"
)

// TransactionService applies deposits and withdrawals.
type TransactionService interface {
	ApplyTransaction(ctx context.Context, accountNumber string, amount decimal.Decimal, kind model.TransactionKind) error
}

type transactionService struct {
	repo repository.AccountRepository
}

// NewTransactionService creates a new transaction service.
func NewTransactionService(repo repository.AccountRepository) TransactionService {
	return &transactionService{repo: repo}
}

// ParseAmount parses a transaction amount entered as text. The amount must be
// greater than zero with at most two decimal places.
func ParseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a number", errors.ErrInvalidAmount, raw)
	}
	if err := validateAmount(amount); err != nil {
		return decimal.Zero, err
	}
	return amount, nil
}

func validateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: amount must be greater than zero", errors.ErrInvalidAmount)
	}
	if !amount.Equal(amount.Truncate(2)) {
		return fmt.Errorf("%w: amount must have at most two decimal places", errors.ErrInvalidAmount)
	}
	return nil
}

// ApplyTransaction applies a deposit or withdrawal to one account as a single
// atomic step. A withdrawal larger than the balance fails with
// ErrInsufficientFunds and leaves the balance unchanged.
func (s *transactionService) ApplyTransaction(ctx context.Context, accountNumber string, amount decimal.Decimal, kind model.TransactionKind) error {
	if err := validateAmount(amount); err != nil {
		return err
	}

	var delta decimal.Decimal
	switch kind {
	case model.TransactionDeposit:
		delta = amount
	case model.TransactionWithdrawal:
		delta = amount.Neg()
	default:
		return fmt.Errorf("%w: unknown transaction kind %q", errors.ErrInvalidInput, string(kind))
	}

	accountNumber = strings.TrimSpace(accountNumber)
	if accountNumber == "" {
		return errors.ErrAccountNotFound
	}

	return s.repo.WithTransaction(ctx, func(ctx context.Context, txRepo repository.AccountRepository) error {
		applied, err := txRepo.AdjustBalance(ctx, accountNumber, delta)
		if err != nil {
			return err
		}
		if applied {
			return nil
		}

		// Nothing changed: either the account is missing or the guard refused
		// to take the balance below zero.
		exists, err := txRepo.Exists(ctx, accountNumber)
		if err != nil {
			return err
		}
		if !exists {
			return errors.ErrAccountNotFound
		}
		return errors.ErrInsufficientFunds
	})
}
