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

// CreateAccountInput carries the raw values entered for a new customer.
type CreateAccountInput struct {
	AccountNumber  string `json:"account_number" validate:"required,max=32"`
	Name           string `json:"name" validate:"required,max=255"`
	DateOfBirth    string `json:"date_of_birth" validate:"required"`
	PhoneNumber    string `json:"phone_number" validate:"required"`
	Email          string `json:"email" validate:"required,email,max=255"`
	NationalID     string `json:"national_id" validate:"required"`
	Address        string `json:"address" validate:"required"`
	AccountType    string `json:"account_type" validate:"required,max=32"`
	InitialBalance string `json:"initial_balance"`
}

func (in CreateAccountInput) trimmed() CreateAccountInput {
	return CreateAccountInput{
		AccountNumber:  strings.TrimSpace(in.AccountNumber),
		Name:           strings.TrimSpace(in.Name),
		DateOfBirth:    strings.TrimSpace(in.DateOfBirth),
		PhoneNumber:    strings.TrimSpace(in.PhoneNumber),
		Email:          strings.TrimSpace(in.Email),
		NationalID:     strings.TrimSpace(in.NationalID),
		Address:        strings.TrimSpace(in.Address),
		AccountType:    strings.TrimSpace(in.AccountType),
		InitialBalance: strings.TrimSpace(in.InitialBalance),
	}
}

// BalanceSummary is the holder name and balance of an account.
type BalanceSummary struct {
	AccountNumber string          `json:"account_number"`
	Name          string          `json:"name"`
	Balance       decimal.Decimal `json:"balance"`
}

// AccountService handles account operations.
type AccountService interface {
	CreateAccount(ctx context.Context, in CreateAccountInput) (*model.Account, error)
	GetAccount(ctx context.Context, accountNumber string) (*model.Account, error)
	GetBalance(ctx context.Context, accountNumber string) (*BalanceSummary, error)
	UpdateField(ctx context.Context, accountNumber, field, value string) error
	DeleteAccount(ctx context.Context, accountNumber string) error
}

type accountService struct {
	repo      repository.AccountRepository
	validator *AccountValidator
}

// NewAccountService creates a new account service.
func NewAccountService(repo repository.AccountRepository) AccountService {
	return &accountService{
		repo:      repo,
		validator: NewAccountValidator(),
	}
}

// CreateAccount validates the raw input and stores a new account.
func (s *accountService) CreateAccount(ctx context.Context, in CreateAccountInput) (*model.Account, error) {
	in = in.trimmed()
	balance, err := s.validator.ValidateCreate(in)
	if err != nil {
		return nil, err
	}

	account := &model.Account{
		AccountNumber: in.AccountNumber,
		Name:          in.Name,
		DateOfBirth:   in.DateOfBirth,
		PhoneNumber:   in.PhoneNumber,
		Email:         in.Email,
		NationalID:    in.NationalID,
		Address:       in.Address,
		AccountType:   in.AccountType,
		Balance:       balance,
	}
	if err := s.repo.Create(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// GetAccount retrieves an account by account number.
func (s *accountService) GetAccount(ctx context.Context, accountNumber string) (*model.Account, error) {
	accountNumber = strings.TrimSpace(accountNumber)
	if accountNumber == "" {
		return nil, errors.ErrAccountNotFound
	}
	return s.repo.FindByNumber(ctx, accountNumber)
}

// GetBalance retrieves the holder name and current balance of an account.
func (s *accountService) GetBalance(ctx context.Context, accountNumber string) (*BalanceSummary, error) {
	account, err := s.GetAccount(ctx, accountNumber)
	if err != nil {
		return nil, err
	}
	return &BalanceSummary{
		AccountNumber: account.AccountNumber,
		Name:          account.Name,
		Balance:       account.Balance,
	}, nil
}

// UpdateField changes one descriptive field. Only the allow-listed fields
// are accepted; balance changes go through the transaction service.
func (s *accountService) UpdateField(ctx context.Context, accountNumber, field, value string) error {
	f, ok := model.ParseAccountField(strings.TrimSpace(field))
	if !ok {
		return fmt.Errorf("%w: %q cannot be updated", errors.ErrInvalidField, field)
	}

	value = strings.TrimSpace(value)
	if err := s.validator.ValidateField(f, value); err != nil {
		return err
	}

	accountNumber = strings.TrimSpace(accountNumber)
	if accountNumber == "" {
		return errors.ErrAccountNotFound
	}
	return s.repo.UpdateField(ctx, accountNumber, f, value)
}

// DeleteAccount removes an account permanently.
func (s *accountService) DeleteAccount(ctx context.Context, accountNumber string) error {
	accountNumber = strings.TrimSpace(accountNumber)
	if accountNumber == "" {
		return errors.ErrAccountNotFound
	}
	return s.repo.Delete(ctx, accountNumber)
}
