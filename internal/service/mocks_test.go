package service

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"dtbank/internal/model"
	"dtbank/internal/repository"
)

// MockAccountRepository is a mock implementation of AccountRepository.
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) Create(ctx context.Context, account *model.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) FindByNumber(ctx context.Context, accountNumber string) (*model.Account, error) {
	args := m.Called(ctx, accountNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Account), args.Error(1)
}

func (m *MockAccountRepository) UpdateField(ctx context.Context, accountNumber string, field model.AccountField, value string) error {
	args := m.Called(ctx, accountNumber, field, value)
	return args.Error(0)
}

func (m *MockAccountRepository) Delete(ctx context.Context, accountNumber string) error {
	args := m.Called(ctx, accountNumber)
	return args.Error(0)
}

func (m *MockAccountRepository) AdjustBalance(ctx context.Context, accountNumber string, delta decimal.Decimal) (bool, error) {
	args := m.Called(ctx, accountNumber, delta)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccountRepository) Exists(ctx context.Context, accountNumber string) (bool, error) {
	args := m.Called(ctx, accountNumber)
	return args.Bool(0), args.Error(1)
}

// WithTransaction runs fn against the mock itself unless an error is stubbed.
func (m *MockAccountRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, repo repository.AccountRepository) error) error {
	args := m.Called(ctx)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(ctx, m)
}
