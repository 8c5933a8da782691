package service

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"dtbank/internal/db"
	"dtbank/internal/errors"
	"dtbank/internal/model"
	"dtbank/internal/repository"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		raw   string
		valid bool
	}{
		{"200", true},
		{" 12.50 ", true},
		{"0.01", true},
		{"1.500", true},
		{"0", false},
		{"-5", false},
		{"abc", false},
		{"", false},
		{"0.001", false},
	}
	for _, tt := range tests {
		amount, err := ParseAmount(tt.raw)
		if tt.valid {
			assert.NoError(t, err, tt.raw)
			assert.True(t, amount.IsPositive(), tt.raw)
		} else {
			assert.ErrorIs(t, err, errors.ErrInvalidAmount, tt.raw)
		}
	}
}

func TestTransactionService_Classification(t *testing.T) {
	tests := []struct {
		name          string
		kind          model.TransactionKind
		amount        decimal.Decimal
		setupMock     func(*MockAccountRepository)
		expectedError error
	}{
		{
			name:   "deposit applied",
			kind:   model.TransactionDeposit,
			amount: decimal.NewFromInt(200),
			setupMock: func(m *MockAccountRepository) {
				m.On("WithTransaction", mock.Anything).Return(nil)
				m.On("AdjustBalance", mock.Anything, "AC100", decimal.NewFromInt(200)).Return(true, nil)
			},
		},
		{
			name:   "withdrawal is a negative delta",
			kind:   model.TransactionWithdrawal,
			amount: decimal.NewFromInt(50),
			setupMock: func(m *MockAccountRepository) {
				m.On("WithTransaction", mock.Anything).Return(nil)
				m.On("AdjustBalance", mock.Anything, "AC100", decimal.NewFromInt(-50)).Return(true, nil)
			},
		},
		{
			name:   "guard refused on existing account",
			kind:   model.TransactionWithdrawal,
			amount: decimal.NewFromInt(5000),
			setupMock: func(m *MockAccountRepository) {
				m.On("WithTransaction", mock.Anything).Return(nil)
				m.On("AdjustBalance", mock.Anything, "AC100", decimal.NewFromInt(-5000)).Return(false, nil)
				m.On("Exists", mock.Anything, "AC100").Return(true, nil)
			},
			expectedError: errors.ErrInsufficientFunds,
		},
		{
			name:   "no such account",
			kind:   model.TransactionDeposit,
			amount: decimal.NewFromInt(10),
			setupMock: func(m *MockAccountRepository) {
				m.On("WithTransaction", mock.Anything).Return(nil)
				m.On("AdjustBalance", mock.Anything, "AC100", decimal.NewFromInt(10)).Return(false, nil)
				m.On("Exists", mock.Anything, "AC100").Return(false, nil)
			},
			expectedError: errors.ErrAccountNotFound,
		},
		{
			name:   "connection failure",
			kind:   model.TransactionDeposit,
			amount: decimal.NewFromInt(10),
			setupMock: func(m *MockAccountRepository) {
				m.On("WithTransaction", mock.Anything).Return(errors.ErrConnectionFailure)
			},
			expectedError: errors.ErrConnectionFailure,
		},
		{
			name:          "zero amount rejected before the store",
			kind:          model.TransactionDeposit,
			amount:        decimal.Zero,
			setupMock:     func(m *MockAccountRepository) {},
			expectedError: errors.ErrInvalidAmount,
		},
		{
			name:          "unknown kind",
			kind:          model.TransactionKind("transfer"),
			amount:        decimal.NewFromInt(10),
			setupMock:     func(m *MockAccountRepository) {},
			expectedError: errors.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockAccountRepository)
			tt.setupMock(mockRepo)

			service := NewTransactionService(mockRepo)
			err := service.ApplyTransaction(context.Background(), "AC100", tt.amount, tt.kind)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
			} else {
				assert.NoError(t, err)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

type bankFixture struct {
	accounts     AccountService
	transactions TransactionService
}

func newBankFixture(t *testing.T) bankFixture {
	t.Helper()
	gormDB, err := db.NewSQLite(filepath.Join(t.TempDir(), "bank.db"))
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gormDB))

	repo := repository.NewAccountRepository(gormDB)
	return bankFixture{
		accounts:     NewAccountService(repo),
		transactions: NewTransactionService(repo),
	}
}

func (f bankFixture) balance(t *testing.T, number string) decimal.Decimal {
	t.Helper()
	summary, err := f.accounts.GetBalance(context.Background(), number)
	require.NoError(t, err)
	return summary.Balance
}

func TestTransactionService_Scenarios(t *testing.T) {
	f := newBankFixture(t)
	ctx := context.Background()

	// Scenario 1
	_, err := f.accounts.CreateAccount(ctx, validInput())
	require.NoError(t, err)
	account, err := f.accounts.GetAccount(ctx, "AC100")
	require.NoError(t, err)
	assert.Equal(t, "1000.00", account.Balance.StringFixed(2))

	// Scenario 2
	require.NoError(t, f.transactions.ApplyTransaction(ctx, "AC100", decimal.NewFromInt(200), model.TransactionDeposit))
	assert.Equal(t, "1200.00", f.balance(t, "AC100").StringFixed(2))

	// Scenario 3
	err = f.transactions.ApplyTransaction(ctx, "AC100", decimal.NewFromInt(5000), model.TransactionWithdrawal)
	assert.ErrorIs(t, err, errors.ErrInsufficientFunds)
	assert.Equal(t, "1200.00", f.balance(t, "AC100").StringFixed(2))

	// Scenario 4
	require.NoError(t, f.transactions.ApplyTransaction(ctx, "AC100", decimal.NewFromInt(1200), model.TransactionWithdrawal))
	assert.Equal(t, "0.00", f.balance(t, "AC100").StringFixed(2))

	// Scenario 5
	_, err = f.accounts.CreateAccount(ctx, validInput())
	assert.ErrorIs(t, err, errors.ErrDuplicateAccount)

	// Scenario 6
	require.NoError(t, f.accounts.DeleteAccount(ctx, "AC100"))
	_, err = f.accounts.GetAccount(ctx, "AC100")
	assert.ErrorIs(t, err, errors.ErrAccountNotFound)
}

func TestTransactionService_MissingAccount(t *testing.T) {
	f := newBankFixture(t)

	err := f.transactions.ApplyTransaction(context.Background(), "GHOST", decimal.NewFromInt(10), model.TransactionDeposit)
	assert.ErrorIs(t, err, errors.ErrAccountNotFound)

	err = f.transactions.ApplyTransaction(context.Background(), "GHOST", decimal.NewFromInt(10), model.TransactionWithdrawal)
	assert.ErrorIs(t, err, errors.ErrAccountNotFound)
}

func TestTransactionService_ReadsDoNotMutate(t *testing.T) {
	f := newBankFixture(t)
	ctx := context.Background()
	_, err := f.accounts.CreateAccount(ctx, validInput())
	require.NoError(t, err)

	first, err := f.accounts.GetAccount(ctx, "AC100")
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		again, err := f.accounts.GetAccount(ctx, "AC100")
		require.NoError(t, err)
		assert.Equal(t, first.Name, again.Name)
		assert.True(t, first.Balance.Equal(again.Balance))
		assert.True(t, first.Balance.Equal(f.balance(t, "AC100")))
	}
}

func TestTransactionService_ConcurrentWithdrawalsNeverOverdraw(t *testing.T) {
	f := newBankFixture(t)
	ctx := context.Background()

	in := validInput()
	in.InitialBalance = "100"
	_, err := f.accounts.CreateAccount(ctx, in)
	require.NoError(t, err)

	const workers = 25
	var (
		wg           sync.WaitGroup
		succeeded    atomic.Int32
		insufficient atomic.Int32
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := f.transactions.ApplyTransaction(ctx, "AC100", decimal.NewFromInt(10), model.TransactionWithdrawal)
			switch {
			case err == nil:
				succeeded.Add(1)
			case assert.ErrorIs(t, err, errors.ErrInsufficientFunds):
				insufficient.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(10), succeeded.Load())
	assert.Equal(t, int32(workers-10), insufficient.Load())

	final := f.balance(t, "AC100")
	assert.False(t, final.IsNegative())
	assert.True(t, final.IsZero(), final.String())
}
