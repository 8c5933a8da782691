package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "dtbank/internal/errors"
	"dtbank/internal/model"
)

// mysqlDuplicateEntry is ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

// AccountRepository defines account persistence operations.
type AccountRepository interface {
	Create(ctx context.Context, account *model.Account) error
	FindByNumber(ctx context.Context, accountNumber string) (*model.Account, error)
	UpdateField(ctx context.Context, accountNumber string, field model.AccountField, value string) error
	Delete(ctx context.Context, accountNumber string) error
	// AdjustBalance adds delta to the balance unless the result would be
	// negative. It reports false when no row was changed.
	AdjustBalance(ctx context.Context, accountNumber string, delta decimal.Decimal) (bool, error)
	Exists(ctx context.Context, accountNumber string) (bool, error)
	// Transaction methods
	WithTransaction(ctx context.Context, fn func(ctx context.Context, repo AccountRepository) error) error
}

type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates a new account repository.
func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

// Create inserts a new account, failing with ErrDuplicateAccount when the
// account number is taken.
func (r *accountRepository) Create(ctx context.Context, account *model.Account) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Account{}).
			Where("account_number = ?", account.AccountNumber).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperrors.ErrDuplicateAccount
		}

		if err := tx.Create(account).Error; err != nil {
			if isDuplicateKey(err) {
				return apperrors.ErrDuplicateAccount
			}
			return err
		}
		return nil
	})
	return translate("create account", err)
}

// FindByNumber finds an account by account number.
func (r *accountRepository) FindByNumber(ctx context.Context, accountNumber string) (*model.Account, error) {
	var account model.Account
	if err := r.db.WithContext(ctx).
		Where("account_number = ?", accountNumber).
		First(&account).Error; err != nil {
		return nil, translate("find account", err)
	}
	return &account, nil
}

// UpdateField sets one allow-listed column. The column name always comes from
// the field enumeration and the value is bound as a parameter.
func (r *accountRepository) UpdateField(ctx context.Context, accountNumber string, field model.AccountField, value string) error {
	column, ok := field.Column()
	if !ok {
		return fmt.Errorf("%w: %q", apperrors.ErrInvalidField, string(field))
	}

	res := r.db.WithContext(ctx).Model(&model.Account{}).
		Where("account_number = ?", accountNumber).
		Update(column, value)
	if res.Error != nil {
		return translate("update account", res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}

	// MySQL reports zero affected rows when the value is unchanged.
	exists, err := r.Exists(ctx, accountNumber)
	if err != nil {
		return err
	}
	if !exists {
		return apperrors.ErrAccountNotFound
	}
	return nil
}

// Delete removes an account permanently.
func (r *accountRepository) Delete(ctx context.Context, accountNumber string) error {
	res := r.db.WithContext(ctx).
		Where("account_number = ?", accountNumber).
		Delete(&model.Account{})
	if res.Error != nil {
		return translate("delete account", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrAccountNotFound
	}
	return nil
}

// AdjustBalance applies delta as a single conditional update, so the check
// and the write cannot be interleaved by another connection. The sum is
// rounded to cents in SQL because SQLite evaluates NUMERIC columns as floats.
func (r *accountRepository) AdjustBalance(ctx context.Context, accountNumber string, delta decimal.Decimal) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Account{}).
		Where("account_number = ?", accountNumber).
		Where("ROUND(balance + CAST(? AS DECIMAL(20,2)), 2) >= 0", delta).
		Update("balance", gorm.Expr("ROUND(balance + CAST(? AS DECIMAL(20,2)), 2)", delta))
	if res.Error != nil {
		return false, translate("adjust balance", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Exists reports whether an account with the number is stored.
func (r *accountRepository) Exists(ctx context.Context, accountNumber string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Account{}).
		Where("account_number = ?", accountNumber).
		Count(&count).Error; err != nil {
		return false, translate("check account", err)
	}
	return count > 0, nil
}

// WithTransaction executes a function within a database transaction.
func (r *accountRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, repo AccountRepository) error) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := &accountRepository{db: tx}
		return fn(ctx, txRepo)
	})
	return translate("transaction", err)
}

// translate maps driver errors onto the domain taxonomy. Errors that already
// carry a domain sentinel pass through untouched.
func translate(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case isDomainError(err):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperrors.ErrAccountNotFound
	case isConnectionError(err):
		return fmt.Errorf("%w: %s: %v", apperrors.ErrConnectionFailure, op, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func isDomainError(err error) bool {
	for _, target := range []error{
		apperrors.ErrInvalidInput,
		apperrors.ErrInvalidField,
		apperrors.ErrInvalidAmount,
		apperrors.ErrAccountNotFound,
		apperrors.ErrDuplicateAccount,
		apperrors.ErrInsufficientFunds,
		apperrors.ErrConnectionFailure,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// errDBClosed is the unexported error database/sql returns once the pool is closed.
const errDBClosed = "sql: database is closed"

func isConnectionError(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, mysql.ErrInvalidConn) || errors.Is(err, sql.ErrConnDone) {
		return true
	}
	if strings.Contains(err.Error(), errDBClosed) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
