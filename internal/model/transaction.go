package model

import "strings"

// TransactionKind is the direction of a balance adjustment.
type TransactionKind string

const (
	TransactionDeposit    TransactionKind = "deposit"
	TransactionWithdrawal TransactionKind = "withdrawal"
)

// ParseTransactionKind accepts "deposit" or "withdrawal" in any case.
func ParseTransactionKind(s string) (TransactionKind, bool) {
	switch TransactionKind(strings.ToLower(strings.TrimSpace(s))) {
	case TransactionDeposit:
		return TransactionDeposit, true
	case TransactionWithdrawal:
		return TransactionWithdrawal, true
	default:
		return "", false
	}
}
