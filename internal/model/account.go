package model

import (
	"github.com/shopspring/decimal"
)

// Account represents a customer's bank record, keyed by account number.
type Account struct {
	AccountNumber string          `json:"account_number" gorm:"column:account_number;type:varchar(32);primaryKey"`
	Name          string          `json:"name" gorm:"column:name;size:255;not null"`
	DateOfBirth   string          `json:"date_of_birth" gorm:"column:date_of_birth;type:varchar(10);not null"` // YYYY-MM-DD
	PhoneNumber   string          `json:"phone_number" gorm:"column:phone_number;size:20;not null"`
	Email         string          `json:"email" gorm:"column:email;size:255;not null"`
	NationalID    string          `json:"national_id" gorm:"column:national_id;size:32;not null"`
	Address       string          `json:"address" gorm:"column:address;type:text"`
	AccountType   string          `json:"account_type" gorm:"column:account_type;size:32;not null"`
	Balance       decimal.Decimal `json:"balance" gorm:"column:balance;type:decimal(20,2);not null;default:0;check:chk_customers_balance,balance >= 0"`
}

// TableName keeps the customers table name used by existing deployments.
func (Account) TableName() string {
	return "customers"
}

// AccountField identifies one of the descriptive columns an operator may
// change after the account is created.
type AccountField string

const (
	FieldName        AccountField = "name"
	FieldPhoneNumber AccountField = "phone_number"
	FieldEmail       AccountField = "email"
	FieldNationalID  AccountField = "national_id"
	FieldAddress     AccountField = "address"
	FieldAccountType AccountField = "account_type"
)

// mutableFields maps each updatable field to its column. account_number,
// date_of_birth and balance are never updatable here.
var mutableFields = map[AccountField]string{
	FieldName:        "name",
	FieldPhoneNumber: "phone_number",
	FieldEmail:       "email",
	FieldNationalID:  "national_id",
	FieldAddress:     "address",
	FieldAccountType: "account_type",
}

// ParseAccountField returns the field named by s if it is updatable.
func ParseAccountField(s string) (AccountField, bool) {
	f := AccountField(s)
	if _, ok := mutableFields[f]; !ok {
		return "", false
	}
	return f, true
}

// Column returns the column backing the field, or false for anything outside
// the allow-list.
func (f AccountField) Column() (string, bool) {
	col, ok := mutableFields[f]
	return col, ok
}

// MutableFields lists the updatable fields in a stable order.
func MutableFields() []AccountField {
	return []AccountField{FieldName, FieldPhoneNumber, FieldEmail, FieldNationalID, FieldAddress, FieldAccountType}
}
