package service

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"dtbank/internal/errors"
	"dtbank/internal/model"
)

const dateOfBirthLayout = "2006-01-02"

var (
	phoneRegex      = regexp.MustCompile(`^\+?[0-9][0-9 \-]*$`)
	nationalIDRegex = regexp.MustCompile(`^[A-Za-z0-9]{4,32}$`)
	nonDigitRegex   = regexp.MustCompile(`\D`)
)

// AccountValidator validates customer details supplied by the operator.
type AccountValidator struct {
	validate *validator.Validate
	now      func() time.Time
}

// NewAccountValidator creates a new account validator.
func NewAccountValidator() *AccountValidator {
	validate := validator.New()
	// Report json names so messages match what the operator typed into.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &AccountValidator{
		validate: validate,
		now:      time.Now,
	}
}

// ValidateCreate checks every field of a new account and returns the parsed
// initial balance.
func (v *AccountValidator) ValidateCreate(in CreateAccountInput) (decimal.Decimal, error) {
	if err := v.validate.Struct(in); err != nil {
		return decimal.Zero, invalidInput(describeValidation(err))
	}
	if err := v.ValidateDateOfBirth(in.DateOfBirth); err != nil {
		return decimal.Zero, err
	}
	for _, f := range []struct {
		field model.AccountField
		value string
	}{
		{model.FieldPhoneNumber, in.PhoneNumber},
		{model.FieldNationalID, in.NationalID},
	} {
		if err := v.ValidateField(f.field, f.value); err != nil {
			return decimal.Zero, err
		}
	}
	return v.ParseInitialBalance(in.InitialBalance)
}

// ValidateField checks a new value for one of the updatable fields.
func (v *AccountValidator) ValidateField(field model.AccountField, value string) error {
	if strings.TrimSpace(value) == "" {
		return invalidInput(fmt.Sprintf("%s must not be empty", field))
	}

	switch field {
	case model.FieldEmail:
		if err := v.validate.Var(value, "email"); err != nil {
			return invalidInput("email is not a valid address")
		}
	case model.FieldPhoneNumber:
		digits := nonDigitRegex.ReplaceAllString(value, "")
		if !phoneRegex.MatchString(value) || len(digits) < 7 || len(digits) > 15 {
			return invalidInput("phone_number must contain 7 to 15 digits")
		}
	case model.FieldNationalID:
		if !nationalIDRegex.MatchString(value) {
			return invalidInput("national_id must be 4 to 32 letters or digits")
		}
	case model.FieldName, model.FieldAccountType:
		if len(value) > 255 {
			return invalidInput(fmt.Sprintf("%s is too long", field))
		}
	}
	return nil
}

// ValidateDateOfBirth expects YYYY-MM-DD and rejects dates in the future.
func (v *AccountValidator) ValidateDateOfBirth(value string) error {
	dob, err := time.Parse(dateOfBirthLayout, value)
	if err != nil {
		return invalidInput("date_of_birth must be YYYY-MM-DD")
	}
	if dob.After(v.now()) {
		return invalidInput("date_of_birth is in the future")
	}
	return nil
}

// ParseInitialBalance parses the opening balance, which may be zero.
func (v *AccountValidator) ParseInitialBalance(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, nil
	}
	balance, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, invalidInput("initial balance must be a number")
	}
	if balance.IsNegative() {
		return decimal.Zero, invalidInput("initial balance must be non-negative")
	}
	if !balance.Equal(balance.Truncate(2)) {
		return decimal.Zero, invalidInput("initial balance must have at most two decimal places")
	}
	return balance, nil
}

func invalidInput(reason string) error {
	return fmt.Errorf("%w: %s", errors.ErrInvalidInput, reason)
}

func describeValidation(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return "email is not a valid address"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
