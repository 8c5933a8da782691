package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrInvalidInput is returned when a field is malformed or out of range.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidField is returned when an update targets a field outside the allow-list.
	ErrInvalidField = errors.New("invalid field")
	// ErrInvalidAmount is returned when a transaction amount is non-numeric, zero or negative.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrAccountNotFound is returned when no account matches the account number.
	ErrAccountNotFound = errors.New("account not found")
	// ErrDuplicateAccount is returned when the account number is already taken.
	ErrDuplicateAccount = errors.New("account already exists")
	// ErrInsufficientFunds is returned when a withdrawal exceeds the balance.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrConnectionFailure is returned when the datastore cannot be reached.
	ErrConnectionFailure = errors.New("datastore unavailable")
	// ErrInvalidCredentials is returned when the operator login fails.
	ErrInvalidCredentials = errors.New("incorrect username or password")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Wrapped errors keep their
// detail in the message so it can be shown to the operator as is.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_INPUT")
	case errors.Is(err, ErrInvalidField):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_FIELD")
	case errors.Is(err, ErrInvalidAmount):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_AMOUNT")
	case errors.Is(err, ErrAccountNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "ACCOUNT_NOT_FOUND")
	case errors.Is(err, ErrDuplicateAccount):
		return NewHTTPError(http.StatusConflict, err.Error(), "DUPLICATE_ACCOUNT")
	case errors.Is(err, ErrInsufficientFunds):
		return NewHTTPError(http.StatusConflict, err.Error(), "INSUFFICIENT_FUNDS")
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "INVALID_CREDENTIALS")
	case errors.Is(err, ErrConnectionFailure):
		return NewHTTPError(http.StatusServiceUnavailable, ErrConnectionFailure.Error(), "CONNECTION_FAILURE")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
