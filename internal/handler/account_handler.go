package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"dtbank/internal/model"
	"dtbank/internal/service"
)

// AccountHandler handles customer account endpoints.
type AccountHandler struct{}

// NewAccountHandler creates a new account handler.
func NewAccountHandler() *AccountHandler {
	return &AccountHandler{}
}

// AccountResponse is the full customer record as shown to the operator.
type AccountResponse struct {
	AccountNumber string `json:"account_number"`
	Name          string `json:"name"`
	DateOfBirth   string `json:"date_of_birth"`
	PhoneNumber   string `json:"phone_number"`
	Email         string `json:"email"`
	NationalID    string `json:"national_id"`
	Address       string `json:"address"`
	AccountType   string `json:"account_type"`
	Balance       string `json:"balance"`
}

func newAccountResponse(a *model.Account) AccountResponse {
	return AccountResponse{
		AccountNumber: a.AccountNumber,
		Name:          a.Name,
		DateOfBirth:   a.DateOfBirth,
		PhoneNumber:   a.PhoneNumber,
		Email:         a.Email,
		NationalID:    a.NationalID,
		Address:       a.Address,
		AccountType:   a.AccountType,
		Balance:       a.Balance.StringFixed(2),
	}
}

// BalanceResponse represents an account balance response.
type BalanceResponse struct {
	AccountNumber string `json:"account_number"`
	Name          string `json:"name"`
	Balance       string `json:"balance"`
}

// UpdateFieldRequest changes one descriptive field.
type UpdateFieldRequest struct {
	Field string `json:"field" validate:"required"`
	Value string `json:"value"`
}

// TransactionRequest is a deposit or withdrawal.
type TransactionRequest struct {
	Amount AmountText `json:"amount" validate:"required"`
	Kind   string     `json:"kind" validate:"required"`
}

// AmountText keeps the amount exactly as entered, from either a JSON string
// or a JSON number, so the transaction engine decides whether it is valid.
type AmountText string

// UnmarshalJSON implements json.Unmarshaler.
func (a *AmountText) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*a = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*a = AmountText(s)
		return nil
	}
	*a = AmountText(raw)
	return nil
}

// CreateAccount godoc
// @Summary Create a customer account
// @Tags accounts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CreateAccountInput true "Customer details"
// @Success 201 {object} AccountResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 503 {object} errors.ErrorResponse
// @Router /accounts [post]
func (h *AccountHandler) CreateAccount(c echo.Context) error {
	s, err := sessionFrom(c)
	if err != nil {
		return err
	}

	var req service.CreateAccountInput
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body", "INVALID_REQUEST")
	}

	account, err := s.CreateAccount(c.Request().Context(), req)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, newAccountResponse(account))
}

// ViewAccount godoc
// @Summary View a customer account
// @Tags accounts
// @Produce json
// @Security BearerAuth
// @Param number path string true "Account number"
// @Success 200 {object} AccountResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 503 {object} errors.ErrorResponse
// @Router /accounts/{number} [get]
func (h *AccountHandler) ViewAccount(c echo.Context) error {
	s, err := sessionFrom(c)
	if err != nil {
		return err
	}

	account, err := s.ViewAccount(c.Request().Context(), c.Param("number"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, newAccountResponse(account))
}

// UpdateField godoc
// @Summary Update one account field
// @Description Only name, phone_number, email, national_id, address and account_type can be changed.
// @Tags accounts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param number path string true "Account number"
// @Param request body UpdateFieldRequest true "Field and new value"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 503 {object} errors.ErrorResponse
// @Router /accounts/{number} [patch]
func (h *AccountHandler) UpdateField(c echo.Context) error {
	s, err := sessionFrom(c)
	if err != nil {
		return err
	}

	var req UpdateFieldRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body", "INVALID_REQUEST")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(err.Error(), "VALIDATION_ERROR")
	}

	if err := s.UpdateField(c.Request().Context(), c.Param("number"), req.Field, req.Value); err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: fmt.Sprintf("%s updated", req.Field)})
}

// Transact godoc
// @Summary Deposit or withdraw
// @Tags accounts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param number path string true "Account number"
// @Param request body TransactionRequest true "Amount and kind (deposit or withdrawal)"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 503 {object} errors.ErrorResponse
// @Router /accounts/{number}/transactions [post]
func (h *AccountHandler) Transact(c echo.Context) error {
	s, err := sessionFrom(c)
	if err != nil {
		return err
	}

	var req TransactionRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body", "INVALID_REQUEST")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(err.Error(), "VALIDATION_ERROR")
	}

	if err := s.Transact(c.Request().Context(), c.Param("number"), string(req.Amount), req.Kind); err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "transaction successful"})
}

// CheckBalance godoc
// @Summary Get account balance
// @Tags accounts
// @Produce json
// @Security BearerAuth
// @Param number path string true "Account number"
// @Success 200 {object} BalanceResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 503 {object} errors.ErrorResponse
// @Router /accounts/{number}/balance [get]
func (h *AccountHandler) CheckBalance(c echo.Context) error {
	s, err := sessionFrom(c)
	if err != nil {
		return err
	}

	summary, err := s.CheckBalance(c.Request().Context(), c.Param("number"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, BalanceResponse{
		AccountNumber: summary.AccountNumber,
		Name:          summary.Name,
		Balance:       summary.Balance.StringFixed(2),
	})
}

// DeleteAccount godoc
// @Summary Delete a customer account
// @Tags accounts
// @Security BearerAuth
// @Param number path string true "Account number"
// @Success 204
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 503 {object} errors.ErrorResponse
// @Router /accounts/{number} [delete]
func (h *AccountHandler) DeleteAccount(c echo.Context) error {
	s, err := sessionFrom(c)
	if err != nil {
		return err
	}

	if err := s.DeleteAccount(c.Request().Context(), c.Param("number")); err != nil {
		return toHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
