package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var ErrRecordNotFound = errors.New("Record not found")
var ErrAccountNotFound = errors.New("Account not found")
var ErrAccountAlreadyExists = errors.New("Account already exists")
var ErrInvalidAmount = errors.New("Amount must be greater than zero")
var ErrInvalidOperation = errors.New("Invalid operation")
var ErrInsufficientBalance = errors.New("Insufficient balance")
var ErrInvalidCredentials = errors.New("Invalid credentials")
var ErrStoreConflict = errors.New("Store conflict")

// InsufficientBalanceError reports how much the operation needed against what
// the account held at the time. It matches ErrInsufficientBalance under
// errors.Is.
type InsufficientBalanceError struct {
	Username  string
	Required  decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("user %s has insufficient balance: required %s, available %s",
		e.Username, e.Required.StringFixed(2), e.Available.StringFixed(2))
}

func (e *InsufficientBalanceError) Is(target error) bool {
	return target == ErrInsufficientBalance
}
