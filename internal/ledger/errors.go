package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrAmountNotPositive is returned by the convenience transfer entry points
// when the requested amount is zero or negative. The check runs before any
// Transfer is constructed or any account is looked up; callers match it with
// errors.Is.
var ErrAmountNotPositive = errors.New("amount must be positive")

// ValidationError reports malformed input to an entity constructor: a bad
// account number, a negative opening balance, a non-positive transfer amount,
// or a missing company on a company-partitioned ledger.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func newValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// AccountNotFoundError reports a transfer or query referencing an account
// number that is not present in the ledger.
type AccountNotFoundError struct {
	Number string
}

func (e *AccountNotFoundError) Error() string {
	return fmt.Sprintf("account %s not found", e.Number)
}

// CompanyMismatchError reports an operation whose company context does not
// match the company owning the account. Expected is the company supplied by
// the caller, Actual the company the account belongs to.
type CompanyMismatchError struct {
	Expected string
	Actual   string
}

func (e *CompanyMismatchError) Error() string {
	return fmt.Sprintf("company mismatch: expected %q, got %q", e.Expected, e.Actual)
}

// InsufficientFundsError reports a debit the source account cannot cover.
type InsufficientFundsError struct {
	Number    string
	Requested decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds in account %s: requested %s, available %s",
		e.Number, e.Requested, e.Available)
}
