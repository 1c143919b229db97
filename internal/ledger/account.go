// Package ledger implements an in-memory account ledger: validated account
// and transfer entities plus the service that applies transfers between them.
package ledger

import (
	"regexp"

	"github.com/shopspring/decimal"
)

// accountNumberPattern matches the only accepted account number format:
// exactly 16 ASCII digits.
var accountNumberPattern = regexp.MustCompile(`^[0-9]{16}$`)

// Account is a single bank account. Balance is held as an exact decimal and
// never goes negative; Company is empty on a ledger that is not partitioned
// by owning company.
type Account struct {
	Number  string
	Balance decimal.Decimal
	Company string
}

// NewAccount builds an account without a company owner. It fails with a
// ValidationError when the number is not exactly 16 digits or the opening
// balance is negative.
func NewAccount(number string, balance decimal.Decimal) (Account, error) {
	if !accountNumberPattern.MatchString(number) {
		return Account{}, newValidationError("number", "account number must be exactly 16 digits")
	}

	if balance.IsNegative() {
		return Account{}, newValidationError("balance", "balance must not be negative")
	}

	return Account{Number: number, Balance: balance}, nil
}

// NewCompanyAccount builds an account owned by a company. The company is
// required; number and balance rules are the same as NewAccount.
func NewCompanyAccount(number string, balance decimal.Decimal, company string) (Account, error) {
	account, err := NewAccount(number, balance)
	if err != nil {
		return Account{}, err
	}

	if company == "" {
		return Account{}, newValidationError("company", "company is required")
	}

	account.Company = company

	return account, nil
}

// CanAfford reports whether the balance covers the given amount.
func (a *Account) CanAfford(amount decimal.Decimal) bool {
	return a.Balance.GreaterThanOrEqual(amount)
}

// Debit subtracts amount from the balance. It fails with an
// InsufficientFundsError when the balance cannot cover the amount, so the
// balance never drops below zero. A non-positive amount is rejected with a
// ValidationError even though the Transfer constructor already forbids one.
func (a *Account) Debit(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return newValidationError("amount", "debit amount must be positive")
	}

	if !a.CanAfford(amount) {
		return &InsufficientFundsError{Number: a.Number, Requested: amount, Available: a.Balance}
	}

	a.Balance = a.Balance.Sub(amount)

	return nil
}

// Credit adds amount to the balance. There is no upper bound; a non-positive
// amount is the only rejection.
func (a *Account) Credit(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return newValidationError("amount", "credit amount must be positive")
	}

	a.Balance = a.Balance.Add(amount)

	return nil
}
