package ledger

import "github.com/shopspring/decimal"

// Transfer is a validated request to move a positive amount from one account
// to another. From and To may name the same account: nothing forbids a
// self-transfer, which still passes every check and leaves the balance
// unchanged. Company is empty when the transfer carries no company context.
type Transfer struct {
	From    string
	To      string
	Amount  decimal.Decimal
	Company string
}

// NewTransfer builds a transfer without company context. It fails with a
// ValidationError when either account number is malformed or the amount is
// not strictly positive.
func NewTransfer(from, to string, amount decimal.Decimal) (Transfer, error) {
	if !accountNumberPattern.MatchString(from) {
		return Transfer{}, newValidationError("from", "account number must be exactly 16 digits")
	}

	if !accountNumberPattern.MatchString(to) {
		return Transfer{}, newValidationError("to", "account number must be exactly 16 digits")
	}

	if !amount.IsPositive() {
		return Transfer{}, newValidationError("amount", "amount must be greater than zero")
	}

	return Transfer{From: from, To: to, Amount: amount}, nil
}

// NewCompanyTransfer builds a transfer scoped to a company. The company is
// required; the remaining rules are the same as NewTransfer.
func NewCompanyTransfer(from, to string, amount decimal.Decimal, company string) (Transfer, error) {
	transfer, err := NewTransfer(from, to, amount)
	if err != nil {
		return Transfer{}, err
	}

	if company == "" {
		return Transfer{}, newValidationError("company", "company is required")
	}

	transfer.Company = company

	return transfer, nil
}
