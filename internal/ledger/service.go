package ledger

import "github.com/shopspring/decimal"

// Service validates and applies transfers against an in-memory account
// mapping and answers balance queries. It owns the mapping exclusively for
// the duration of a run and is not safe for concurrent callers.
type Service struct {
	accounts map[string]*Account
	order    []string
	// partitioned requires a company context on every transfer and balance
	// query and enforces that it matches both accounts involved.
	partitioned bool
}

// NewService creates a ledger service over the given accounts. Duplicate
// account numbers are not rejected: the last record wins, replacing the
// earlier balance while keeping the number's original listing position.
func NewService(accounts []Account) *Service {
	s := &Service{accounts: make(map[string]*Account, len(accounts))}
	s.index(accounts)

	return s
}

// NewPartitionedService creates a company-partitioned ledger service. Every
// account must belong to a company; a company-less account fails with a
// ValidationError. The duplicate-number rule is the same as NewService.
func NewPartitionedService(accounts []Account) (*Service, error) {
	for _, account := range accounts {
		if account.Company == "" {
			return nil, newValidationError("company", "account "+account.Number+" has no company")
		}
	}

	s := &Service{
		accounts:    make(map[string]*Account, len(accounts)),
		partitioned: true,
	}
	s.index(accounts)

	return s, nil
}

func (s *Service) index(accounts []Account) {
	for _, account := range accounts {
		if _, exists := s.accounts[account.Number]; !exists {
			s.order = append(s.order, account.Number)
		}

		s.accounts[account.Number] = &account
	}
}

// ProcessTransfer validates and applies a single transfer. Existence is
// checked first, then company ownership whenever a company is in play, then
// sufficient funds. The first failed check returns without touching any
// balance, and the source is always reported before the destination. A
// transfer from an account to itself is permitted and leaves its balance
// unchanged.
func (s *Service) ProcessTransfer(t Transfer) error {
	if s.partitioned && t.Company == "" {
		return newValidationError("company", "company is required on a partitioned ledger")
	}

	source, ok := s.accounts[t.From]
	if !ok {
		return &AccountNotFoundError{Number: t.From}
	}

	destination, ok := s.accounts[t.To]
	if !ok {
		return &AccountNotFoundError{Number: t.To}
	}

	if s.partitioned || t.Company != "" {
		if source.Company != t.Company {
			return &CompanyMismatchError{Expected: t.Company, Actual: source.Company}
		}

		if destination.Company != t.Company {
			return &CompanyMismatchError{Expected: t.Company, Actual: destination.Company}
		}
	}

	if !source.CanAfford(t.Amount) {
		return &InsufficientFundsError{Number: source.Number, Requested: t.Amount, Available: source.Balance}
	}

	if err := source.Debit(t.Amount); err != nil {
		return err
	}

	// The amount is strictly positive by construction, so the credit cannot
	// fail once the debit has gone through.
	return destination.Credit(t.Amount)
}

// Transfer is the convenience entry point for a plain transfer. It rejects a
// non-positive amount with ErrAmountNotPositive before any transfer record
// is built or any account looked up.
func (s *Service) Transfer(from, to string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrAmountNotPositive
	}

	transfer, err := NewTransfer(from, to, amount)
	if err != nil {
		return err
	}

	return s.ProcessTransfer(transfer)
}

// TransferForCompany is the convenience entry point for a company-scoped
// transfer, with the same upfront amount check as Transfer.
func (s *Service) TransferForCompany(company, from, to string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrAmountNotPositive
	}

	transfer, err := NewCompanyTransfer(from, to, amount, company)
	if err != nil {
		return err
	}

	return s.ProcessTransfer(transfer)
}

// GetBalance retrieves the current balance of an account on a plain ledger.
// On a partitioned ledger the company context is mandatory, so this entry
// point fails with a ValidationError; use GetBalanceForCompany there.
func (s *Service) GetBalance(number string) (decimal.Decimal, error) {
	if s.partitioned {
		return decimal.Zero, newValidationError("company", "company is required on a partitioned ledger")
	}

	account, ok := s.accounts[number]
	if !ok {
		return decimal.Zero, &AccountNotFoundError{Number: number}
	}

	return account.Balance, nil
}

// GetBalanceForCompany retrieves the balance of an account owned by the
// given company. It fails with an AccountNotFoundError when the account is
// absent and with a CompanyMismatchError when it belongs to someone else.
func (s *Service) GetBalanceForCompany(company, number string) (decimal.Decimal, error) {
	if company == "" {
		return decimal.Zero, newValidationError("company", "company is required")
	}

	account, ok := s.accounts[number]
	if !ok {
		return decimal.Zero, &AccountNotFoundError{Number: number}
	}

	if account.Company != company {
		return decimal.Zero, &CompanyMismatchError{Expected: company, Actual: account.Company}
	}

	return account.Balance, nil
}

// ListAccounts returns a snapshot of every account in insertion order. The
// returned copies are detached from the ledger: mutating them does not touch
// the live balances.
func (s *Service) ListAccounts() []Account {
	accounts := make([]Account, 0, len(s.order))
	for _, number := range s.order {
		accounts = append(accounts, *s.accounts[number])
	}

	return accounts
}

// TotalBalance sums every balance in the ledger. Transfers move value
// between accounts without creating or destroying it, so the total is
// invariant across a run.
func (s *Service) TotalBalance() decimal.Decimal {
	total := decimal.Zero
	for _, account := range s.accounts {
		total = total.Add(account.Balance)
	}

	return total
}
