// Package records reads account and transfer listings from flat CSV files.
//
// Listings carry no header row. The first record fixes the column count for
// the whole file, so a listing is either uniformly plain or uniformly
// company-partitioned. Validation of the parsed values lives in the ledger
// entity constructors; this package only maps rows to construction calls and
// attaches line numbers to whatever fails.
package records

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"

	"github.com/example/transfer-ledger/internal/ledger"
)

const (
	accountColumns        = 2
	accountCompanyColumns = 3

	transferColumns        = 3
	transferCompanyColumns = 4
)

// RowError reports the first row of a listing that could not be turned into
// a ledger entity, with its 1-based line number in the source file.
type RowError struct {
	Line int
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// ReadAccounts parses an account listing. Rows are either
// "number,balance" or "number,balance,company"; the whole file must use one
// of the two shapes. The first malformed row rejects the listing with a
// *RowError.
func ReadAccounts(r io.Reader) ([]ledger.Account, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	var accounts []ledger.Account

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, asRowError(err)
		}

		line, _ := reader.FieldPos(0)

		account, err := parseAccount(record)
		if err != nil {
			return nil, &RowError{Line: line, Err: err}
		}

		accounts = append(accounts, account)
	}

	return accounts, nil
}

// ReadAccountsFile opens and parses an account listing from disk.
func ReadAccountsFile(path string) ([]ledger.Account, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open accounts file: %w", err)
	}
	defer f.Close()

	accounts, err := ReadAccounts(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read accounts file %s: %w", path, err)
	}

	return accounts, nil
}

// ReadTransfers parses a transfer listing. Rows are either
// "from,to,amount" or "from,to,amount,company"; the whole file must use one
// of the two shapes. The first malformed row rejects the listing with a
// *RowError.
func ReadTransfers(r io.Reader) ([]ledger.Transfer, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	var transfers []ledger.Transfer

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, asRowError(err)
		}

		line, _ := reader.FieldPos(0)

		transfer, err := parseTransfer(record)
		if err != nil {
			return nil, &RowError{Line: line, Err: err}
		}

		transfers = append(transfers, transfer)
	}

	return transfers, nil
}

// ReadTransfersFile opens and parses a transfer listing from disk.
func ReadTransfersFile(path string) ([]ledger.Transfer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open transfers file: %w", err)
	}
	defer f.Close()

	transfers, err := ReadTransfers(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read transfers file %s: %w", path, err)
	}

	return transfers, nil
}

func parseAccount(record []string) (ledger.Account, error) {
	switch len(record) {
	case accountColumns:
		balance, err := parseAmount(record[1], "balance")
		if err != nil {
			return ledger.Account{}, err
		}

		return ledger.NewAccount(record[0], balance)
	case accountCompanyColumns:
		balance, err := parseAmount(record[1], "balance")
		if err != nil {
			return ledger.Account{}, err
		}

		return ledger.NewCompanyAccount(record[0], balance, record[2])
	default:
		return ledger.Account{}, fmt.Errorf("expected %d or %d fields, got %d", accountColumns, accountCompanyColumns, len(record))
	}
}

func parseTransfer(record []string) (ledger.Transfer, error) {
	switch len(record) {
	case transferColumns:
		amount, err := parseAmount(record[2], "amount")
		if err != nil {
			return ledger.Transfer{}, err
		}

		return ledger.NewTransfer(record[0], record[1], amount)
	case transferCompanyColumns:
		amount, err := parseAmount(record[2], "amount")
		if err != nil {
			return ledger.Transfer{}, err
		}

		return ledger.NewCompanyTransfer(record[0], record[1], amount, record[3])
	default:
		return ledger.Transfer{}, fmt.Errorf("expected %d or %d fields, got %d", transferColumns, transferCompanyColumns, len(record))
	}
}

func parseAmount(field, name string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(field)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("failed to parse %s %q: %w", name, field, err)
	}

	return amount, nil
}

// asRowError converts csv parse failures (wrong field count, bare quotes)
// into *RowError, the one error shape for every bad row.
func asRowError(err error) error {
	var parseErr *csv.ParseError
	if errors.As(err, &parseErr) {
		return &RowError{Line: parseErr.Line, Err: parseErr.Err}
	}

	return err
}
