// Package runner orchestrates one batch run: load the listings, apply the
// transfers in file order, and report balances before and after.
package runner

import (
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/transfer-ledger/internal/ledger"
	"github.com/example/transfer-ledger/internal/records"
	"github.com/example/transfer-ledger/pkg/metrics"
)

// Runner loads account and transfer listings and applies the batch against
// an in-memory ledger. Balance reports go to out; diagnostics go to the
// structured logger.
type Runner struct {
	logger  *zap.Logger
	metrics *metrics.Collector
	out     io.Writer
}

// Summary is the outcome of one run. Total counts every transfer in the
// listing, so Applied + Failed == Total.
type Summary struct {
	RunID          string
	AccountsLoaded int
	Applied        int
	Failed         int
	Total          int
}

func New(logger *zap.Logger, collector *metrics.Collector, out io.Writer) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if collector == nil {
		collector = metrics.NewCollector(nil)
	}
	if out == nil {
		out = io.Discard
	}

	return &Runner{logger: logger, metrics: collector, out: out}
}

// Run executes one batch. A listing that cannot be read or parsed aborts the
// run; a transfer that fails validation is logged and counted, and the rest
// of the batch still runs. Every log entry carries the run_id.
func (r *Runner) Run(accountsPath, transfersPath string) (*Summary, error) {
	runID := uuid.New().String()
	logger := r.logger.With(zap.String("run_id", runID))

	accounts, err := records.ReadAccountsFile(accountsPath)
	if err != nil {
		return nil, err
	}

	partitioned := partitionedListing(accounts)

	var service *ledger.Service
	if partitioned {
		service, err = ledger.NewPartitionedService(accounts)
		if err != nil {
			return nil, fmt.Errorf("failed to build ledger: %w", err)
		}
	} else {
		service = ledger.NewService(accounts)
	}

	transfers, err := records.ReadTransfersFile(transfersPath)
	if err != nil {
		return nil, err
	}

	if len(transfers) > 0 && (transfers[0].Company != "") != partitioned {
		return nil, errors.New("transfers file company mode does not match accounts file")
	}

	r.metrics.SetAccountsLoaded(len(accounts))
	logger.Info("listings loaded",
		zap.Int("accounts", len(accounts)),
		zap.Int("transfers", len(transfers)),
		zap.Bool("partitioned", partitioned))

	r.printBalances("Balances before transfers:", service.ListAccounts())
	totalBefore := service.TotalBalance()

	applied, failed := 0, 0
	for i, transfer := range transfers {
		fields := []zap.Field{
			zap.Int("index", i + 1),
			zap.String("from", transfer.From),
			zap.String("to", transfer.To),
			zap.String("amount", transfer.Amount.String()),
		}
		if transfer.Company != "" {
			fields = append(fields, zap.String("company", transfer.Company))
		}

		if err := service.ProcessTransfer(transfer); err != nil {
			failed++
			r.metrics.TransferFailed(failureReason(err))
			logger.Warn("transfer rejected", append(fields, zap.Error(err))...)

			continue
		}

		applied++
		r.metrics.TransferApplied()
		logger.Info("transfer applied", fields...)
	}

	r.printBalances("Balances after transfers:", service.ListAccounts())

	for _, account := range service.ListAccounts() {
		r.metrics.SetAccountBalance(account.Number, account.Balance.InexactFloat64())
	}

	// Transfers only move value, so the ledger-wide total must not drift.
	totalAfter := service.TotalBalance()
	if !totalBefore.Equal(totalAfter) {
		logger.Error("ledger total drifted across the run",
			zap.String("before", totalBefore.String()),
			zap.String("after", totalAfter.String()))
	}

	summary := &Summary{
		RunID:          runID,
		AccountsLoaded: len(accounts),
		Applied:        applied,
		Failed:         failed,
		Total:          len(transfers),
	}
	logger.Info("run complete",
		zap.Int("accounts", summary.AccountsLoaded),
		zap.Int("applied", summary.Applied),
		zap.Int("failed", summary.Failed))

	return summary, nil
}

func (r *Runner) printBalances(header string, accounts []ledger.Account) {
	fmt.Fprintln(r.out, header)
	for _, account := range accounts {
		if account.Company != "" {
			fmt.Fprintf(r.out, "%s [%s]: %s\n", account.Number, account.Company, account.Balance.String())
			continue
		}

		fmt.Fprintf(r.out, "%s: %s\n", account.Number, account.Balance.String())
	}
}

// partitionedListing reports whether the accounts came from a
// company-partitioned listing. Listings are uniform, so the first record
// decides for the whole file.
func partitionedListing(accounts []ledger.Account) bool {
	return len(accounts) > 0 && accounts[0].Company != ""
}

func failureReason(err error) string {
	var notFound *ledger.AccountNotFoundError
	var mismatch *ledger.CompanyMismatchError
	var insufficient *ledger.InsufficientFundsError

	switch {
	case errors.As(err, &notFound):
		return metrics.ReasonAccountNotFound
	case errors.As(err, &mismatch):
		return metrics.ReasonCompanyMismatch
	case errors.As(err, &insufficient):
		return metrics.ReasonInsufficientFunds
	default:
		return metrics.ReasonInvalid
	}
}
