package runner

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/example/transfer-ledger/pkg/metrics"
)

func writeListing(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestRunner_Run(t *testing.T) {
	accounts := writeListing(t, "accounts.csv",
		"1111111111111111,5000\n2222222222222222,550\n")
	transfers := writeListing(t, "transfers.csv",
		"1111111111111111,2222222222222222,500\n"+
			"2222222222222222,1111111111111111,10000\n"+
			"0000000000000000,2222222222222222,5\n")

	collector := metrics.NewCollector(nil)
	var out bytes.Buffer

	summary, err := New(zaptest.NewLogger(t), collector, &out).Run(accounts, transfers)

	require.NoError(t, err)
	assert.NotEmpty(t, summary.RunID)
	assert.Equal(t, 2, summary.AccountsLoaded)
	assert.Equal(t, 1, summary.Applied)
	assert.Equal(t, 2, summary.Failed)
	assert.Equal(t, 3, summary.Total)

	expected := strings.Join([]string{
		"Balances before transfers:",
		"1111111111111111: 5000",
		"2222222222222222: 550",
		"Balances after transfers:",
		"1111111111111111: 4500",
		"2222222222222222: 1050",
		"",
	}, "\n")
	assert.Equal(t, expected, out.String())

	rec := httptest.NewRecorder()
	collector.GetHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body := rec.Body.String()
	assert.Contains(t, body, "ledger_transfers_applied_total 1")
	assert.Contains(t, body, `ledger_transfers_failed_total{reason="insufficient_funds"} 1`)
	assert.Contains(t, body, `ledger_transfers_failed_total{reason="account_not_found"} 1`)
	assert.Contains(t, body, "ledger_accounts_loaded 2")
	assert.Contains(t, body, `ledger_account_balance{account="1111111111111111"} 4500`)
}

func TestRunner_Run_Partitioned(t *testing.T) {
	accounts := writeListing(t, "accounts.csv",
		"1111111111111111,5000,alpha\n"+
			"2222222222222222,550,alpha\n"+
			"3333333333333333,900,beta\n")
	transfers := writeListing(t, "transfers.csv",
		"1111111111111111,2222222222222222,500,alpha\n"+
			"1111111111111111,3333333333333333,5,beta\n")

	var out bytes.Buffer

	summary, err := New(zaptest.NewLogger(t), nil, &out).Run(accounts, transfers)

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Applied)
	assert.Equal(t, 1, summary.Failed)

	report := out.String()
	assert.Contains(t, report, "1111111111111111 [alpha]: 4500")
	assert.Contains(t, report, "3333333333333333 [beta]: 900")
}

func TestRunner_Run_EmptyTransfers(t *testing.T) {
	accounts := writeListing(t, "accounts.csv", "1111111111111111,5000\n")
	transfers := writeListing(t, "transfers.csv", "")

	var out bytes.Buffer

	summary, err := New(zaptest.NewLogger(t), nil, &out).Run(accounts, transfers)

	require.NoError(t, err)
	assert.Equal(t, 0, summary.Applied)
	assert.Equal(t, 0, summary.Failed)
	assert.Equal(t, 0, summary.Total)
}

func TestRunner_Run_NilDependencies(t *testing.T) {
	accounts := writeListing(t, "accounts.csv", "1111111111111111,5000\n2222222222222222,550\n")
	transfers := writeListing(t, "transfers.csv", "1111111111111111,2222222222222222,500\n")

	// A runner built without logger, collector, or writer still completes
	// the batch.
	summary, err := New(nil, nil, nil).Run(accounts, transfers)

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Applied)
	assert.Equal(t, 0, summary.Failed)
}

func TestRunner_Run_BadAccountsListing(t *testing.T) {
	accounts := writeListing(t, "accounts.csv", "1111111111111111,oops\n")
	transfers := writeListing(t, "transfers.csv", "")

	_, err := New(zaptest.NewLogger(t), nil, &bytes.Buffer{}).Run(accounts, transfers)

	require.Error(t, err)
	assert.ErrorContains(t, err, "line 1")
}

func TestRunner_Run_BadTransfersListing(t *testing.T) {
	accounts := writeListing(t, "accounts.csv", "1111111111111111,5000\n")
	transfers := writeListing(t, "transfers.csv", "1111111111111111,2222222222222222,-4\n")

	_, err := New(zaptest.NewLogger(t), nil, &bytes.Buffer{}).Run(accounts, transfers)

	require.Error(t, err)
	assert.ErrorContains(t, err, "line 1")
}

func TestRunner_Run_MissingAccountsFile(t *testing.T) {
	transfers := writeListing(t, "transfers.csv", "")

	_, err := New(zaptest.NewLogger(t), nil, &bytes.Buffer{}).Run(
		filepath.Join(t.TempDir(), "absent.csv"), transfers)

	require.Error(t, err)
	assert.ErrorContains(t, err, "failed to open accounts file")
}

func TestRunner_Run_CompanyModeMismatch(t *testing.T) {
	t.Run("company transfers against plain accounts", func(t *testing.T) {
		accounts := writeListing(t, "accounts.csv", "1111111111111111,5000\n2222222222222222,550\n")
		transfers := writeListing(t, "transfers.csv", "1111111111111111,2222222222222222,5,acme\n")

		_, err := New(zaptest.NewLogger(t), nil, &bytes.Buffer{}).Run(accounts, transfers)

		assert.EqualError(t, err, "transfers file company mode does not match accounts file")
	})

	t.Run("plain transfers against partitioned accounts", func(t *testing.T) {
		accounts := writeListing(t, "accounts.csv", "1111111111111111,5000,alpha\n2222222222222222,550,alpha\n")
		transfers := writeListing(t, "transfers.csv", "1111111111111111,2222222222222222,5\n")

		_, err := New(zaptest.NewLogger(t), nil, &bytes.Buffer{}).Run(accounts, transfers)

		assert.EqualError(t, err, "transfers file company mode does not match accounts file")
	})
}
