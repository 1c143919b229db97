package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Failure reason label values for the failed-transfer counter.
const (
	ReasonAccountNotFound   = "account_not_found"
	ReasonCompanyMismatch   = "company_mismatch"
	ReasonInsufficientFunds = "insufficient_funds"
	ReasonInvalid           = "invalid"
)

// Collector aggregates run instrumentation on a private registry. Two
// collectors never share state, even within one process.
type Collector struct {
	registry         *prometheus.Registry
	transfersApplied prometheus.Counter
	transfersFailed  *prometheus.CounterVec
	accountsLoaded   prometheus.Gauge
	accountBalance   *prometheus.GaugeVec
	logger           *zap.Logger
}

func NewCollector(logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}

	registry := prometheus.NewRegistry()

	return &Collector{
		registry: registry,
		transfersApplied: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "ledger_transfers_applied_total",
			Help: "Total number of transfers applied to the ledger",
		}),
		transfersFailed: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_transfers_failed_total",
			Help: "Total number of rejected transfers by failure reason",
		}, []string{"reason"}),
		accountsLoaded: promauto.With(registry).NewGauge(prometheus.GaugeOpts{
			Name: "ledger_accounts_loaded",
			Help: "Number of accounts loaded into the ledger",
		}),
		accountBalance: promauto.With(registry).NewGaugeVec(prometheus.GaugeOpts{
			Name: "ledger_account_balance",
			Help: "Current account balance",
		}, []string{"account"}),
		logger: logger,
	}
}

func (c *Collector) TransferApplied() {
	c.transfersApplied.Inc()
}

func (c *Collector) TransferFailed(reason string) {
	c.transfersFailed.WithLabelValues(reason).Inc()
}

func (c *Collector) SetAccountsLoaded(count int) {
	c.accountsLoaded.Set(float64(count))
}

// SetAccountBalance records a balance as a float gauge. The gauge is an
// observability projection; exact decimal balances stay in the ledger.
func (c *Collector) SetAccountBalance(account string, balance float64) {
	c.accountBalance.WithLabelValues(account).Set(balance)
}

func (c *Collector) GetHandler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// StartMetricsServer serves /metrics on addr in the background. Shutting the
// returned server down is the caller's job.
func (c *Collector) StartMetricsServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.GetHandler())

	server := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		c.logger.Info("starting metrics server", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			c.logger.Error("metrics server failed", zap.Error(err))
		}
	}()

	return server
}
