package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/example/transfer-ledger/internal/config"
	"github.com/example/transfer-ledger/internal/runner"
	"github.com/example/transfer-ledger/pkg/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}

	accountsPath := flag.String("accounts", cfg.AccountsFile, "path to the accounts CSV listing")
	transfersPath := flag.String("transfers", cfg.TransfersFile, "path to the transfers CSV listing")
	logLevel := flag.String("log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	metricsAddr := flag.String("metrics-addr", cfg.MetricsAddr, "address for the /metrics listener, empty to disable")
	flag.Parse()

	cfg.AccountsFile = *accountsPath
	cfg.TransfersFile = *transfersPath
	cfg.LogLevel = *logLevel
	cfg.MetricsAddr = *metricsAddr

	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		flag.Usage()
		os.Exit(1)
	}

	logger, err := buildLogger(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to build logger:", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	collector := metrics.NewCollector(logger)

	var metricsServer *http.Server
	if cfg.MetricsAddr != "" {
		metricsServer = collector.StartMetricsServer(cfg.MetricsAddr)
	}

	summary, err := runner.New(logger, collector, os.Stdout).Run(cfg.AccountsFile, cfg.TransfersFile)
	if err != nil {
		logger.Fatal("run aborted", zap.Error(err))
	}

	// Individual transfer failures are part of a normal run; only startup
	// and listing errors exit non-zero.
	fmt.Printf("Applied %d of %d transfers (%d failed)\n", summary.Applied, summary.Total, summary.Failed)

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("metrics server shutdown failed", zap.Error(err))
		}
	}
}

func buildLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}

	zapCfg := zap.NewProductionConfig()
	if cfg.Environment == "development" {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
