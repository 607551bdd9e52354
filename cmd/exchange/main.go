package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"swapCore/internal/amount"
	"swapCore/internal/config"
	"swapCore/internal/exchange"
	"swapCore/internal/httpapi"
	"swapCore/internal/pool"
	"swapCore/internal/settlement"
	"swapCore/internal/storage"
	"swapCore/internal/storage/postgres"
)

func main() {
	root := &cobra.Command{
		Use:          "exchange",
		Short:        "Two-asset swap engine",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the exchange HTTP server",
		RunE:  runServe,
	}

	serveCmd.Flags().String("listen", ":8080", "listen address")
	serveCmd.Flags().String("custody-account", "pool-custody", "pool custody account")
	serveCmd.Flags().Duration("settle-timeout", 30*time.Second, "settlement call timeout")
	serveCmd.Flags().String("snapshot", "./data/pools.json", "pool snapshot file path")
	serveCmd.Flags().String("receipts-out", "./data/receipts.jsonl", "receipts JSONL path, empty to disable")
	serveCmd.Flags().String("pg-dsn", "", "Postgres DSN for receipts and pool snapshots")
	serveCmd.Flags().String("rpc", "", "EVM RPC URL for settlement reconciliation")
	serveCmd.Flags().Int("max-retries", 5, "maximum reconciliation retry attempts")
	serveCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial reconciliation retry backoff")
	serveCmd.Flags().StringSlice("fund", nil, "dev ledger funding entries (account:asset:amount)")
	serveCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(serveCmd)

	quoteCmd := &cobra.Command{
		Use:   "quote",
		Short: "Compute a quote from explicit reserves",
		RunE:  runQuote,
	}

	quoteCmd.Flags().String("reserve-in", "", "input-side reserve")
	quoteCmd.Flags().String("reserve-out", "", "output-side reserve")
	quoteCmd.Flags().String("amount-in", "", "input amount")
	quoteCmd.Flags().Uint32("fee-bps", 30, "fee in basis points")
	quoteCmd.Flags().String("strategy", "constant_product", "pricing strategy (fixed_peg, constant_product)")
	quoteCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(quoteCmd)

	root.AddCommand(newPoolsCmd())

	reconcileCmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Resolve an indeterminate settlement reference on chain",
		RunE:  runReconcile,
	}

	reconcileCmd.Flags().String("rpc", "", "EVM RPC URL")
	reconcileCmd.Flags().String("ref", "", "settlement reference (transaction hash)")
	reconcileCmd.Flags().Int("max-retries", 5, "maximum retry attempts")
	reconcileCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")

	root.AddCommand(reconcileCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := pool.NewRegistry(logger)
	snapshots := &pool.SnapshotStore{Path: cfg.SnapshotPath}

	infos, ok, err := snapshots.Load()
	if err != nil {
		return err
	}
	if ok {
		if err := registry.Restore(infos); err != nil {
			return fmt.Errorf("restore pools: %w", err)
		}
		logger.Info("pools restored", zap.Int("count", len(infos)))
	}

	var sinks []storage.ReceiptSink
	if cfg.ReceiptsOut != "" {
		sinks = append(sinks, storage.NewJsonlSink(cfg.ReceiptsOut))
	}

	var pgStore *postgres.Store
	if cfg.PGDSN != "" {
		pgStore, err = postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pgStore.Close()
		if err := pgStore.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
		sinks = append(sinks, pgStore)
	}

	ledger := settlement.NewMemoryLedger()
	fundEntries, _ := cmd.Flags().GetStringSlice("fund")
	if err := fundLedger(ledger, fundEntries); err != nil {
		return err
	}
	logger.Warn("using in-memory settlement ledger; transfers are not real")

	var reconciler httpapi.Reconciler
	if cfg.RPCURL != "" {
		evm, err := settlement.NewEVMReconciler(ctx, cfg.RPCURL, cfg.MaxRetries, cfg.RetryBackoff)
		if err != nil {
			return fmt.Errorf("connect rpc: %w", err)
		}
		defer evm.Close()
		reconciler = evm
	}

	executor := exchange.NewExecutor(registry, ledger, sinks, exchange.Config{
		CustodyAccount: cfg.CustodyAccount,
		SettleTimeout:  cfg.SettleTimeout,
	}, logger)

	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: httpapi.NewServer(registry, executor, reconciler, logger).Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("exchange listening", zap.String("addr", cfg.ListenAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}

	final := registry.List()
	if err := snapshots.Save(final); err != nil {
		logger.Error("save snapshot", zap.Error(err))
	}
	if pgStore != nil {
		if err := pgStore.UpsertPools(shutdownCtx, final); err != nil {
			logger.Error("upsert pools", zap.Error(err))
		}
	}

	logger.Info("exchange stopped", zap.Int("pools", len(final)))
	return nil
}

func fundLedger(ledger *settlement.MemoryLedger, entries []string) error {
	for _, entry := range entries {
		parts := strings.Split(entry, ":")
		if len(parts) != 3 {
			return fmt.Errorf("invalid fund entry %q, want account:asset:amount", entry)
		}
		value, err := amount.Parse(parts[2])
		if err != nil {
			return fmt.Errorf("fund entry %q: %w", entry, err)
		}
		ledger.Fund(parts[0], parts[1], value)
	}
	return nil
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
