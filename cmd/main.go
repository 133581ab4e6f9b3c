package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"pumpwatch/internal/adapters/config"
	"pumpwatch/internal/adapters/errors/noop"
	"pumpwatch/internal/adapters/errors/sentry"
	"pumpwatch/internal/adapters/exchanges/binance"
	"pumpwatch/internal/adapters/telegram"
	"pumpwatch/internal/liquidation"
	"pumpwatch/internal/metrics"
	"pumpwatch/internal/monitor"
	"pumpwatch/internal/workers"
	"pumpwatch/pkg/errors"
	"pumpwatch/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	if err := logger.Init(cfg.App.LogLevel, cfg.App.Env); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	defer logger.Sync()

	log := logger.Get()
	log.Infof("Starting %s in %s mode", cfg.App.Name, cfg.App.Env)

	errorTracker := initErrorTracker(cfg, log)
	logger.SetErrorTracker(errorTracker)

	metrics.Init()
	if cfg.Metrics.Enabled {
		startMetricsServer(cfg.Metrics.ListenAddr, log)
	}

	exchange, err := binance.NewClient(binance.Config{
		APIKey:     cfg.Binance.APIKey,
		SecretKey:  cfg.Binance.SecretKey,
		Testnet:    cfg.Binance.Testnet,
		RecvWindow: cfg.Binance.RecvWindow,
	})
	if err != nil {
		log.Fatalf("Failed to create exchange client: %v", err)
	}

	notifier, err := telegram.NewNotifier(telegram.Config{
		Token:  cfg.Telegram.BotToken,
		ChatID: cfg.Telegram.ChatID,
	}, log)
	if err != nil {
		log.Fatalf("Failed to create telegram notifier: %v", err)
	}

	engine := liquidation.NewEngine(exchange, liquidation.Config{
		Reference:         cfg.Monitor.ReferenceCurrency,
		Bridge:            cfg.Monitor.BridgeCurrency,
		Preserved:         cfg.Monitor.PreservedAssets(),
		DryRun:            cfg.Monitor.DryRun,
		CancelConcurrency: cfg.Monitor.CancelConcurrency,
	})

	mon := monitor.New(exchange, engine, notifier, monitor.Config{
		Reference:          cfg.Monitor.ReferenceCurrency,
		Bridge:             cfg.Monitor.BridgeCurrency,
		AlertThreshold:     cfg.Monitor.AlertThreshold,
		LiquidateThreshold: cfg.Monitor.LiquidateThreshold,
	})

	if cfg.Monitor.DryRun {
		log.Warn("Dry run enabled: cancel and sell calls are simulated")
	}

	scheduler := workers.NewScheduler()
	scheduler.RegisterWorker(workers.NewMonitorWorker(mon, cfg.Monitor.PollInterval, cfg.Monitor.CycleTimeout))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := scheduler.Start(ctx); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	log.Infow("Monitoring started",
		"reference", cfg.Monitor.ReferenceCurrency,
		"bridge", cfg.Monitor.BridgeCurrency,
		"alert_threshold", cfg.Monitor.AlertThreshold,
		"liquidate_threshold", cfg.Monitor.LiquidateThreshold,
		"poll_interval", cfg.Monitor.PollInterval,
		"dry_run", cfg.Monitor.DryRun,
	)

	waitForShutdown(cancel, scheduler, errorTracker, log)
}

// initErrorTracker initializes error tracking (Sentry or no-op)
func initErrorTracker(cfg *config.Config, log *logger.Logger) errors.Tracker {
	if !cfg.ErrorTracking.Enabled || cfg.ErrorTracking.SentryDSN == "" {
		log.Info("Error tracking disabled")
		return noop.New()
	}

	tracker, err := sentry.New(cfg.ErrorTracking.SentryDSN, cfg.ErrorTracking.Environment)
	if err != nil {
		log.Warnf("Failed to initialize Sentry: %v", err)
		return noop.New()
	}

	log.Info("Error tracking initialized (Sentry)")
	return tracker
}

// startMetricsServer exposes the Prometheus endpoint.
func startMetricsServer(addr string, log *logger.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())

	go func() {
		log.Infow("Metrics server listening", "addr", addr)
		if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
			log.Errorw("Metrics server failed", "error", err)
		}
	}()
}

// waitForShutdown blocks until SIGINT/SIGTERM and stops components.
func waitForShutdown(cancel context.CancelFunc, scheduler *workers.Scheduler, tracker errors.Tracker, log *logger.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	log.Infow("Shutdown signal received", "signal", sig)

	cancel()
	if err := scheduler.Stop(); err != nil {
		log.Warnw("Scheduler stop", "error", err)
	}

	if err := tracker.Flush(context.Background()); err != nil {
		log.Warnw("Error tracker flush failed", "error", err)
	}

	log.Info("Shutdown complete")
}
