package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"

	"pumpwatch/pkg/errors"
)

type Config struct {
	App           AppConfig
	Binance       BinanceConfig
	Telegram      TelegramConfig
	Monitor       MonitorConfig
	Metrics       MetricsConfig
	ErrorTracking ErrorTrackingConfig
}

type AppConfig struct {
	Name     string `envconfig:"APP_NAME" default:"pumpwatch"`
	Env      string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Debug    bool   `envconfig:"DEBUG" default:"false"`
}

type BinanceConfig struct {
	APIKey     string        `envconfig:"BINANCE_API_KEY" required:"true"`
	SecretKey  string        `envconfig:"BINANCE_API_SECRET" required:"true"`
	Testnet    bool          `envconfig:"BINANCE_TESTNET" default:"false"`
	RecvWindow time.Duration `envconfig:"BINANCE_RECV_WINDOW" default:"5s"`
}

type TelegramConfig struct {
	BotToken string `envconfig:"TELEGRAM_BOT_TOKEN" required:"true"`
	ChatID   int64  `envconfig:"TELEGRAM_CHAT_ID" required:"true"`
}

// MonitorConfig drives the valuation and liquidation engine. The same
// binary covers dry-run rehearsal, alert-only and full liquidation setups;
// there is no behavioral forking by build variant.
type MonitorConfig struct {
	ReferenceCurrency string `envconfig:"REFERENCE_CURRENCY" default:"EUR"`
	BridgeCurrency    string `envconfig:"BRIDGE_CURRENCY" default:"USDT"`

	AlertThreshold     decimal.Decimal `envconfig:"ALERT_THRESHOLD" required:"true"`
	LiquidateThreshold decimal.Decimal `envconfig:"LIQUIDATE_THRESHOLD" required:"true"`

	PollInterval time.Duration `envconfig:"POLL_INTERVAL" default:"1h"`
	CycleTimeout time.Duration `envconfig:"CYCLE_TIMEOUT" default:"2m"`

	// When preservation is on, stablecoins survive a liquidation alongside
	// the reference currency.
	PreserveStables bool     `envconfig:"PRESERVE_STABLES" default:"true"`
	StableAssets    []string `envconfig:"STABLE_ASSETS" default:"USDT,BUSD,USDC,DAI"`

	// Dry run keeps the pairing and sizing logic live but replaces
	// cancel/sell calls with no-ops that still populate the report.
	DryRun bool `envconfig:"DRY_RUN" default:"false"`

	CancelConcurrency int `envconfig:"CANCEL_CONCURRENCY" default:"4"`
}

// PreservedAssets returns the injected preservation set: the reference
// currency always, stablecoins when preservation is enabled.
func (c MonitorConfig) PreservedAssets() map[string]bool {
	preserved := map[string]bool{c.ReferenceCurrency: true}
	if c.PreserveStables {
		for _, asset := range c.StableAssets {
			preserved[asset] = true
		}
	}
	return preserved
}

type MetricsConfig struct {
	Enabled    bool   `envconfig:"METRICS_ENABLED" default:"true"`
	ListenAddr string `envconfig:"METRICS_LISTEN_ADDR" default:":9090"`
}

type ErrorTrackingConfig struct {
	Enabled     bool   `envconfig:"ERROR_TRACKING_ENABLED" default:"true"`
	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"SENTRY_ENVIRONMENT" default:"production"`
}

// Load reads configuration from environment variables.
// It first tries to load a .env file (useful for local development).
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to process env config")
	}

	if cfg.Monitor.AlertThreshold.GreaterThanOrEqual(cfg.Monitor.LiquidateThreshold) {
		return nil, errors.Wrapf(errors.ErrInvalidInput,
			"alert threshold %s must be below liquidate threshold %s",
			cfg.Monitor.AlertThreshold, cfg.Monitor.LiquidateThreshold)
	}
	if cfg.Monitor.CancelConcurrency < 1 {
		cfg.Monitor.CancelConcurrency = 1
	}

	return &cfg, nil
}
