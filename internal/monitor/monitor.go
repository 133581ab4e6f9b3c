package monitor

import (
	"context"

	"github.com/shopspring/decimal"

	"pumpwatch/internal/adapters/exchanges"
	"pumpwatch/internal/domain/portfolio"
	"pumpwatch/internal/liquidation"
	"pumpwatch/internal/metrics"
	"pumpwatch/pkg/errors"
	"pumpwatch/pkg/logger"
)

// State classifies one cycle's total valuation. States are per-cycle
// only; every cycle reclassifies from scratch against the current total.
type State string

const (
	StateIdle        State = "idle"
	StateAlerting    State = "alerting"
	StateLiquidating State = "liquidating"
)

// Classify maps a total onto a state given thresholds alert < liquidate.
// Boundary values belong to the higher-severity state. No hysteresis: a
// total oscillating around a threshold re-triggers every cycle, and the
// poll interval is the rate limiter.
func Classify(total, alert, liquidate decimal.Decimal) State {
	if total.GreaterThanOrEqual(liquidate) {
		return StateLiquidating
	}
	if total.GreaterThanOrEqual(alert) {
		return StateAlerting
	}
	return StateIdle
}

// Notifier pushes a text message to the configured channel. Best-effort:
// failures are logged and swallowed, never escalated.
type Notifier interface {
	Send(ctx context.Context, text string) error
}

// Config holds the monitor thresholds and currency routing.
type Config struct {
	Reference          string
	Bridge             string
	AlertThreshold     decimal.Decimal
	LiquidateThreshold decimal.Decimal
}

// Monitor runs the per-cycle classification and dispatch: valuate, then
// alert or liquidate. One instance covers one account; cycles never
// overlap.
type Monitor struct {
	exchange exchanges.Exchange
	engine   *liquidation.Engine
	notifier Notifier
	valuator *portfolio.Valuator
	cfg      Config
	log      *logger.Logger
}

// New creates a threshold monitor.
func New(exchange exchanges.Exchange, engine *liquidation.Engine, notifier Notifier, cfg Config) *Monitor {
	return &Monitor{
		exchange: exchange,
		engine:   engine,
		notifier: notifier,
		valuator: portfolio.NewValuator(cfg.Reference, cfg.Bridge),
		cfg:      cfg,
		log:      logger.Get().With("component", "threshold_monitor"),
	}
}

// RunCycle executes one full cycle. Only a failure to obtain the inputs
// everything downstream needs (balances, price snapshot) is fatal for the
// cycle; it is reported best-effort and returned so the caller can log it
// and sleep until the next cycle.
func (m *Monitor) RunCycle(ctx context.Context) error {
	valuation, balances, snapshot, err := m.valuate(ctx)
	if err != nil {
		m.notify(ctx, "Cycle failed: "+err.Error())
		return err
	}

	state := Classify(valuation.Total, m.cfg.AlertThreshold, m.cfg.LiquidateThreshold)
	metrics.CycleClassifications.WithLabelValues(string(state)).Inc()

	m.log.Infow("Cycle classified",
		"state", state,
		"total", valuation.Total,
		"assets", len(valuation.Entries),
		"unpriced", len(valuation.Unpriced),
	)

	switch state {
	case StateLiquidating:
		m.liquidate(ctx, valuation, balances, snapshot)
	case StateAlerting:
		m.notify(ctx, FormatAlert(valuation, m.cfg.Reference, m.cfg.AlertThreshold))
	case StateIdle:
		// Local log only, no notification.
	}

	return nil
}

// valuate fetches fresh balances and a single price snapshot and values
// the account. The snapshot is reused for every decision in this cycle.
func (m *Monitor) valuate(ctx context.Context) (portfolio.Valuation, []portfolio.AssetBalance, portfolio.PriceSnapshot, error) {
	balances, err := m.exchange.GetBalances(ctx)
	if err != nil {
		return portfolio.Valuation{}, nil, nil, errors.Wrap(err, "failed to fetch account balances")
	}

	snapshot, err := m.exchange.GetPriceSnapshot(ctx)
	if err != nil {
		return portfolio.Valuation{}, nil, nil, errors.Wrap(err, "failed to fetch price snapshot")
	}

	valuation := m.valuator.Valuate(balances, snapshot)
	metrics.ValuationTotal.Set(valuation.Total.InexactFloat64())
	metrics.UnpricedAssets.Set(float64(len(valuation.Unpriced)))

	return valuation, balances, snapshot, nil
}

// liquidate runs the engine once and sends the three liquidation
// notifications: pre, result and post-liquidation valuation.
func (m *Monitor) liquidate(ctx context.Context, valuation portfolio.Valuation, balances []portfolio.AssetBalance, snapshot portfolio.PriceSnapshot) {
	m.notify(ctx, FormatPreLiquidation(valuation, m.cfg.Reference, m.cfg.LiquidateThreshold))

	result := m.engine.Liquidate(ctx, balances, snapshot)

	metrics.OrdersCancelled.Add(float64(result.OrdersCancelled))
	metrics.AssetsSold.Add(float64(result.AssetsSold))
	metrics.AssetsFailed.Add(float64(result.AssetsFailed))

	m.notify(ctx, FormatLiquidationResult(result))

	post, _, _, err := m.valuate(ctx)
	if err != nil {
		m.log.Errorw("Post-liquidation valuation failed", "error", err)
		m.notify(ctx, "Post-liquidation valuation unavailable: "+err.Error())
		return
	}

	m.notify(ctx, FormatPostLiquidation(post, m.cfg.Reference))
}

// notify sends best-effort; a failed notification never fails the cycle.
func (m *Monitor) notify(ctx context.Context, text string) {
	if err := m.notifier.Send(ctx, text); err != nil {
		metrics.NotificationFailures.Inc()
		m.log.Warnw("Notification failed", "error", err)
	}
}
