package liquidation

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"pumpwatch/internal/adapters/exchanges"
	"pumpwatch/internal/domain/portfolio"
	"pumpwatch/pkg/errors"
	"pumpwatch/pkg/logger"
)

// Trader is the slice of the exchange contract the engine mutates through.
type Trader interface {
	GetOpenOrders(ctx context.Context) ([]exchanges.OpenOrder, error)
	CancelOrder(ctx context.Context, symbol, orderID string) error
	GetTradingRule(ctx context.Context, symbol string) (*portfolio.TradingRule, error)
	MarketSell(ctx context.Context, symbol string, quantity decimal.Decimal) error
}

// Config drives one liquidation pass.
type Config struct {
	Reference string
	Bridge    string

	// Preserved assets are never sold. The reference currency belongs
	// here always; stablecoins depending on configuration.
	Preserved map[string]bool

	// DryRun replaces cancel/sell calls with no-ops that still populate
	// the report, for safe rehearsal.
	DryRun bool

	// CancelConcurrency bounds parallel order cancellations.
	CancelConcurrency int
}

// Result aggregates one liquidation pass. Lines keep a stable order:
// cancellations first, then assets in balance-snapshot order.
type Result struct {
	OrdersCancelled int
	AssetsSold      int
	AssetsFailed    int
	Lines           []string
}

// Engine sells an account down to its preserved assets in a single pass:
// cancel every resting order, then market-sell each non-preserved positive
// balance that clears its instrument's trading rule. Failures stay local
// to their order or asset and never abort the pass. The operation mutates
// exchange state and is not idempotent; callers must not retry it within
// a cycle.
type Engine struct {
	trader Trader
	cfg    Config
	log    *logger.Logger
}

// NewEngine creates a liquidation engine.
func NewEngine(trader Trader, cfg Config) *Engine {
	if cfg.CancelConcurrency < 1 {
		cfg.CancelConcurrency = 1
	}
	return &Engine{
		trader: trader,
		cfg:    cfg,
		log:    logger.Get().With("component", "liquidation_engine"),
	}
}

// Liquidate runs one pass over the given balance and price snapshot. The
// snapshot is captured by the caller before any mutating call so sizing
// decisions never use a price staler than a sell that already executed.
func (e *Engine) Liquidate(ctx context.Context, balances []portfolio.AssetBalance, snapshot portfolio.PriceSnapshot) *Result {
	res := &Result{}

	e.cancelAllOrders(ctx, res)
	e.sellAll(ctx, balances, snapshot, res)

	e.log.Infow("Liquidation pass finished",
		"cancelled", res.OrdersCancelled,
		"sold", res.AssetsSold,
		"failed", res.AssetsFailed,
	)
	return res
}

// cancelAllOrders cancels every open order with bounded concurrency.
// One cancellation failing must not block the others.
func (e *Engine) cancelAllOrders(ctx context.Context, res *Result) {
	orders, err := e.trader.GetOpenOrders(ctx)
	if err != nil {
		e.log.Errorw("Failed to list open orders", "error", err)
		res.Lines = append(res.Lines, fmt.Sprintf("could not list open orders: %v", err))
		return
	}
	if len(orders) == 0 {
		return
	}

	lines := make([]string, len(orders))
	cancelled := make([]bool, len(orders))

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, e.cfg.CancelConcurrency)

	for i, order := range orders {
		wg.Add(1)
		go func(i int, order exchanges.OpenOrder) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			if e.cfg.DryRun {
				cancelled[i] = true
				lines[i] = fmt.Sprintf("cancelled order %s on %s (dry run)", order.OrderID, order.Symbol)
				return
			}

			if err := e.trader.CancelOrder(ctx, order.Symbol, order.OrderID); err != nil {
				e.log.Errorw("Order cancel failed",
					"symbol", order.Symbol,
					"order_id", order.OrderID,
					"error", err,
				)
				lines[i] = fmt.Sprintf("cancel failed for order %s on %s: %v", order.OrderID, order.Symbol, err)
				return
			}

			cancelled[i] = true
			lines[i] = fmt.Sprintf("cancelled order %s on %s", order.OrderID, order.Symbol)
		}(i, order)
	}
	wg.Wait()

	for i := range orders {
		if cancelled[i] {
			res.OrdersCancelled++
		}
		res.Lines = append(res.Lines, lines[i])
	}
}

// sellAll walks the balances in snapshot order and market-sells each
// non-preserved holding. Per-asset failures are logged, counted and
// isolated from the remaining assets.
func (e *Engine) sellAll(ctx context.Context, balances []portfolio.AssetBalance, snapshot portfolio.PriceSnapshot, res *Result) {
	oracle := portfolio.NewOracle(snapshot, e.cfg.Reference, e.cfg.Bridge)

	for _, b := range balances {
		qty := b.Total()
		if !qty.IsPositive() || e.cfg.Preserved[b.Asset] {
			continue
		}

		symbol, ok := oracle.SellSymbol(b.Asset)
		if !ok {
			res.Lines = append(res.Lines, fmt.Sprintf("%s: no trading pair, skipped", b.Asset))
			continue
		}

		price, _ := snapshot.Price(symbol)
		if price.IsZero() {
			res.Lines = append(res.Lines, fmt.Sprintf("%s: no price for %s, skipped", b.Asset, symbol))
			continue
		}

		rule, err := e.trader.GetTradingRule(ctx, symbol)
		if err != nil {
			if errors.Is(err, exchanges.ErrSymbolNotFound) {
				res.Lines = append(res.Lines, fmt.Sprintf("%s: %s not tradable, skipped", b.Asset, symbol))
				continue
			}
			e.log.Errorw("Trading rule fetch failed", "symbol", symbol, "error", err)
			res.AssetsFailed++
			res.Lines = append(res.Lines, fmt.Sprintf("%s: trading rule unavailable: %v", b.Asset, err))
			continue
		}

		sized, ok := portfolio.SizeOrder(*rule, price, qty)
		if !ok {
			res.Lines = append(res.Lines, fmt.Sprintf(
				"%s: %s below minimum quantity or notional for %s, skipped", b.Asset, qty, symbol))
			continue
		}

		if e.cfg.DryRun {
			res.AssetsSold++
			res.Lines = append(res.Lines, fmt.Sprintf("sold %s %s on %s (dry run)", sized, b.Asset, symbol))
			continue
		}

		if err := e.trader.MarketSell(ctx, symbol, sized); err != nil {
			e.log.Errorw("Market sell failed",
				"asset", b.Asset,
				"symbol", symbol,
				"quantity", sized,
				"error", err,
			)
			res.AssetsFailed++
			res.Lines = append(res.Lines, fmt.Sprintf("%s: sell failed: %v", b.Asset, err))
			continue
		}

		e.log.Infow("Market sell executed", "asset", b.Asset, "symbol", symbol, "quantity", sized)
		res.AssetsSold++
		res.Lines = append(res.Lines, fmt.Sprintf("sold %s %s on %s", sized, b.Asset, symbol))
	}
}
