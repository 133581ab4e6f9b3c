package exchanges

import (
	"context"

	"github.com/shopspring/decimal"

	"pumpwatch/internal/domain/portfolio"
)

// Exchange defines the contract each exchange adapter must satisfy.
type Exchange interface {
	Name() string

	// Market data
	GetPriceSnapshot(ctx context.Context) (portfolio.PriceSnapshot, error)
	GetTradingRule(ctx context.Context, symbol string) (*portfolio.TradingRule, error)

	// Account
	GetBalances(ctx context.Context) ([]portfolio.AssetBalance, error)
	GetOpenOrders(ctx context.Context) ([]OpenOrder, error)

	// Trading
	CancelOrder(ctx context.Context, symbol, orderID string) error
	MarketSell(ctx context.Context, symbol string, quantity decimal.Decimal) error
}

// OpenOrder identifies one resting order on the exchange.
type OpenOrder struct {
	Symbol  string
	OrderID string
}
