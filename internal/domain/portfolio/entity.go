package portfolio

import (
	"github.com/shopspring/decimal"
)

// AssetBalance is a point-in-time holding of a single asset.
// Fetched fresh from the exchange every cycle, never cached.
type AssetBalance struct {
	Asset  string
	Free   decimal.Decimal
	Locked decimal.Decimal
}

// Total returns the full holding, free plus locked.
func (b AssetBalance) Total() decimal.Decimal {
	return b.Free.Add(b.Locked)
}

// PriceSnapshot maps trading-pair symbols (e.g. "BTCEUR") to last prices.
// A snapshot is fetched once per cycle and reused for every conversion in
// that cycle so a single valuation pass is internally consistent.
type PriceSnapshot map[string]decimal.Decimal

// Price looks up the last price for a pair symbol.
func (s PriceSnapshot) Price(symbol string) (decimal.Decimal, bool) {
	p, ok := s[symbol]
	return p, ok
}

// Has reports whether the pair exists in the snapshot.
func (s PriceSnapshot) Has(symbol string) bool {
	_, ok := s[symbol]
	return ok
}

// TradingRule holds the per-instrument order constraints imposed by the
// exchange: quantity quantization step, minimum quantity and minimum
// notional value (price times quantity).
type TradingRule struct {
	Symbol      string
	StepSize    decimal.Decimal
	MinQty      decimal.Decimal
	MinNotional decimal.Decimal
}

// ValuationEntry is one priced holding inside a valuation pass.
type ValuationEntry struct {
	Asset     string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	Value     decimal.Decimal
}

// Valuation is the result of one valuation pass. Entries keep the
// balance-snapshot order. Assets without a price route are listed in
// Unpriced and do not contribute to Total.
type Valuation struct {
	Entries  []ValuationEntry
	Unpriced []string
	Total    decimal.Decimal
}
