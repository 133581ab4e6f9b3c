package portfolio

import (
	"github.com/shopspring/decimal"
)

// Valuator combines account balances with a price snapshot into a
// per-asset valuation list and a grand total in the reference currency.
type Valuator struct {
	reference string
	bridge    string
}

// NewValuator creates a valuator for the given reference and bridge
// currency symbols.
func NewValuator(reference, bridge string) *Valuator {
	return &Valuator{reference: reference, bridge: bridge}
}

// Valuate produces the valuation for one cycle. Balances with zero
// quantity are ignored. Reference-currency holdings are valued at unit
// price 1 without a lookup. Assets with no price route are excluded from
// the total and reported in Unpriced.
func (v *Valuator) Valuate(balances []AssetBalance, snapshot PriceSnapshot) Valuation {
	oracle := NewOracle(snapshot, v.reference, v.bridge)

	out := Valuation{Total: decimal.Zero}
	for _, b := range balances {
		qty := b.Total()
		if !qty.IsPositive() {
			continue
		}

		price, ok := oracle.Price(b.Asset)
		if !ok {
			out.Unpriced = append(out.Unpriced, b.Asset)
			continue
		}

		value := qty.Mul(price)
		out.Entries = append(out.Entries, ValuationEntry{
			Asset:     b.Asset,
			Quantity:  qty,
			UnitPrice: price,
			Value:     value,
		})
		out.Total = out.Total.Add(value)
	}

	return out
}
