package portfolio

import (
	"github.com/shopspring/decimal"
)

// FloorToStep quantizes qty downward to the nearest multiple of step.
// Flooring (never rounding) avoids overselling beyond the held balance.
// Decimal arithmetic keeps the result exact near step boundaries where a
// binary float divide-multiply can land on the wrong multiple.
func FloorToStep(qty, step decimal.Decimal) decimal.Decimal {
	if !step.IsPositive() {
		return qty
	}
	return qty.Div(step).Floor().Mul(step)
}

// SizeOrder computes the largest order quantity compliant with the
// instrument's trading rule, given the current price and the raw quantity
// held. The second return value is false when the position is not
// liquidatable: the floored quantity falls below the minimum quantity, or
// its notional falls below the minimum notional.
func SizeOrder(rule TradingRule, price, rawQty decimal.Decimal) (decimal.Decimal, bool) {
	qty := FloorToStep(rawQty, rule.StepSize)

	if qty.LessThan(rule.MinQty) || qty.IsZero() {
		return decimal.Zero, false
	}
	if qty.Mul(price).LessThan(rule.MinNotional) {
		return decimal.Zero, false
	}

	return qty, true
}
