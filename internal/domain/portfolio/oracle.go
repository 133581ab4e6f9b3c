package portfolio

import (
	"github.com/shopspring/decimal"
)

// Oracle converts asset prices into the reference currency from a single
// pre-fetched snapshot. Resolution order: the direct pair
// {asset}{reference}, then one hop through the bridge currency via
// {asset}{bridge} / {reference}{bridge}. No multi-hop pathfinding.
type Oracle struct {
	snapshot  PriceSnapshot
	reference string
	bridge    string
}

// NewOracle creates an oracle bound to one snapshot.
func NewOracle(snapshot PriceSnapshot, reference, bridge string) *Oracle {
	return &Oracle{
		snapshot:  snapshot,
		reference: reference,
		bridge:    bridge,
	}
}

// Price returns the asset's unit price in the reference currency.
// The second return value is false when no route exists; that is a
// modeled outcome, not an error.
func (o *Oracle) Price(asset string) (decimal.Decimal, bool) {
	if asset == o.reference {
		return decimal.NewFromInt(1), true
	}

	if direct, ok := o.snapshot.Price(asset + o.reference); ok {
		return direct, true
	}

	assetLeg, ok := o.snapshot.Price(asset + o.bridge)
	if !ok {
		return decimal.Zero, false
	}

	// A zero or missing reference leg makes the bridge route unusable
	// even when the asset leg exists.
	refLeg, ok := o.snapshot.Price(o.reference + o.bridge)
	if !ok || refLeg.IsZero() {
		return decimal.Zero, false
	}

	return assetLeg.Div(refLeg), true
}

// SellSymbol resolves the instrument to sell an asset on: the direct pair
// against the reference currency when quoted, otherwise the bridge pair.
// First existing instrument wins; no best-price selection.
func (o *Oracle) SellSymbol(asset string) (string, bool) {
	if o.snapshot.Has(asset + o.reference) {
		return asset + o.reference, true
	}
	if o.snapshot.Has(asset + o.bridge) {
		return asset + o.bridge, true
	}
	return "", false
}
