package portfolio

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFloorToStepNeverExceedsInput(t *testing.T) {
	cases := []struct{ qty, step string }{
		{"1.2345", "0.001"},
		{"0.9999", "0.1"},
		{"100", "7"},
		{"0.0005", "0.001"},
	}

	for _, tc := range cases {
		got := FloorToStep(d(tc.qty), d(tc.step))
		assert.True(t, got.LessThanOrEqual(d(tc.qty)), "floor(%s, %s) = %s", tc.qty, tc.step, got)
		assert.True(t, got.Mod(d(tc.step)).IsZero(), "floor(%s, %s) = %s not a multiple", tc.qty, tc.step, got)
	}
}

func TestFloorToStepExactMultipleUnchanged(t *testing.T) {
	// A naive float divide-multiply can floor 0.003/0.001 below 3.
	got := FloorToStep(d("0.003"), d("0.001"))
	assert.True(t, got.Equal(d("0.003")), "got %s", got)

	got = FloorToStep(d("123.45"), d("0.05"))
	assert.True(t, got.Equal(d("123.45")), "got %s", got)
}

func TestFloorToStepRoundsDown(t *testing.T) {
	got := FloorToStep(d("0.0039"), d("0.001"))
	assert.True(t, got.Equal(d("0.003")), "got %s", got)
}

func TestFloorToStepZeroStepPassthrough(t *testing.T) {
	got := FloorToStep(d("1.234"), decimal.Zero)
	assert.True(t, got.Equal(d("1.234")))
}

func TestSizeOrderCompliant(t *testing.T) {
	rule := TradingRule{Symbol: "BTCEUR", StepSize: d("0.0001"), MinQty: d("0.0001"), MinNotional: d("10")}

	qty, ok := SizeOrder(rule, d("60000"), d("0.012345"))
	require.True(t, ok)
	assert.True(t, qty.Equal(d("0.0123")), "got %s", qty)
}

func TestSizeOrderBelowMinQty(t *testing.T) {
	rule := TradingRule{Symbol: "XYZEUR", StepSize: d("0.001"), MinQty: d("0.001"), MinNotional: d("10")}

	_, ok := SizeOrder(rule, d("50"), d("0.0005"))
	assert.False(t, ok)
}

func TestSizeOrderBelowMinNotional(t *testing.T) {
	rule := TradingRule{Symbol: "XYZEUR", StepSize: d("0.001"), MinQty: d("0.001"), MinNotional: d("10")}

	// 0.1 * 50 = 5 < 10
	_, ok := SizeOrder(rule, d("50"), d("0.1"))
	assert.False(t, ok)
}

func TestSizeOrderNeverViolatesFloors(t *testing.T) {
	rule := TradingRule{Symbol: "ABCEUR", StepSize: d("0.01"), MinQty: d("0.05"), MinNotional: d("5")}
	price := d("3.3")

	for _, raw := range []string{"0", "0.01", "0.049", "0.05", "1.5155", "2", "10.009"} {
		qty, ok := SizeOrder(rule, price, d(raw))
		if !ok {
			continue
		}
		assert.True(t, qty.GreaterThanOrEqual(rule.MinQty), "raw %s: qty %s < min qty", raw, qty)
		assert.True(t, qty.Mul(price).GreaterThanOrEqual(rule.MinNotional), "raw %s: notional below floor", raw)
		assert.True(t, qty.Mod(rule.StepSize).IsZero(), "raw %s: qty %s off step", raw, qty)
		assert.True(t, qty.LessThanOrEqual(d(raw)), "raw %s: qty %s oversells", raw, qty)
	}
}
