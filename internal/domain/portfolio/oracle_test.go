package portfolio

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestOraclePrefersDirectPair(t *testing.T) {
	snapshot := PriceSnapshot{
		"BTCEUR":  d("60000"),
		"BTCUSDT": d("65000"),
		"EURUSDT": d("1.1"),
	}
	oracle := NewOracle(snapshot, "EUR", "USDT")

	price, ok := oracle.Price("BTC")
	require.True(t, ok)
	assert.True(t, price.Equal(d("60000")))
}

func TestOracleBridgeCrossRate(t *testing.T) {
	snapshot := PriceSnapshot{
		"XYZUSDT": d("2.0"),
		"EURUSDT": d("1.1"),
	}
	oracle := NewOracle(snapshot, "EUR", "USDT")

	price, ok := oracle.Price("XYZ")
	require.True(t, ok)

	expected := d("2.0").Div(d("1.1"))
	assert.True(t, price.Equal(expected), "got %s, want %s", price, expected)
}

func TestOracleMissingAssetLeg(t *testing.T) {
	snapshot := PriceSnapshot{
		"EURUSDT": d("1.1"),
	}
	oracle := NewOracle(snapshot, "EUR", "USDT")

	_, ok := oracle.Price("XYZ")
	assert.False(t, ok)
}

func TestOracleMissingReferenceLeg(t *testing.T) {
	snapshot := PriceSnapshot{
		"XYZUSDT": d("2.0"),
	}
	oracle := NewOracle(snapshot, "EUR", "USDT")

	_, ok := oracle.Price("XYZ")
	assert.False(t, ok)
}

func TestOracleZeroReferenceLegDisablesBridge(t *testing.T) {
	snapshot := PriceSnapshot{
		"XYZUSDT": d("2.0"),
		"EURUSDT": decimal.Zero,
	}
	oracle := NewOracle(snapshot, "EUR", "USDT")

	_, ok := oracle.Price("XYZ")
	assert.False(t, ok)
}

func TestOracleReferenceCurrencyIsUnit(t *testing.T) {
	oracle := NewOracle(PriceSnapshot{}, "EUR", "USDT")

	price, ok := oracle.Price("EUR")
	require.True(t, ok)
	assert.True(t, price.Equal(decimal.NewFromInt(1)))
}

func TestOracleSellSymbol(t *testing.T) {
	snapshot := PriceSnapshot{
		"BTCEUR":  d("60000"),
		"XYZUSDT": d("2.0"),
	}
	oracle := NewOracle(snapshot, "EUR", "USDT")

	sym, ok := oracle.SellSymbol("BTC")
	require.True(t, ok)
	assert.Equal(t, "BTCEUR", sym)

	sym, ok = oracle.SellSymbol("XYZ")
	require.True(t, ok)
	assert.Equal(t, "XYZUSDT", sym)

	_, ok = oracle.SellSymbol("ABC")
	assert.False(t, ok)
}
