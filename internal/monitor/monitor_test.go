package monitor

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pumpwatch/internal/adapters/exchanges"
	"pumpwatch/internal/domain/portfolio"
	"pumpwatch/internal/liquidation"
	"pumpwatch/pkg/errors"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type mockExchange struct {
	balances    []portfolio.AssetBalance
	balancesErr error
	snapshot    portfolio.PriceSnapshot
	snapshotErr error
	openOrders  []exchanges.OpenOrder
	rules       map[string]*portfolio.TradingRule

	cancelled []string
	sold      []string
}

func (m *mockExchange) Name() string { return "mock" }

func (m *mockExchange) GetPriceSnapshot(ctx context.Context) (portfolio.PriceSnapshot, error) {
	if m.snapshotErr != nil {
		return nil, m.snapshotErr
	}
	return m.snapshot, nil
}

func (m *mockExchange) GetTradingRule(ctx context.Context, symbol string) (*portfolio.TradingRule, error) {
	rule, ok := m.rules[symbol]
	if !ok {
		return nil, exchanges.ErrSymbolNotFound
	}
	return rule, nil
}

func (m *mockExchange) GetBalances(ctx context.Context) ([]portfolio.AssetBalance, error) {
	if m.balancesErr != nil {
		return nil, m.balancesErr
	}
	return m.balances, nil
}

func (m *mockExchange) GetOpenOrders(ctx context.Context) ([]exchanges.OpenOrder, error) {
	return m.openOrders, nil
}

func (m *mockExchange) CancelOrder(ctx context.Context, symbol, orderID string) error {
	m.cancelled = append(m.cancelled, orderID)
	return nil
}

func (m *mockExchange) MarketSell(ctx context.Context, symbol string, quantity decimal.Decimal) error {
	m.sold = append(m.sold, symbol)
	return nil
}

type mockNotifier struct {
	messages []string
	sendErr  error
}

func (m *mockNotifier) Send(ctx context.Context, text string) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.messages = append(m.messages, text)
	return nil
}

func newTestMonitor(ex *mockExchange, notifier *mockNotifier, alert, liquidate string) *Monitor {
	engine := liquidation.NewEngine(ex, liquidation.Config{
		Reference: "EUR",
		Bridge:    "USDT",
		Preserved: map[string]bool{"EUR": true, "USDT": true},
	})
	return New(ex, engine, notifier, Config{
		Reference:          "EUR",
		Bridge:             "USDT",
		AlertThreshold:     d(alert),
		LiquidateThreshold: d(liquidate),
	})
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name  string
		total string
		want  State
	}{
		{"well below alert", "100", StateIdle},
		{"just below alert", "499.99", StateIdle},
		{"exactly alert", "500", StateAlerting},
		{"between thresholds", "750", StateAlerting},
		{"just below liquidate", "999.99", StateAlerting},
		{"exactly liquidate", "1000", StateLiquidating},
		{"above liquidate", "5000", StateLiquidating},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(d(tc.total), d("500"), d("1000"))
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestRunCycleIdleSendsNothing(t *testing.T) {
	ex := &mockExchange{
		balances: []portfolio.AssetBalance{{Asset: "EUR", Free: d("100")}},
		snapshot: portfolio.PriceSnapshot{},
	}
	notifier := &mockNotifier{}
	mon := newTestMonitor(ex, notifier, "500", "1000")

	err := mon.RunCycle(context.Background())

	require.NoError(t, err)
	assert.Empty(t, notifier.messages)
}

func TestRunCycleAlertingSendsOneMessage(t *testing.T) {
	ex := &mockExchange{
		balances: []portfolio.AssetBalance{{Asset: "EUR", Free: d("600")}},
		snapshot: portfolio.PriceSnapshot{},
	}
	notifier := &mockNotifier{}
	mon := newTestMonitor(ex, notifier, "500", "1000")

	err := mon.RunCycle(context.Background())

	require.NoError(t, err)
	require.Len(t, notifier.messages, 1)
	assert.Contains(t, notifier.messages[0], "Alert threshold reached")
	assert.Contains(t, notifier.messages[0], "TOTAL: 600 EUR")
}

func TestRunCycleLiquidatingSendsThreeMessages(t *testing.T) {
	ex := &mockExchange{
		balances: []portfolio.AssetBalance{
			{Asset: "BTC", Free: d("0.05")},
			{Asset: "EUR", Free: d("100")},
		},
		snapshot: portfolio.PriceSnapshot{"BTCEUR": d("60000")},
		openOrders: []exchanges.OpenOrder{
			{Symbol: "BTCEUR", OrderID: "7"},
		},
		rules: map[string]*portfolio.TradingRule{
			"BTCEUR": {Symbol: "BTCEUR", StepSize: d("0.00001"), MinQty: d("0.00001"), MinNotional: d("10")},
		},
	}
	notifier := &mockNotifier{}
	mon := newTestMonitor(ex, notifier, "500", "1000")

	err := mon.RunCycle(context.Background())

	require.NoError(t, err)
	require.Len(t, notifier.messages, 3)
	assert.Contains(t, notifier.messages[0], "Liquidation threshold reached")
	assert.Contains(t, notifier.messages[1], "1 orders cancelled, 1 assets sold, 0 failed")
	assert.Contains(t, notifier.messages[2], "Post-liquidation valuation")

	assert.Equal(t, []string{"7"}, ex.cancelled)
	assert.Equal(t, []string{"BTCEUR"}, ex.sold)
}

func TestRunCycleBalanceFetchFatal(t *testing.T) {
	ex := &mockExchange{balancesErr: errors.New("binance unreachable")}
	notifier := &mockNotifier{}
	mon := newTestMonitor(ex, notifier, "500", "1000")

	err := mon.RunCycle(context.Background())

	require.Error(t, err)
	require.Len(t, notifier.messages, 1)
	assert.Contains(t, notifier.messages[0], "Cycle failed")
	assert.Empty(t, ex.cancelled)
	assert.Empty(t, ex.sold)
}

func TestRunCycleSnapshotFetchFatal(t *testing.T) {
	ex := &mockExchange{
		balances:    []portfolio.AssetBalance{{Asset: "EUR", Free: d("2000")}},
		snapshotErr: errors.New("rate limited"),
	}
	notifier := &mockNotifier{}
	mon := newTestMonitor(ex, notifier, "500", "1000")

	err := mon.RunCycle(context.Background())

	require.Error(t, err)
	assert.Empty(t, ex.sold)
}

func TestRunCycleNotifierFailureDoesNotFailCycle(t *testing.T) {
	ex := &mockExchange{
		balances: []portfolio.AssetBalance{{Asset: "EUR", Free: d("600")}},
		snapshot: portfolio.PriceSnapshot{},
	}
	notifier := &mockNotifier{sendErr: errors.New("telegram down")}
	mon := newTestMonitor(ex, notifier, "500", "1000")

	err := mon.RunCycle(context.Background())

	assert.NoError(t, err)
}

func TestRunCycleReclassifiesEveryCycle(t *testing.T) {
	// No hysteresis: an alerting total re-triggers on every run.
	ex := &mockExchange{
		balances: []portfolio.AssetBalance{{Asset: "EUR", Free: d("600")}},
		snapshot: portfolio.PriceSnapshot{},
	}
	notifier := &mockNotifier{}
	mon := newTestMonitor(ex, notifier, "500", "1000")

	require.NoError(t, mon.RunCycle(context.Background()))
	require.NoError(t, mon.RunCycle(context.Background()))

	assert.Len(t, notifier.messages, 2)
}

func TestFormatValuationBreakdown(t *testing.T) {
	v := portfolio.Valuation{
		Entries: []portfolio.ValuationEntry{
			{Asset: "BTC", Quantity: d("0.01"), UnitPrice: d("60000"), Value: d("600")},
			{Asset: "EUR", Quantity: d("100"), UnitPrice: d("1"), Value: d("100")},
		},
		Unpriced: []string{"WEIRD"},
		Total:    d("700"),
	}

	out := FormatValuation(v, "EUR")

	assert.Contains(t, out, "BTC: 0.010000 ≈ 600 EUR")
	assert.Contains(t, out, "EUR: 100.000000 ≈ 100 EUR")
	assert.Contains(t, out, "unpriced (excluded): WEIRD")
	assert.True(t, strings.HasSuffix(out, "TOTAL: 700 EUR"), "got %q", out)
}

func TestFormatLiquidationResultIncludesLines(t *testing.T) {
	res := &liquidation.Result{
		OrdersCancelled: 2,
		AssetsSold:      1,
		AssetsFailed:    1,
		Lines: []string{
			"cancelled order 1 on BTCEUR",
			"AAA: sell failed: insufficient balance",
		},
	}

	out := FormatLiquidationResult(res)

	assert.Contains(t, out, "2 orders cancelled, 1 assets sold, 1 failed")
	assert.Contains(t, out, "AAA: sell failed: insufficient balance")
}
