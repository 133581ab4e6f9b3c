package monitor

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"pumpwatch/internal/domain/portfolio"
	"pumpwatch/internal/liquidation"
)

// FormatValuation renders the per-asset breakdown plus the total, one
// asset per line in balance-snapshot order.
func FormatValuation(v portfolio.Valuation, reference string) string {
	var sb strings.Builder

	for _, e := range v.Entries {
		fmt.Fprintf(&sb, "%s: %s ≈ %s %s\n",
			e.Asset, e.Quantity.StringFixed(6), money(e.Value), reference)
	}
	if len(v.Unpriced) > 0 {
		fmt.Fprintf(&sb, "unpriced (excluded): %s\n", strings.Join(v.Unpriced, ", "))
	}
	fmt.Fprintf(&sb, "\nTOTAL: %s %s", money(v.Total), reference)

	return sb.String()
}

// FormatAlert renders the alert-threshold notification.
func FormatAlert(v portfolio.Valuation, reference string, alert decimal.Decimal) string {
	return fmt.Sprintf("Alert threshold reached: %s %s >= %s %s\n\n%s",
		money(v.Total), reference, money(alert), reference,
		FormatValuation(v, reference))
}

// FormatPreLiquidation renders the notification sent before the engine runs.
func FormatPreLiquidation(v portfolio.Valuation, reference string, liquidate decimal.Decimal) string {
	return fmt.Sprintf("Liquidation threshold reached: %s %s >= %s %s\nCancelling orders and selling holdings.\n\n%s",
		money(v.Total), reference, money(liquidate), reference,
		FormatValuation(v, reference))
}

// FormatLiquidationResult renders the engine report, including explicit
// per-asset failure lines so liquidation failures are never silent.
func FormatLiquidationResult(r *liquidation.Result) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Liquidation finished: %d orders cancelled, %d assets sold, %d failed",
		r.OrdersCancelled, r.AssetsSold, r.AssetsFailed)
	if len(r.Lines) > 0 {
		sb.WriteString("\n\n")
		sb.WriteString(strings.Join(r.Lines, "\n"))
	}

	return sb.String()
}

// FormatPostLiquidation renders the valuation taken after the sell pass.
func FormatPostLiquidation(v portfolio.Valuation, reference string) string {
	return "Post-liquidation valuation:\n\n" + FormatValuation(v, reference)
}

func money(d decimal.Decimal) string {
	return humanize.CommafWithDigits(d.InexactFloat64(), 2)
}
