package report

import (
	"fmt"
	"math"
	"strings"

	"espiwatch/internal/finance"

	"github.com/dustin/go-humanize"
)

// NoData is printed in place of a table when nothing was extracted.
const NoData = "Brak danych do wyświetlenia"

var trendSymbols = map[finance.Trend]string{
	finance.TrendGrowth:    "📈",
	finance.TrendDecline:   "📉",
	finance.TrendStable:    "➡️",
	finance.TrendUnchanged: "⚫",
	finance.TrendNew:       "🆕",
}

// KeyMetrics are the metrics summarised in the highlight list, in display order.
var KeyMetrics = []finance.MetricKey{
	finance.Revenue,
	finance.OperatingProfit,
	finance.NetProfit,
	finance.TotalAssets,
	finance.Equity,
	finance.EarningsPerShare,
}

// TrendSymbol returns the display symbol of a trend.
func TrendSymbol(t finance.Trend) string {
	if s, ok := trendSymbols[t]; ok {
		return s
	}
	return "❓"
}

// FormatNumber groups values of at least 1000 by thousands with spaces and no
// decimals; smaller values keep two decimals.
func FormatNumber(v float64) string {
	if math.Abs(v) >= 1000 {
		return humanize.FormatFloat("# ###.", v)
	}
	return fmt.Sprintf("%.2f", v)
}

// formatDelta prints a change with an explicit sign, grouped by thousands and
// without decimals at any magnitude.
func formatDelta(v float64) string {
	sign := "+"
	if v < 0 {
		sign = "-"
	}
	return sign + humanize.FormatFloat("# ###.", math.Abs(v))
}

func formatPercent(c finance.Comparison, newLabel string) string {
	if c.IsNew() {
		return newLabel
	}
	return fmt.Sprintf("%+.1f%%", c.PercentDelta)
}

// Table renders the extraction result as an aligned text table with one row
// per extracted metric.
func Table(res *finance.Result) string {
	if res == nil || res.Empty() {
		return NoData
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-45s %-15s %-15s %-15s %-10s %s\n", "Pozycja", "Bieżący", "Poprzedni", "Zmiana", "%", "Trend"))
	sb.WriteString(strings.Repeat("=", 110))
	sb.WriteString("\n")

	for _, key := range res.Keys() {
		cur, ok := res.Current[key]
		if !ok {
			continue
		}
		prior, delta, pct, trend := "-", "-", "-", TrendSymbol("")+" brak"
		if v, ok := res.Prior[key]; ok {
			prior = FormatNumber(v)
		}
		if c, ok := res.Comparisons[key]; ok {
			delta = formatDelta(c.AbsoluteDelta)
			pct = formatPercent(c, "N/A")
			trend = TrendSymbol(c.Trend) + " " + c.Trend.Polish()
		}
		sb.WriteString(fmt.Sprintf("%-45s %-15s %-15s %-15s %-10s %s\n",
			finance.Label(key), FormatNumber(cur), prior, delta, pct, trend))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// Highlights lists the year-over-year change of the key metrics that have a
// comparison, one bullet per line.
func Highlights(res *finance.Result) string {
	if res == nil {
		return ""
	}
	var lines []string
	for _, key := range KeyMetrics {
		c, ok := res.Comparisons[key]
		if !ok {
			continue
		}
		lines = append(lines, fmt.Sprintf("• %s: %s %s", finance.Label(key), formatPercent(c, "nowa pozycja"), TrendSymbol(c.Trend)))
	}
	return strings.Join(lines, "\n")
}

// RatioLines lists the computed ratios in presentation order.
func RatioLines(ratios finance.Ratios) string {
	var lines []string
	for _, key := range finance.RatioOrder {
		if v, ok := ratios[key]; ok {
			lines = append(lines, fmt.Sprintf("• %s: %s", finance.RatioLabel(key), v))
		}
	}
	return strings.Join(lines, "\n")
}
