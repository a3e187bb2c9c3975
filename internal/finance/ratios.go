package finance

import (
	"fmt"
	"math"
)

// RatioKey names a derived financial ratio.
type RatioKey string

const (
	NetMargin       RatioKey = "rentownosc_netto"
	OperatingMargin RatioKey = "rentownosc_operacyjna"
	GrossMargin     RatioKey = "marza_brutto"
	CurrentRatio    RatioKey = "plynnosc_biezaca"
	DebtRatio       RatioKey = "wskaznik_zadluzenia"
	ReturnOnEquity  RatioKey = "roe"
	ReturnOnAssets  RatioKey = "roa"
	RevenueGrowth   RatioKey = "wzrost_przychodow"
	NetProfitGrowth RatioKey = "wzrost_zysku_netto"
	OperatingGrowth RatioKey = "wzrost_zysku_operacyjnego"
	AssetsGrowth    RatioKey = "wzrost_aktywow"
	EquityGrowth    RatioKey = "wzrost_kapitalu_wlasnego"
	NetMarginChange RatioKey = "zmiana_marzy_netto"
	RatioError      RatioKey = "error"
)

// Ratios maps ratio keys to their formatted values.
type Ratios map[RatioKey]string

// RatioOrder is the presentation order of ratios.
var RatioOrder = []RatioKey{
	NetMargin, OperatingMargin, GrossMargin, CurrentRatio, DebtRatio,
	ReturnOnEquity, ReturnOnAssets,
	RevenueGrowth, NetProfitGrowth, OperatingGrowth, AssetsGrowth, EquityGrowth,
	NetMarginChange, RatioError,
}

var ratioLabels = map[RatioKey]string{
	NetMargin:       "Rentowność netto",
	OperatingMargin: "Rentowność operacyjna",
	GrossMargin:     "Marża brutto",
	CurrentRatio:    "Płynność bieżąca",
	DebtRatio:       "Wskaźnik zadłużenia",
	ReturnOnEquity:  "ROE",
	ReturnOnAssets:  "ROA",
	RevenueGrowth:   "Wzrost przychodów (r/r)",
	NetProfitGrowth: "Wzrost zysku netto (r/r)",
	OperatingGrowth: "Wzrost zysku operacyjnego (r/r)",
	AssetsGrowth:    "Wzrost aktywów (r/r)",
	EquityGrowth:    "Wzrost kapitału własnego (r/r)",
	NetMarginChange: "Zmiana marży netto (r/r)",
	RatioError:      "Błąd",
}

// RatioLabel returns the display label of a ratio.
func RatioLabel(k RatioKey) string {
	if l, ok := ratioLabels[k]; ok {
		return l
	}
	return string(k)
}

// ratioRule computes one ratio. ok is false when an input is missing or a
// denominator is not usable.
type ratioRule struct {
	key     RatioKey
	format  string
	compute func(cur, prev PeriodValues) (v float64, ok bool)
}

var ratioRules = []ratioRule{
	{NetMargin, "%.2f%%", percentOf(NetProfit, Revenue)},
	{OperatingMargin, "%.2f%%", percentOf(OperatingProfit, Revenue)},
	{GrossMargin, "%.2f%%", percentOf(GrossProfitOnSales, Revenue)},
	{CurrentRatio, "%.2f", quotient(CurrentAssets, ShortTermLiabilities)},
	{DebtRatio, "%.2f%%", percentOf(TotalLiabilities, TotalAssets)},
	{ReturnOnEquity, "%.2f%%", percentOf(NetProfit, Equity)},
	{ReturnOnAssets, "%.2f%%", percentOf(NetProfit, TotalAssets)},
	{RevenueGrowth, "%+.2f%%", signedGrowth(Revenue)},
	{NetProfitGrowth, "%+.2f%%", signedGrowth(NetProfit)},
	{OperatingGrowth, "%+.2f%%", signedGrowth(OperatingProfit)},
	{AssetsGrowth, "%+.2f%%", growth(TotalAssets)},
	{EquityGrowth, "%+.2f%%", growth(Equity)},
	{NetMarginChange, "%+.2f p.p.", marginChange(NetProfit, Revenue)},
}

// ComputeRatios derives profitability, liquidity, leverage, return and growth
// ratios. Ratios whose inputs are unavailable are omitted. A failure inside a
// rule is reported under the "error" key and keeps the ratios computed so far.
func ComputeRatios(current, prior PeriodValues) Ratios {
	return computeRatios(current, prior, ratioRules)
}

func computeRatios(current, prior PeriodValues, rules []ratioRule) (out Ratios) {
	out = make(Ratios)
	defer func() {
		if r := recover(); r != nil {
			out[RatioError] = fmt.Sprintf("błąd obliczania wskaźników: %v", r)
		}
	}()

	for _, rule := range rules {
		v, ok := rule.compute(current, prior)
		if !ok || math.IsInf(v, 0) || math.IsNaN(v) {
			continue
		}
		out[rule.key] = fmt.Sprintf(rule.format, v)
	}
	return out
}

func quotient(num, den MetricKey) func(cur, prev PeriodValues) (float64, bool) {
	return func(cur, _ PeriodValues) (float64, bool) {
		return ratio(cur, num, den)
	}
}

func percentOf(num, den MetricKey) func(cur, prev PeriodValues) (float64, bool) {
	return func(cur, _ PeriodValues) (float64, bool) {
		v, ok := ratio(cur, num, den)
		return v * 100, ok
	}
}

// growth requires a positive prior value.
func growth(key MetricKey) func(cur, prev PeriodValues) (float64, bool) {
	return func(cur, prev PeriodValues) (float64, bool) {
		now, ok := cur[key]
		if !ok {
			return 0, false
		}
		before, ok := prev[key]
		if !ok || before <= 0 {
			return 0, false
		}
		return (now - before) / before * 100, true
	}
}

// signedGrowth divides by the absolute prior value, so a move from a loss to a
// profit reads as growth. A zero prior value yields nothing.
func signedGrowth(key MetricKey) func(cur, prev PeriodValues) (float64, bool) {
	return func(cur, prev PeriodValues) (float64, bool) {
		now, ok := cur[key]
		if !ok {
			return 0, false
		}
		before, ok := prev[key]
		if !ok || before == 0 {
			return 0, false
		}
		return (now - before) / math.Abs(before) * 100, true
	}
}

// marginChange is the change of num/den in percentage points between periods.
func marginChange(num, den MetricKey) func(cur, prev PeriodValues) (float64, bool) {
	return func(cur, prev PeriodValues) (float64, bool) {
		now, ok := ratio(cur, num, den)
		if !ok {
			return 0, false
		}
		before, ok := ratio(prev, num, den)
		if !ok {
			return 0, false
		}
		return (now - before) * 100, true
	}
}

func ratio(values PeriodValues, num, den MetricKey) (float64, bool) {
	n, ok := values[num]
	if !ok {
		return 0, false
	}
	d, ok := values[den]
	if !ok || d <= 0 {
		return 0, false
	}
	return n / d, true
}
