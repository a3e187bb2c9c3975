package finance

import (
	"encoding/json"
	"math"
)

// Trend classifies a period-over-period change.
type Trend string

const (
	TrendGrowth    Trend = "growth"
	TrendDecline   Trend = "decline"
	TrendStable    Trend = "stable"
	TrendUnchanged Trend = "unchanged"
	TrendNew       Trend = "new"
)

// Trends lists every trend value.
var Trends = []Trend{TrendGrowth, TrendDecline, TrendStable, TrendUnchanged, TrendNew}

// trendThreshold is the percent change beyond which a metric counts as moving.
const trendThreshold = 5.0

// Polish returns the trend name used in reports and prompts.
func (t Trend) Polish() string {
	switch t {
	case TrendGrowth:
		return "wzrost"
	case TrendDecline:
		return "spadek"
	case TrendStable:
		return "stabilny"
	case TrendUnchanged:
		return "bez_zmian"
	case TrendNew:
		return "nowy"
	default:
		return "brak"
	}
}

// Comparison is the year-over-year change of one metric.
type Comparison struct {
	AbsoluteDelta float64
	// PercentDelta is +Inf when the prior value was zero and the current is not.
	PercentDelta float64
	Trend        Trend
}

// Compare computes the change from prior to current.
func Compare(current, prior float64) Comparison {
	if prior == 0 {
		if current == 0 {
			return Comparison{AbsoluteDelta: 0, PercentDelta: 0, Trend: TrendUnchanged}
		}
		return Comparison{AbsoluteDelta: current, PercentDelta: math.Inf(1), Trend: TrendNew}
	}

	delta := current - prior
	pct := round2(delta / math.Abs(prior) * 100)

	trend := TrendStable
	switch {
	case pct > trendThreshold:
		trend = TrendGrowth
	case pct < -trendThreshold:
		trend = TrendDecline
	}

	return Comparison{
		AbsoluteDelta: round2(delta),
		PercentDelta:  pct,
		Trend:         trend,
	}
}

// IsNew reports whether the percent change is undefined because the metric
// appeared from zero.
func (c Comparison) IsNew() bool {
	return math.IsInf(c.PercentDelta, 1)
}

// MarshalJSON writes an infinite percent change as null.
func (c Comparison) MarshalJSON() ([]byte, error) {
	var pct *float64
	if !math.IsInf(c.PercentDelta, 0) && !math.IsNaN(c.PercentDelta) {
		p := c.PercentDelta
		pct = &p
	}
	return json.Marshal(struct {
		AbsoluteDelta float64  `json:"absolute_delta"`
		PercentDelta  *float64 `json:"percent_delta"`
		Trend         Trend    `json:"trend"`
	}{c.AbsoluteDelta, pct, c.Trend})
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
