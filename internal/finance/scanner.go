package finance

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// lookaheadLines is how many non-blank lines after a label are examined.
	lookaheadLines = 4
	// maxValues stops the lookahead: local currency current/prior, then EUR current/prior.
	maxValues = 4
)

// PeriodValues maps metric keys to the value reported for one period. A missing
// key means the metric was not extracted.
type PeriodValues map[MetricKey]float64

// Trace is the ordered diagnostic log of one extraction pass.
type Trace []string

// Result is the outcome of one extraction pass over a disclosure text block.
// It is built once and not modified afterwards.
type Result struct {
	Current     PeriodValues             `json:"current"`
	Prior       PeriodValues             `json:"prior"`
	Comparisons map[MetricKey]Comparison `json:"comparisons"`
	Trace       Trace                    `json:"trace"`

	order []MetricKey
}

// Keys returns the extracted metric keys in the order they were first stored.
func (r *Result) Keys() []MetricKey {
	out := make([]MetricKey, len(r.order))
	copy(out, r.order)
	return out
}

// Empty reports whether nothing was extracted.
func (r *Result) Empty() bool {
	return len(r.Current) == 0
}

// Extract runs the scanner over text and compares the two periods for every
// metric found in both.
func Extract(text string) *Result {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	s := scan(lines)

	res := &Result{
		Current:     s.current,
		Prior:       s.prior,
		Comparisons: make(map[MetricKey]Comparison, len(s.current)),
		Trace:       s.trace,
		order:       s.order,
	}
	for _, key := range s.order {
		cur, okCur := s.current[key]
		prev, okPrev := s.prior[key]
		if okCur && okPrev {
			res.Comparisons[key] = Compare(cur, prev)
		}
	}
	return res
}

// Scan walks lines and collects the current and prior value of every
// recognised line item.
func Scan(lines []string) (current, prior PeriodValues, trace Trace) {
	s := scan(lines)
	return s.current, s.prior, s.trace
}

type scanState struct {
	current PeriodValues
	prior   PeriodValues
	trace   Trace
	order   []MetricKey
}

func scan(lines []string) scanState {
	s := scanState{
		current: make(PeriodValues),
		prior:   make(PeriodValues),
	}

	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		key, ok := Lookup(line)
		if !ok {
			continue
		}
		s.tracef("matched %q -> %s", line, key)

		values := s.collectValues(lines, i+1)
		if len(values) < 2 {
			s.tracef("skipped %s: only %d value(s) found", key, len(values))
			continue
		}
		s.store(key, values[0], values[1])
	}
	return s
}

// collectValues reads the lookahead window starting at from.
func (s *scanState) collectValues(lines []string, from int) []float64 {
	var values []float64
	examined := 0
	for j := from; j < len(lines) && examined < lookaheadLines; j++ {
		next := strings.TrimSpace(lines[j])
		if next == "" {
			continue
		}
		examined++

		if isNoise(next) {
			continue
		}
		if _, isLabel := Lookup(next); isLabel {
			break
		}

		v := ParseNumber(next)
		if v != 0 || isZeroToken(next) {
			values = append(values, v)
			s.tracef("  value %q -> %s", next, formatTraceValue(v))
		}
		if len(values) >= maxValues {
			break
		}
	}
	return values
}

func (s *scanState) store(key MetricKey, current, prior float64) {
	if _, seen := s.current[key]; !seen {
		s.order = append(s.order, key)
	}
	s.current[key] = current
	s.prior[key] = prior

	cmp := Compare(current, prior)
	pct := "inf"
	if !cmp.IsNew() {
		pct = formatTraceValue(cmp.PercentDelta)
	}
	s.tracef("stored %s: current=%s, prior=%s, change=%s%% (%s)",
		key, formatTraceValue(current), formatTraceValue(prior), pct, cmp.Trend)
}

func (s *scanState) tracef(format string, args ...any) {
	s.trace = append(s.trace, fmt.Sprintf(format, args...))
}

func formatTraceValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
