package analyst

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
)

const (
	MinScore = -5
	MaxScore = 5
)

// Verdict is the model's assessment of the likely price impact of a
// disclosure.
type Verdict struct {
	Score  int    `json:"ocena"`
	Reason string `json:"uzasadnienie"`

	// Raw is the unmodified model answer.
	Raw string `json:"-"`
	// OK is false when no score could be read from the answer.
	OK bool `json:"-"`
}

// String renders the verdict for a notification.
func (v Verdict) String() string {
	if !v.OK {
		return v.Reason
	}
	return fmt.Sprintf("Ocena: %+d\nUzasadnienie: %s", v.Score, v.Reason)
}

// ParseVerdict reads a verdict from a model answer. Code fences are stripped,
// malformed JSON is repaired and the score is clamped into the -5..5 range.
// Unreadable answers yield a verdict carrying the raw text as its reason.
func ParseVerdict(raw string) Verdict {
	fallback := Verdict{Reason: strings.TrimSpace(raw), Raw: raw}

	body := stripFences(raw)
	if start, end := strings.Index(body, "{"), strings.LastIndex(body, "}"); start != -1 && end > start {
		body = body[start : end+1]
	}
	if body == "" {
		return fallback
	}

	repaired, err := jsonrepair.RepairJSON(body)
	if err != nil {
		return fallback
	}

	var decoded struct {
		Score  any    `json:"ocena"`
		Reason string `json:"uzasadnienie"`
	}
	if err := json.Unmarshal([]byte(repaired), &decoded); err != nil {
		return fallback
	}

	score, ok := toScore(decoded.Score)
	if !ok {
		if decoded.Reason != "" {
			fallback.Reason = decoded.Reason
		}
		return fallback
	}
	return Verdict{
		Score:  score,
		Reason: strings.TrimSpace(decoded.Reason),
		Raw:    raw,
		OK:     true,
	}
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if nl := strings.Index(s, "\n"); nl != -1 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func toScore(v any) (int, bool) {
	var f float64
	switch s := v.(type) {
	case float64:
		f = s
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimPrefix(strings.TrimSpace(s), "+"), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int(math.Round(clamp(f))), true
}

// clamp bounds the score before it is converted to int.
func clamp(score float64) float64 {
	return math.Max(MinScore, math.Min(MaxScore, score))
}
