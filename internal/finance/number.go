package finance

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ParseNumber converts a raw numeric token from a disclosure table into a float.
// Thousands groups separated by whitespace are joined, "(123)" is negative and a
// lone comma is read as the decimal separator. Anything that cannot be parsed
// yields 0, same as a genuine zero.
func ParseNumber(raw string) float64 {
	v, _ := ParseNumberStrict(raw)
	return v
}

// ParseNumberStrict is ParseNumber that also reports whether the token parsed.
// ok is false for empty or placeholder tokens and for anything ParseFloat rejects.
func ParseNumberStrict(raw string) (value float64, ok bool) {
	if raw == "-" || strings.TrimSpace(raw) == "" {
		return 0, false
	}

	cleaned := strings.TrimSpace(raw)
	if strings.HasPrefix(cleaned, "(") && strings.HasSuffix(cleaned, ")") && len(cleaned) >= 2 {
		cleaned = "-" + cleaned[1:len(cleaned)-1]
	}

	if run := firstNumericRun(cleaned); run != "" {
		cleaned = strings.Map(func(r rune) rune {
			if unicode.IsSpace(r) {
				return -1
			}
			return r
		}, run)
		if strings.Contains(cleaned, ",") && !strings.Contains(cleaned, ".") {
			cleaned = strings.ReplaceAll(cleaned, ",", ".")
		}
	}

	cleaned = strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			return r
		}
		return -1
	}, cleaned)

	if cleaned == "" || cleaned == "-" || cleaned == "+" {
		return 0, false
	}

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	if v == 0 {
		// "-0" from "(0)"
		v = 0
	}
	return v, true
}

// firstNumericRun returns the first maximal run of digits, whitespace, commas,
// periods and minus signs.
func firstNumericRun(s string) string {
	start := -1
	for i, r := range s {
		if isNumericRune(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			return s[start:i]
		}
	}
	if start >= 0 {
		return s[start:]
	}
	return ""
}

func isNumericRune(r rune) bool {
	return (r >= '0' && r <= '9') || unicode.IsSpace(r) || r == ',' || r == '.' || r == '-'
}
