package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

var ratingTokens = map[string]float64{
	"ONE":   1,
	"TWO":   2,
	"THREE": 3,
	"FOUR":  4,
	"FIVE":  5,
}

// NormalizeRating converts a symbolic ("ONE".."FIVE", case-sensitive) or numeric rating into
// a number. Unrecognized input yields NaN; it never panics.
func NormalizeRating(v any) float64 {
	switch t := v.(type) {
	case int:
		return float64(t)
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	case float32:
		return float64(t)
	case float64:
		return t
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return math.NaN()
		}
		return f
	case json.RawMessage:
		return normalizeRaw(t)
	case string:
		if n, ok := ratingTokens[t]; ok {
			return n
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return math.NaN()
		}
		return f
	}
	return math.NaN()
}

func normalizeRaw(b json.RawMessage) float64 {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		return NormalizeRating(s)
	}
	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		return f
	}
	return math.NaN()
}

// ValidRating reports whether r is one of 1..5.
func ValidRating(r float64) bool {
	return !math.IsNaN(r) && r >= 1 && r <= 5 && r == math.Trunc(r)
}
