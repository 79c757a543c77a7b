package pricing

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// NormalizePrice turns a price as found in a JSON document or a web page
// into a decimal. Strings may use the Argentine format ("1.234,56"), carry a
// currency symbol, or be one of the placeholders brokers print for an empty
// quote ("-", "./."). ok is false for anything that is not a positive number.
func NormalizePrice(v any) (decimal.Decimal, bool) {
	var d decimal.Decimal
	switch val := v.(type) {
	case decimal.Decimal:
		d = val
	case float64:
		d = decimal.NewFromFloat(val)
	case float32:
		d = decimal.NewFromFloat32(val)
	case int:
		d = decimal.NewFromInt(int64(val))
	case int64:
		d = decimal.NewFromInt(val)
	case json.Number:
		parsed, err := decimal.NewFromString(val.String())
		if err != nil {
			return decimal.Zero, false
		}
		d = parsed
	case string:
		parsed, ok := parseNumber(val)
		if !ok {
			return decimal.Zero, false
		}
		d = parsed
	default:
		return decimal.Zero, false
	}
	if !d.IsPositive() {
		return decimal.Zero, false
	}
	return d, true
}

func parseNumber(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "US$")
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "\u00a0", "")
	switch s {
	case "", "-", "./.", "N/A":
		return decimal.Zero, false
	}

	switch {
	case strings.Contains(s, ","):
		// 1.234,56
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	case strings.Count(s, ".") > 1:
		// 1.234.567
		s = strings.ReplaceAll(s, ".", "")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
