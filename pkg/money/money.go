package money

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Vendor feeds express monetary values inconsistently: native numbers, strings
// with regional separators, or nested objects exposing an "amount" or "value"
// key. Everything funnels through Normalize so the rest of the codebase only
// ever sees a finite decimal rounded to 2 places.

// nestedAmountKeys are the keys probed, in order, when a monetary value
// arrives as a nested object.
var nestedAmountKeys = []string{"amount", "value"}

// Round2 rounds a decimal to 2 places using half-up rounding.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Normalizer converts heterogeneous vendor values into 2-place decimals.
// Divisor transparently supports vendors that report minor-unit integers
// (e.g. cents): it is applied only when the incoming value is an integer
// whose absolute magnitude is at least the divisor, so already-decimal
// values are never corrupted.
type Normalizer struct {
	Divisor int64
}

// Default is a pass-through normalizer with no minor-unit divisor.
var Default = Normalizer{Divisor: 1}

// Normalize returns v as a finite decimal rounded to 2 places. Unparseable
// input normalizes to zero rather than failing: a single malformed entry in a
// vendor feed must never abort a whole batch. Already-normalized decimals
// pass through untouched, which keeps Normalize idempotent.
func (n Normalizer) Normalize(v interface{}) decimal.Decimal {
	return n.normalize(v, 0)
}

func (n Normalizer) normalize(v interface{}, depth int) decimal.Decimal {
	if depth > 3 {
		return decimal.Zero
	}

	switch val := v.(type) {
	case nil:
		return decimal.Zero
	case decimal.Decimal:
		return Round2(val)
	case *decimal.Decimal:
		if val == nil {
			return decimal.Zero
		}
		return Round2(*val)
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return decimal.Zero
		}
		return Round2(n.applyDivisor(decimal.NewFromFloat(val)))
	case float32:
		return n.normalize(float64(val), depth)
	case int:
		return Round2(n.applyDivisor(decimal.NewFromInt(int64(val))))
	case int64:
		return Round2(n.applyDivisor(decimal.NewFromInt(val)))
	case string:
		d, ok := parseDecimalString(val)
		if !ok {
			return decimal.Zero
		}
		return Round2(n.applyDivisor(d))
	case map[string]interface{}:
		for _, key := range nestedAmountKeys {
			if inner, exists := val[key]; exists && inner != nil {
				return n.normalize(inner, depth+1)
			}
		}
		return decimal.Zero
	default:
		return decimal.Zero
	}
}

// applyDivisor divides integer minor-unit magnitudes by the configured
// divisor. Non-integer values are left unchanged.
func (n Normalizer) applyDivisor(d decimal.Decimal) decimal.Decimal {
	if n.Divisor <= 1 {
		return d
	}
	divisor := decimal.NewFromInt(n.Divisor)
	if d.IsInteger() && d.Abs().GreaterThanOrEqual(divisor) {
		return d.Div(divisor)
	}
	return d
}

// Normalize converts v using the default (divisor-free) normalizer.
func Normalize(v interface{}) decimal.Decimal {
	return Default.Normalize(v)
}

// parseDecimalString parses a monetary string, tolerating thousands
// separators and decimal commas ("1,234.56", "1.234,56", "1234,56").
func parseDecimalString(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return decimal.Zero, false
	}

	hasComma := strings.Contains(s, ",")
	hasDot := strings.Contains(s, ".")

	switch {
	case hasComma && hasDot:
		// The rightmost separator is the decimal point; the other one
		// groups thousands.
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case hasComma:
		// A single comma followed by anything but a 3-digit group is a
		// decimal comma; everything else is thousands grouping.
		if strings.Count(s, ",") == 1 && len(s)-strings.Index(s, ",")-1 != 3 {
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case hasDot:
		// Multiple dots can only be thousands grouping.
		if strings.Count(s, ".") > 1 {
			s = strings.ReplaceAll(s, ".", "")
		}
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// ParsePercent extracts a percentage from a vendor value: a 0-1 fraction is
// scaled to 0-100, a 0-100 number passes through, and text with a trailing
// "%" is parsed. Returns nil unless the result lands strictly inside (0, 100).
func ParsePercent(v interface{}) *decimal.Decimal {
	var d decimal.Decimal
	explicit := false // a trailing "%" means the value is already a percent

	switch val := v.(type) {
	case nil:
		return nil
	case decimal.Decimal:
		d = val
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return nil
		}
		d = decimal.NewFromFloat(val)
	case float32:
		return ParsePercent(float64(val))
	case int:
		d = decimal.NewFromInt(int64(val))
	case int64:
		d = decimal.NewFromInt(val)
	case string:
		s := strings.TrimSpace(val)
		trimmed := strings.TrimSuffix(s, "%")
		explicit = trimmed != s
		parsed, ok := parseDecimalString(strings.TrimSpace(trimmed))
		if !ok {
			return nil
		}
		d = parsed
	default:
		return nil
	}

	one := decimal.NewFromInt(1)
	if !explicit && d.GreaterThan(decimal.Zero) && d.LessThan(one) {
		d = d.Mul(decimal.NewFromInt(100))
	}

	hundred := decimal.NewFromInt(100)
	if d.LessThanOrEqual(decimal.Zero) || d.GreaterThanOrEqual(hundred) {
		return nil
	}

	d = Round2(d)
	return &d
}
