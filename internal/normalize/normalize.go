package normalize

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/huynhduongtien171003/amis-demo/constants"
	"github.com/huynhduongtien171003/amis-demo/internal/entity"
)

// Magnitude suffixes the upstream model occasionally leaks through instead
// of resolving ("20tr" -> 20000000, "500k" -> 500000).
var magnitudeSuffixes = []struct {
	suffix string
	factor decimal.Decimal
}{
	{"triệu", decimal.New(1, 6)},
	{"trieu", decimal.New(1, 6)},
	{"tr", decimal.New(1, 6)},
	{"nghìn", decimal.New(1, 3)},
	{"nghin", decimal.New(1, 3)},
	{"k", decimal.New(1, 3)},
}

// CleanAmount coerces an arbitrary raw value into a decimal amount.
// Currency symbols and grouping separators are stripped; at most one decimal
// separator survives. The second return is false when nothing numeric
// remains, so the caller can fall back to the field default and record a
// warning. Never panics, never errors.
//
// Accepted inputs include "1.000.000đ", "500,000 VNĐ", "2.500.000,50",
// "20tr", "500k", json.Number and plain floats.
func CleanAmount(v any) (decimal.Decimal, bool) {
	switch t := v.(type) {
	case nil:
		return decimal.Zero, false
	case json.Number:
		if d, err := decimal.NewFromString(t.String()); err == nil {
			return d, true
		}
		return decimal.Zero, false
	case float64:
		return decimal.NewFromFloat(t), true
	case int:
		return decimal.NewFromInt(int64(t)), true
	case decimal.Decimal:
		return t, true
	case string:
		return cleanAmountString(t)
	default:
		return cleanAmountString(fmt.Sprintf("%v", t))
	}
}

func cleanAmountString(s string) (decimal.Decimal, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "null" {
		return decimal.Zero, false
	}

	factor := decimal.New(1, 0)
	for _, m := range magnitudeSuffixes {
		if strings.HasSuffix(s, m.suffix) {
			s = strings.TrimSpace(strings.TrimSuffix(s, m.suffix))
			factor = m.factor
			break
		}
	}

	neg := strings.HasPrefix(s, "-")

	// Keep digits and separators only; currency symbols and units go.
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' {
			b.WriteRune(r)
		}
	}
	clean := resolveSeparators(b.String())
	if clean == "" {
		return decimal.Zero, false
	}
	if neg {
		clean = "-" + clean
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, false
	}
	return d.Mul(factor), true
}

// resolveSeparators reduces mixed '.'/',' usage to a single decimal point.
// When both appear, the last separator is the decimal point and the rest are
// grouping ("2.500.000,50" -> "2500000.50"). A repeated separator is always
// grouping ("1.000.000" -> "1000000"). A lone separator followed by exactly
// three digits is grouping ("500,000" -> "500000", "15.000" -> "15000");
// otherwise it marks the fraction ("1,5" -> "1.5", "1234.56" -> "1234.56").
func resolveSeparators(s string) string {
	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")

	switch {
	case lastDot >= 0 && lastComma >= 0:
		sep := max(lastDot, lastComma)
		intPart := strings.NewReplacer(".", "", ",", "").Replace(s[:sep])
		return intPart + "." + s[sep+1:]
	case lastComma >= 0:
		if strings.Count(s, ",") > 1 || len(s)-lastComma-1 == 3 {
			return strings.ReplaceAll(s, ",", "")
		}
		return strings.Replace(s, ",", ".", 1)
	case lastDot >= 0:
		if strings.Count(s, ".") > 1 || len(s)-lastDot-1 == 3 {
			return strings.ReplaceAll(s, ".", "")
		}
		return s
	default:
		return s
	}
}

// CleanTaxCode keeps digits only. Values outside 10-13 digits are kept (they
// still have audit value) but reported via the warning return. Empty input
// yields nil.
func CleanTaxCode(v any) (*string, string) {
	raw := stringify(v)
	if raw == "" {
		return nil, ""
	}
	cleaned := digitsOnly(raw)
	if cleaned == "" {
		return nil, fmt.Sprintf("tax code %q contains no digits", raw)
	}
	if len(cleaned) < constants.TaxCodeMinDigits || len(cleaned) > constants.TaxCodeMaxDigits {
		return &cleaned, fmt.Sprintf("tax code %q has invalid length %d", raw, len(cleaned))
	}
	return &cleaned, ""
}

// CleanPhone keeps digits only. Values outside 10-11 digits are kept but
// reported via the warning return. Empty input yields nil.
func CleanPhone(v any) (*string, string) {
	raw := stringify(v)
	if raw == "" {
		return nil, ""
	}
	cleaned := digitsOnly(raw)
	if cleaned == "" {
		return nil, fmt.Sprintf("phone %q contains no digits", raw)
	}
	if len(cleaned) < constants.PhoneMinDigits || len(cleaned) > constants.PhoneMaxDigits {
		return &cleaned, fmt.Sprintf("phone %q has invalid length %d", raw, len(cleaned))
	}
	return &cleaned, ""
}

// CleanDate parses the single canonical YYYY-MM-DD layout. On failure the
// result is nil and a warning is returned; whether the caller substitutes
// "now" (invoice headers) or keeps the absence (order dates) is a schema
// decision, not the cleaner's.
func CleanDate(v any) (*entity.Date, string) {
	raw := stringify(v)
	if raw == "" {
		return nil, ""
	}
	d, err := entity.ParseDate(raw)
	if err != nil {
		return nil, fmt.Sprintf("date %q is not YYYY-MM-DD", raw)
	}
	return &d, ""
}

// CleanRateLabel passes percentage labels through as short strings. Rates
// are never numerically parsed here; rate arithmetic belongs to
// reconciliation.
func CleanRateLabel(v any, def string) string {
	s := stringify(v)
	if s == "" {
		return def
	}
	return s
}

// CleanString trims a free-text value; empty becomes "".
func CleanString(v any) string {
	return stringify(v)
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", t))
	}
}

func digitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
