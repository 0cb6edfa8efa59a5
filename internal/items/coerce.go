package items

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Numeric item fields arrive as free text (spreadsheet cells, form inputs).
// Coercion never fails: anything unparseable becomes zero, matching the
// documented zero-fill contract for imports and patches.

// CoerceDecimal parses free-form numeric text into a decimal, tolerating
// thousands separators and surrounding whitespace.
func CoerceDecimal(raw string) decimal.Decimal {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if cleaned == "" {
		return decimal.Zero
	}
	value, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	return value
}

// CoerceInt parses free-form integer text; fractional values truncate.
func CoerceInt(raw string) int {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if cleaned == "" {
		return 0
	}
	if value, err := strconv.Atoi(cleaned); err == nil {
		return value
	}
	if value, err := strconv.ParseFloat(cleaned, 64); err == nil {
		return int(value)
	}
	return 0
}
