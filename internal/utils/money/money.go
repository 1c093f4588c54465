package money

import (
	"fmt"

	"github.com/finstream/records_backend/internal/apperrors"
	"github.com/shopspring/decimal"
)

// maxAbs is the smallest magnitude that no longer fits the stored NUMERIC(15,2)
// column: 13 integer digits plus 2 fractional digits.
var maxAbs = decimal.New(1, 13)

// Parse failure kinds, all wrapping apperrors.ErrInvalidValue.
var (
	ErrNotNumeric = fmt.Errorf("%w: not a valid number", apperrors.ErrInvalidValue)
	ErrTooPrecise = fmt.Errorf("%w: more than 2 decimal places", apperrors.ErrInvalidValue)
	ErrOutOfRange = fmt.Errorf("%w: out of supported range", apperrors.ErrInvalidValue)
)

// Parse converts a decimal string into an exact decimal value.
// It rejects non-numeric input, more than 2 fractional digits, and values that
// do not fit the supported range.
func Parse(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrNotNumeric, s)
	}
	// Exponent reflects the literal fractional digits as written, so "1.500"
	// is rejected even though it is representable at 2 places.
	if d.Exponent() < -2 {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrTooPrecise, s)
	}
	if d.Abs().GreaterThanOrEqual(maxAbs) {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrOutOfRange, s)
	}
	return d, nil
}

// Sum adds a sequence of values exactly.
func Sum(values []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// FormatAmount renders a stored record value with exactly 2 fractional digits,
// e.g. "100.50".
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// FormatTotal renders an aggregated total in trimmed form, e.g. "150" for
// 150.00 and "-25" for -25.00. Group totals have always rendered this way and
// clients depend on it.
func FormatTotal(d decimal.Decimal) string {
	return d.String()
}
