package money_test

import (
	"testing"

	"github.com/finstream/records_backend/internal/apperrors"
	"github.com/finstream/records_backend/internal/utils/money"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Valid(t *testing.T) {
	testCases := []struct {
		input string
		want  string
	}{
		{"100.50", "100.50"},
		{"0", "0.00"},
		{"-25.00", "-25.00"},
		{"1000", "1000.00"},
		{"0.1", "0.10"},
		{"-0.01", "-0.01"},
		{"9999999999999.99", "9999999999999.99"},
	}

	for _, tc := range testCases {
		d, err := money.Parse(tc.input)
		require.NoError(t, err, "input %q", tc.input)
		assert.Equal(t, tc.want, money.FormatAmount(d), "input %q", tc.input)
	}
}

func TestParse_Invalid(t *testing.T) {
	testCases := []struct {
		input   string
		wantErr error
	}{
		{"abc", money.ErrNotNumeric},
		{"", money.ErrNotNumeric},
		{"10.123", money.ErrTooPrecise},
		{"0.001", money.ErrTooPrecise},
		{"1.500", money.ErrTooPrecise}, // literal precision, even though representable
		{"10000000000000.00", money.ErrOutOfRange},
		{"-10000000000000.00", money.ErrOutOfRange},
	}

	for _, tc := range testCases {
		_, err := money.Parse(tc.input)
		require.Error(t, err, "input %q", tc.input)
		assert.ErrorIs(t, err, tc.wantErr, "input %q", tc.input)
		assert.ErrorIs(t, err, apperrors.ErrInvalidValue, "input %q", tc.input)
	}
}

func TestSum_Exact(t *testing.T) {
	values := []decimal.Decimal{}
	for _, s := range []string{"100.50", "49.50", "-25.00"} {
		d, err := money.Parse(s)
		require.NoError(t, err)
		values = append(values, d)
	}

	total := money.Sum(values)
	assert.Equal(t, "125.00", money.FormatAmount(total))

	// 0.1-style inputs must never drift the way binary floats do.
	cents := []decimal.Decimal{}
	for i := 0; i < 1000; i++ {
		d, err := money.Parse("0.10")
		require.NoError(t, err)
		cents = append(cents, d)
	}
	assert.Equal(t, "100.00", money.FormatAmount(money.Sum(cents)))
}

func TestSum_Empty(t *testing.T) {
	assert.Equal(t, "0.00", money.FormatAmount(money.Sum(nil)))
}

func TestFormatTotal_TrimsTrailingZeros(t *testing.T) {
	testCases := []struct {
		inputs []string
		want   string
	}{
		{[]string{"100.00", "50.00"}, "150"},
		{[]string{"-25.00"}, "-25"},
		{[]string{"100.50"}, "100.5"},
		{[]string{"100.55", "0.01"}, "100.56"},
	}

	for _, tc := range testCases {
		values := []decimal.Decimal{}
		for _, s := range tc.inputs {
			d, err := money.Parse(s)
			require.NoError(t, err)
			values = append(values, d)
		}
		assert.Equal(t, tc.want, money.FormatTotal(money.Sum(values)), "inputs %v", tc.inputs)
	}
}
