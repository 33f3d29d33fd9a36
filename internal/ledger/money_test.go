package ledger

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"shared-wallet-backend/internal/domain"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in       string
		expected int64
	}{
		{"120.00", 12000},
		{"120", 12000},
		{"7.5", 750},
		{"0.01", 1},
		{" 60.00 ", 6000},
		{"-3.25", -325},
		{"92233720368547758.07", math.MaxInt64},
		{"-92233720368547758.08", math.MinInt64},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			cents, err := ParseAmount(tt.in)
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, cents)
		})
	}

	t.Run("Too many decimals", func(t *testing.T) {
		_, err := ParseAmount("1.005")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	for _, in := range []string{"92233720368547758.08", "184467440737095516.17", "-92233720368547758.09"} {
		t.Run("Out of range "+in, func(t *testing.T) {
			_, err := ParseAmount(in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}

	t.Run("Not a number", func(t *testing.T) {
		_, err := ParseAmount("ten")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "$60.00", FormatAmount(6000))
	assert.Equal(t, "$0.05", FormatAmount(5))
	assert.Equal(t, "-$12.34", FormatAmount(-1234))
	assert.Equal(t, "40.00", DecimalAmount(4000))
}
