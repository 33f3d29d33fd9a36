// Package ledger holds the accounting rules of a shared wallet: split policies,
// the member/expense/settlement mutations and the debt resolver that derives
// member balances after every change. Amounts are int64 minor units (cents).
package ledger

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"shared-wallet-backend/internal/domain"
)

// ParseAmount converts a major-unit decimal string ("120.00", "7.5") into cents.
// More than two fractional digits is rejected rather than rounded.
func ParseAmount(s string) (int64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: amount %q is not a number", domain.ErrInvalidInput, s)
	}
	cents := d.Shift(2)
	if !cents.IsInteger() {
		return 0, fmt.Errorf("%w: amount %q has more than two decimal places", domain.ErrInvalidInput, s)
	}
	if cents.GreaterThan(maxCents) || cents.LessThan(minCents) {
		return 0, fmt.Errorf("%w: amount %q is out of range", domain.ErrInvalidInput, s)
	}
	return cents.IntPart(), nil
}

var (
	maxCents = decimal.NewFromInt(math.MaxInt64)
	minCents = decimal.NewFromInt(math.MinInt64)
)

// ParseFraction parses a percentage share given as a 0-1 fraction ("0.25").
func ParseFraction(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: fraction %q is not a number", domain.ErrInvalidInput, s)
	}
	return d, nil
}

// FormatAmount renders cents as a dollar string, e.g. 6000 -> "$60.00".
func FormatAmount(cents int64) string {
	if cents < 0 {
		return "-$" + decimal.New(-cents, -2).StringFixed(2)
	}
	return "$" + decimal.New(cents, -2).StringFixed(2)
}

// DecimalAmount renders cents as a plain major-unit string, e.g. 6000 -> "60.00".
func DecimalAmount(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}
