package pgdb

import (
	"fmt"

	"github.com/holiman/uint256"
)

// Token amounts are unsigned 256-bit integers persisted as
// numeric(78,0). They travel to and from Postgres as decimal strings.

// AmountArg renders an amount for use as a ::numeric query argument.
func AmountArg(v *uint256.Int) string {
	if v == nil {
		return "0"
	}
	return v.Dec()
}

// ParseAmount converts a decimal string scanned from a numeric column.
func ParseAmount(s string) (*uint256.Int, error) {
	if s == "" {
		return uint256.NewInt(0), nil
	}
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return v, nil
}
