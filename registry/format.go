package registry

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// FormatUnits renders raw as a decimal string with the given number of decimals, trimming
// trailing zeros: FormatUnits(1500000, 6) == "1.5".
func FormatUnits(raw *big.Int, decimals uint8) string {
	return decimal.NewFromBigInt(raw, -int32(decimals)).String()
}

// ParseUnits is the inverse of FormatUnits. It fails when s carries more fractional
// digits than decimals allows.
func ParseUnits(s string, decimals uint8) (*big.Int, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("parse amount %q: %w", s, err)
	}

	shifted := d.Shift(int32(decimals))
	if !shifted.IsInteger() {
		return nil, fmt.Errorf("amount %q has more than %d decimals", s, decimals)
	}

	return shifted.BigInt(), nil
}
