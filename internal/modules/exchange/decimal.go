package exchange

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// toDecimal converts a raw integer token amount to its decimal value
// using the token's decimals. A token with 0 decimals passes through
// unscaled.
func toDecimal(raw *big.Int, decimals int32) decimal.Decimal {
	if raw == nil {
		return decimal.Zero
	}
	if decimals == 0 {
		return decimal.NewFromBigInt(raw, 0)
	}
	return decimal.NewFromBigInt(raw, -decimals)
}

// safeDiv returns n/d, or zero when the divisor is zero. Spot prices on
// an empty pool side are reported as zero rather than an error.
func safeDiv(n, d decimal.Decimal) decimal.Decimal {
	if d.IsZero() {
		return decimal.Zero
	}
	return n.Div(d)
}
