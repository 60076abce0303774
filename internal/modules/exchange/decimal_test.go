package exchange

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestToDecimal(t *testing.T) {
	tests := []struct {
		name     string
		raw      *big.Int
		decimals int32
		expected string
	}{
		{"18 decimals", wei(5), 18, "5"},
		{"fractional", big.NewInt(1500000), 6, "1.5"},
		{"zero decimals passes through", big.NewInt(42), 0, "42"},
		{"one wei", big.NewInt(1), 18, "0.000000000000000001"},
		{"zero value", big.NewInt(0), 18, "0"},
		{"nil value", nil, 18, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := toDecimal(tt.raw, tt.decimals)
			require.True(t, got.Equal(decimal.RequireFromString(tt.expected)), got.String())
		})
	}
}

func TestSafeDiv(t *testing.T) {
	require.True(t, safeDiv(decimal.NewFromInt(10), decimal.NewFromInt(4)).Equal(decimal.RequireFromString("2.5")))
	require.True(t, safeDiv(decimal.NewFromInt(10), decimal.Zero).IsZero())
	require.True(t, safeDiv(decimal.Zero, decimal.NewFromInt(4)).IsZero())
}
