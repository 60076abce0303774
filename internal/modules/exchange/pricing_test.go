package exchange

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/zilstream/exchange-subgraph/internal/entity"
)

func seedReferencePair(t *testing.T, store entity.Store, id string, nativeReserve, stableReserve decimal.Decimal, nativeIsToken0 bool) {
	t.Helper()
	pair := &entity.Pair{ID: id}
	if nativeIsToken0 {
		pair.Reserve0 = nativeReserve
		pair.Reserve1 = stableReserve
		pair.Token0Price = safeDiv(nativeReserve, stableReserve)
		pair.Token1Price = safeDiv(stableReserve, nativeReserve)
	} else {
		pair.Reserve0 = stableReserve
		pair.Reserve1 = nativeReserve
		pair.Token0Price = safeDiv(stableReserve, nativeReserve)
		pair.Token1Price = safeDiv(nativeReserve, stableReserve)
	}
	require.NoError(t, store.SavePair(context.Background(), pair))
}

func TestBNBPriceWeightedAverage(t *testing.T) {
	store := entity.NewMemoryStore()
	oracle := NewPriceOracle(testOracleConfig())
	ctx := context.Background()

	// BUSD pool prices BNB at $300 with 30 BNB depth, USDT pool at $310
	// with 10 BNB depth: weighted 300*0.75 + 310*0.25 = 302.5.
	seedReferencePair(t, store, hexAddr(testBusdPair), decimal.NewFromInt(30), decimal.NewFromInt(9000), true)
	seedReferencePair(t, store, hexAddr(testUsdtPair), decimal.NewFromInt(10), decimal.NewFromInt(3100), false)

	price, err := oracle.BNBPriceUSD(ctx, store)
	require.NoError(t, err)
	require.True(t, price.Equal(decimal.RequireFromString("302.5")), price.String())
}

func TestBNBPriceSingleReferencePair(t *testing.T) {
	store := entity.NewMemoryStore()
	oracle := NewPriceOracle(testOracleConfig())
	ctx := context.Background()

	seedReferencePair(t, store, hexAddr(testBusdPair), decimal.NewFromInt(5), decimal.NewFromInt(1500), true)

	price, err := oracle.BNBPriceUSD(ctx, store)
	require.NoError(t, err)
	require.True(t, price.Equal(decimal.NewFromInt(300)), price.String())
}

func TestBNBPriceNoReferencePairs(t *testing.T) {
	store := entity.NewMemoryStore()
	oracle := NewPriceOracle(testOracleConfig())

	price, err := oracle.BNBPriceUSD(context.Background(), store)
	require.NoError(t, err)
	require.True(t, price.IsZero())
}

func TestBNBPriceZeroDepthGuard(t *testing.T) {
	store := entity.NewMemoryStore()
	oracle := NewPriceOracle(testOracleConfig())

	seedReferencePair(t, store, hexAddr(testBusdPair), decimal.Zero, decimal.Zero, true)
	seedReferencePair(t, store, hexAddr(testUsdtPair), decimal.Zero, decimal.Zero, false)

	price, err := oracle.BNBPriceUSD(context.Background(), store)
	require.NoError(t, err)
	require.True(t, price.IsZero())
}

func TestFindBNBPerTokenWrappedNative(t *testing.T) {
	store := entity.NewMemoryStore()
	oracle := NewPriceOracle(testOracleConfig())

	price, err := oracle.FindBNBPerToken(context.Background(), store, &entity.Token{ID: hexAddr(testWBNB)})
	require.NoError(t, err)
	require.True(t, price.Equal(decimal.NewFromInt(1)))
}

func TestFindBNBPerTokenSingleHop(t *testing.T) {
	store := entity.NewMemoryStore()
	oracle := NewPriceOracle(testOracleConfig())
	ctx := context.Background()

	cake := &entity.Token{ID: hexAddr(testCake)}
	busd := &entity.Token{ID: hexAddr(testBUSD), DerivedBNB: decimal.RequireFromString("0.004")}
	require.NoError(t, store.SaveToken(ctx, busd))

	pair := &entity.Pair{
		ID:          hexAddr(testCakePair),
		Token0:      busd.ID,
		Token1:      cake.ID,
		Token0Price: decimal.NewFromInt(10),
		Token1Price: decimal.RequireFromString("0.1"),
		ReserveBNB:  decimal.NewFromInt(5),
	}
	require.NoError(t, store.SavePair(ctx, pair))
	require.NoError(t, store.SavePairLookup(ctx, &entity.PairLookup{
		ID:   entity.PairLookupID(cake.ID, busd.ID),
		Pair: pair.ID,
	}))

	price, err := oracle.FindBNBPerToken(ctx, store, cake)
	require.NoError(t, err)
	// cake is token1: token0Price x busd's derived price.
	require.True(t, price.Equal(decimal.RequireFromString("0.04")), price.String())
}

func TestFindBNBPerTokenSkipsShallowPools(t *testing.T) {
	store := entity.NewMemoryStore()
	oracle := NewPriceOracle(testOracleConfig())
	ctx := context.Background()

	cake := &entity.Token{ID: hexAddr(testCake)}
	busd := &entity.Token{ID: hexAddr(testBUSD), DerivedBNB: decimal.RequireFromString("0.004")}
	require.NoError(t, store.SaveToken(ctx, busd))

	// Depth exactly at the threshold does not qualify.
	pair := &entity.Pair{
		ID:          hexAddr(testCakePair),
		Token0:      busd.ID,
		Token1:      cake.ID,
		Token0Price: decimal.NewFromInt(10),
		ReserveBNB:  decimal.NewFromInt(2),
	}
	require.NoError(t, store.SavePair(ctx, pair))
	require.NoError(t, store.SavePairLookup(ctx, &entity.PairLookup{
		ID:   entity.PairLookupID(cake.ID, busd.ID),
		Pair: pair.ID,
	}))

	price, err := oracle.FindBNBPerToken(ctx, store, cake)
	require.NoError(t, err)
	require.True(t, price.IsZero())
}

func TestFindBNBPerTokenNoRoute(t *testing.T) {
	store := entity.NewMemoryStore()
	oracle := NewPriceOracle(testOracleConfig())

	price, err := oracle.FindBNBPerToken(context.Background(), store, &entity.Token{ID: hexAddr(testCake)})
	require.NoError(t, err)
	require.True(t, price.IsZero())
}

func TestTrackedVolumeUSD(t *testing.T) {
	oracle := NewPriceOracle(testOracleConfig())

	bnbPrice := decimal.NewFromInt(1)
	amount0 := decimal.NewFromInt(10)
	amount1 := decimal.NewFromInt(5)

	busd := &entity.Token{ID: hexAddr(testBUSD), DerivedBNB: decimal.NewFromInt(2)}
	usdt := &entity.Token{ID: hexAddr(testUSDT), DerivedBNB: decimal.NewFromInt(3)}
	cake := &entity.Token{ID: hexAddr(testCake), DerivedBNB: decimal.NewFromInt(3)}
	other := &entity.Token{ID: "0x5555555555555555555555555555555555555555", DerivedBNB: decimal.NewFromInt(2)}

	tests := []struct {
		name     string
		token0   *entity.Token
		token1   *entity.Token
		expected string
	}{
		{"both whitelisted averages the legs", busd, usdt, "17.5"},
		{"only token0 whitelisted", busd, cake, "20"},
		{"only token1 whitelisted", other, usdt, "15"},
		{"neither whitelisted", other, cake, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := oracle.TrackedVolumeUSD(bnbPrice, amount0, tt.token0, amount1, tt.token1)
			require.True(t, got.Equal(decimal.RequireFromString(tt.expected)), got.String())
		})
	}
}

func TestTrackedLiquidityUSD(t *testing.T) {
	oracle := NewPriceOracle(testOracleConfig())

	bnbPrice := decimal.NewFromInt(1)
	amount0 := decimal.NewFromInt(10)
	amount1 := decimal.NewFromInt(5)

	busd := &entity.Token{ID: hexAddr(testBUSD), DerivedBNB: decimal.NewFromInt(2)}
	usdt := &entity.Token{ID: hexAddr(testUSDT), DerivedBNB: decimal.NewFromInt(3)}
	cake := &entity.Token{ID: hexAddr(testCake), DerivedBNB: decimal.NewFromInt(3)}
	other := &entity.Token{ID: "0x5555555555555555555555555555555555555555", DerivedBNB: decimal.NewFromInt(2)}

	tests := []struct {
		name     string
		token0   *entity.Token
		token1   *entity.Token
		expected string
	}{
		{"both whitelisted sums the sides", busd, usdt, "35"},
		{"only token0 whitelisted doubles its side", busd, cake, "40"},
		{"only token1 whitelisted doubles its side", other, usdt, "30"},
		{"neither whitelisted", other, cake, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := oracle.TrackedLiquidityUSD(bnbPrice, amount0, tt.token0, amount1, tt.token1)
			require.True(t, got.Equal(decimal.RequireFromString(tt.expected)), got.String())
		})
	}
}
