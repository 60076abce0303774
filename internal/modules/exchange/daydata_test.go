package exchange

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/zilstream/exchange-subgraph/internal/entity"
)

func TestUpdatePairDayDataCreatesAndAccumulates(t *testing.T) {
	store := entity.NewMemoryStore()
	ctx := context.Background()

	pair := &entity.Pair{
		ID:          hexAddr(testCakePair),
		Token0:      hexAddr(testBUSD),
		Token1:      hexAddr(testCake),
		Reserve0:    decimal.NewFromInt(100),
		Reserve1:    decimal.NewFromInt(10),
		TotalSupply: decimal.NewFromInt(30),
		ReserveUSD:  decimal.NewFromInt(200),
	}

	ts := int64(1600000100) // day 18518
	day, err := updatePairDayData(ctx, store, pair, ts)
	require.NoError(t, err)
	require.Equal(t, entity.BucketID(pair.ID, 18518), day.ID)
	require.Equal(t, int64(18518*86400), day.Date)
	require.Equal(t, uint64(1), day.DailyTxns)
	require.True(t, day.DailyVolumeUSD.IsZero())
	require.True(t, day.Reserve0.Equal(pair.Reserve0))
	require.NoError(t, store.SavePairDayData(ctx, day))

	// A second event in the same day reuses the bucket and refreshes the
	// snapshot fields.
	pair.Reserve0 = decimal.NewFromInt(120)
	day, err = updatePairDayData(ctx, store, pair, ts+60)
	require.NoError(t, err)
	require.Equal(t, uint64(2), day.DailyTxns)
	require.True(t, day.Reserve0.Equal(decimal.NewFromInt(120)))
	require.NoError(t, store.SavePairDayData(ctx, day))

	// The next day opens a fresh zeroed bucket.
	day, err = updatePairDayData(ctx, store, pair, ts+86400)
	require.NoError(t, err)
	require.Equal(t, entity.BucketID(pair.ID, 18519), day.ID)
	require.Equal(t, uint64(1), day.DailyTxns)
}

func TestUpdatePairHourData(t *testing.T) {
	store := entity.NewMemoryStore()
	ctx := context.Background()

	pair := &entity.Pair{
		ID:         hexAddr(testCakePair),
		Reserve0:   decimal.NewFromInt(100),
		ReserveUSD: decimal.NewFromInt(200),
	}

	ts := int64(1600000100) // hour 444444
	hour, err := updatePairHourData(ctx, store, pair, ts)
	require.NoError(t, err)
	require.Equal(t, entity.BucketID(pair.ID, 444444), hour.ID)
	require.Equal(t, int64(444444*3600), hour.HourStartUnix)
	require.Equal(t, uint64(1), hour.HourlyTxns)
	require.NoError(t, store.SavePairHourData(ctx, hour))

	hour, err = updatePairHourData(ctx, store, pair, ts+3600)
	require.NoError(t, err)
	require.Equal(t, entity.BucketID(pair.ID, 444445), hour.ID)
	require.Equal(t, uint64(1), hour.HourlyTxns)
}

func TestUpdateExchangeDayDataSnapshotsFactory(t *testing.T) {
	store := entity.NewMemoryStore()
	ctx := context.Background()

	factory := &entity.Factory{
		ID:                hexAddr(testFactory),
		TotalVolumeUSD:    decimal.NewFromInt(1000),
		TotalVolumeBNB:    decimal.NewFromInt(5),
		TotalLiquidityUSD: decimal.NewFromInt(4000),
		TotalLiquidityBNB: decimal.NewFromInt(20),
		TxCount:           7,
	}

	day, err := updateExchangeDayData(ctx, store, factory, 1600000100)
	require.NoError(t, err)
	require.Equal(t, "18518", day.ID)
	require.True(t, day.TotalLiquidityUSD.Equal(factory.TotalLiquidityUSD))
	require.True(t, day.TotalLiquidityBNB.Equal(factory.TotalLiquidityBNB))
	require.Equal(t, uint64(7), day.TxCount)
	require.True(t, day.DailyVolumeUSD.IsZero(), "volume belongs to the swap handler")
	require.True(t, day.TotalVolumeUSD.IsZero(), "cumulative volume is never snapshotted")
	require.True(t, day.TotalVolumeBNB.IsZero())
}

func TestUpdateTokenDayDataPricesAtUpdateTime(t *testing.T) {
	store := entity.NewMemoryStore()
	ctx := context.Background()

	token := &entity.Token{
		ID:             hexAddr(testCake),
		DerivedBNB:     decimal.RequireFromString("0.04"),
		TotalLiquidity: decimal.NewFromInt(1000),
	}
	bnbPrice := decimal.NewFromInt(300)

	day, err := updateTokenDayData(ctx, store, token, bnbPrice, 1600000100)
	require.NoError(t, err)
	require.Equal(t, entity.BucketID(token.ID, 18518), day.ID)
	require.True(t, day.PriceUSD.Equal(decimal.NewFromInt(12)), day.PriceUSD.String())
	require.True(t, day.TotalLiquidityToken.Equal(decimal.NewFromInt(1000)))
	require.True(t, day.TotalLiquidityBNB.Equal(decimal.NewFromInt(40)))
	require.True(t, day.TotalLiquidityUSD.Equal(decimal.NewFromInt(12000)))
	require.Equal(t, uint64(1), day.DailyTxns)
}
