package exchange

import (
	"context"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/zilstream/exchange-subgraph/internal/entity"
)

const (
	secondsPerDay  = 86400
	secondsPerHour = 3600
)

// updateExchangeDayData rolls the global daily bucket forward: liquidity
// and txCount snapshots are refreshed on every call, volume fields only
// by the swap handler after this returns.
func updateExchangeDayData(ctx context.Context, store entity.Store, factory *entity.Factory, timestamp int64) (*entity.ExchangeDayData, error) {
	dayID := timestamp / secondsPerDay
	id := strconv.FormatInt(dayID, 10)

	day, err := store.LoadExchangeDayData(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load exchange day data: %w", err)
	}
	if day == nil {
		day = &entity.ExchangeDayData{
			ID:   id,
			Date: dayID * secondsPerDay,
		}
	}

	day.TotalLiquidityUSD = factory.TotalLiquidityUSD
	day.TotalLiquidityBNB = factory.TotalLiquidityBNB
	day.TxCount = factory.TxCount

	return day, nil
}

func updatePairDayData(ctx context.Context, store entity.Store, pair *entity.Pair, timestamp int64) (*entity.PairDayData, error) {
	dayID := timestamp / secondsPerDay
	id := entity.BucketID(pair.ID, dayID)

	day, err := store.LoadPairDayData(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load pair day data: %w", err)
	}
	if day == nil {
		day = &entity.PairDayData{
			ID:          id,
			Date:        dayID * secondsPerDay,
			PairAddress: pair.ID,
			Token0:      pair.Token0,
			Token1:      pair.Token1,
		}
	}

	day.TotalSupply = pair.TotalSupply
	day.Reserve0 = pair.Reserve0
	day.Reserve1 = pair.Reserve1
	day.ReserveUSD = pair.ReserveUSD
	day.DailyTxns++

	return day, nil
}

func updatePairHourData(ctx context.Context, store entity.Store, pair *entity.Pair, timestamp int64) (*entity.PairHourData, error) {
	hourIndex := timestamp / secondsPerHour
	id := entity.BucketID(pair.ID, hourIndex)

	hour, err := store.LoadPairHourData(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load pair hour data: %w", err)
	}
	if hour == nil {
		hour = &entity.PairHourData{
			ID:            id,
			HourStartUnix: hourIndex * secondsPerHour,
			Pair:          pair.ID,
		}
	}

	hour.Reserve0 = pair.Reserve0
	hour.Reserve1 = pair.Reserve1
	hour.ReserveUSD = pair.ReserveUSD
	hour.HourlyTxns++

	return hour, nil
}

func updateTokenDayData(ctx context.Context, store entity.Store, token *entity.Token, bnbPrice decimal.Decimal, timestamp int64) (*entity.TokenDayData, error) {
	dayID := timestamp / secondsPerDay
	id := entity.BucketID(token.ID, dayID)

	day, err := store.LoadTokenDayData(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load token day data: %w", err)
	}
	if day == nil {
		day = &entity.TokenDayData{
			ID:    id,
			Date:  dayID * secondsPerDay,
			Token: token.ID,
		}
	}

	day.PriceUSD = token.DerivedBNB.Mul(bnbPrice)
	liquidityBNB := token.TotalLiquidity.Mul(token.DerivedBNB)
	day.TotalLiquidityToken = token.TotalLiquidity
	day.TotalLiquidityBNB = liquidityBNB
	day.TotalLiquidityUSD = liquidityBNB.Mul(bnbPrice)
	day.DailyTxns++

	return day, nil
}
