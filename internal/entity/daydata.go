package entity

import "github.com/shopspring/decimal"

// ExchangeDayData is the global daily rollup, keyed by day index.
type ExchangeDayData struct {
	ID   string
	Date int64

	DailyVolumeBNB       decimal.Decimal
	DailyVolumeUSD       decimal.Decimal
	DailyVolumeUntracked decimal.Decimal

	TotalVolumeBNB    decimal.Decimal
	TotalVolumeUSD    decimal.Decimal
	TotalLiquidityBNB decimal.Decimal
	TotalLiquidityUSD decimal.Decimal

	TxCount uint64
}

// PairDayData is the per-pair daily rollup, keyed by <pair>-<dayIndex>.
type PairDayData struct {
	ID          string
	Date        int64
	PairAddress string
	Token0      string
	Token1      string

	Reserve0    decimal.Decimal
	Reserve1    decimal.Decimal
	TotalSupply decimal.Decimal
	ReserveUSD  decimal.Decimal

	DailyVolumeToken0 decimal.Decimal
	DailyVolumeToken1 decimal.Decimal
	DailyVolumeUSD    decimal.Decimal
	DailyTxns         uint64
}

// PairHourData is the per-pair hourly rollup, keyed by <pair>-<hourIndex>.
type PairHourData struct {
	ID            string
	HourStartUnix int64
	Pair          string

	Reserve0   decimal.Decimal
	Reserve1   decimal.Decimal
	ReserveUSD decimal.Decimal

	HourlyVolumeToken0 decimal.Decimal
	HourlyVolumeToken1 decimal.Decimal
	HourlyVolumeUSD    decimal.Decimal
	HourlyTxns         uint64
}

// TokenDayData is the per-token daily rollup, keyed by <token>-<dayIndex>.
type TokenDayData struct {
	ID    string
	Date  int64
	Token string

	DailyVolumeToken decimal.Decimal
	DailyVolumeBNB   decimal.Decimal
	DailyVolumeUSD   decimal.Decimal
	DailyTxns        uint64

	TotalLiquidityToken decimal.Decimal
	TotalLiquidityBNB   decimal.Decimal
	TotalLiquidityUSD   decimal.Decimal
	PriceUSD            decimal.Decimal
}
