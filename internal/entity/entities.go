package entity

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// RecordStatus tracks the lifecycle of a correlated mint/burn record.
// Mints open as StatusPendingSender and complete when the pair-level
// Mint event fills in the sender and amounts. Burns opened by a direct
// LP-token send to the pair open as StatusPendingCompletion and complete
// when the matching pair-to-zero transfer arrives.
type RecordStatus string

const (
	StatusPendingSender     RecordStatus = "pending-sender"
	StatusPendingCompletion RecordStatus = "pending-completion"
	StatusComplete          RecordStatus = "complete"
)

// Factory is the single global exchange record, keyed by the factory
// contract address.
type Factory struct {
	ID                 string
	PairCount          uint64
	TotalVolumeUSD     decimal.Decimal
	TotalVolumeBNB     decimal.Decimal
	UntrackedVolumeUSD decimal.Decimal
	TotalLiquidityBNB  decimal.Decimal
	TotalLiquidityUSD  decimal.Decimal
	TxCount            uint64
}

// Token is an ERC-20 token seen on at least one pair.
type Token struct {
	ID          string
	Symbol      string
	Name        string
	Decimals    int32
	TotalSupply decimal.Decimal

	TradeVolume        decimal.Decimal
	TradeVolumeUSD     decimal.Decimal
	UntrackedVolumeUSD decimal.Decimal
	TotalLiquidity     decimal.Decimal

	// DerivedBNB is the token price in the wrapped native asset,
	// recomputed on every reserve sync. PreviousDerivedBNB keeps exactly
	// one sync-cycle of history for swap fee accounting.
	DerivedBNB         decimal.Decimal
	PreviousDerivedBNB decimal.Decimal

	TxCount uint64
}

// Pair is a two-token liquidity pool, keyed by the pair contract address.
// Token order is fixed at creation.
type Pair struct {
	ID     string
	Token0 string
	Token1 string

	Reserve0    decimal.Decimal
	Reserve1    decimal.Decimal
	TotalSupply decimal.Decimal

	ReserveBNB        decimal.Decimal
	ReserveUSD        decimal.Decimal
	TrackedReserveBNB decimal.Decimal

	Token0Price decimal.Decimal
	Token1Price decimal.Decimal

	VolumeToken0       decimal.Decimal
	VolumeToken1       decimal.Decimal
	VolumeUSD          decimal.Decimal
	UntrackedVolumeUSD decimal.Decimal

	TxCount              uint64
	CreatedAtTimestamp   int64
	CreatedAtBlockNumber uint64
}

// PairLookup maps a concatenation of two token addresses (in either
// order) to the pair between them. Written at pair creation so the price
// oracle can resolve candidate pairs without a contract call.
type PairLookup struct {
	ID   string
	Pair string
}

// PairLookupID builds the lookup key for an ordered token pair.
func PairLookupID(tokenA, tokenB string) string {
	return tokenA + tokenB
}

// Bundle holds the current USD price of the wrapped native asset.
// There is exactly one, with id "1".
type Bundle struct {
	ID       string
	BNBPrice decimal.Decimal
}

// BundleID is the id of the singleton bundle record.
const BundleID = "1"

// Transaction groups the mints, burns, and swaps belonging to one chain
// transaction, in the order they were reconstructed.
type Transaction struct {
	ID          string
	BlockNumber uint64
	Timestamp   int64
	Mints       []string
	Burns       []string
	Swaps       []string
}

// Mint is one logical liquidity add. Opened by the correlator from a
// zero-address LP transfer and completed by the pair-level Mint event.
type Mint struct {
	ID          string
	Transaction string
	Timestamp   int64
	Pair        string
	To          string
	Liquidity   decimal.Decimal
	Status      RecordStatus

	Sender    string
	Amount0   decimal.Decimal
	Amount1   decimal.Decimal
	LogIndex  uint
	AmountUSD decimal.Decimal
}

// Burn is one logical liquidity removal. May absorb a trailing
// incomplete mint as a fee mint, recorded on FeeTo/FeeLiquidity.
type Burn struct {
	ID          string
	Transaction string
	Timestamp   int64
	Pair        string
	Liquidity   decimal.Decimal
	Status      RecordStatus

	Sender    string
	To        string
	Amount0   decimal.Decimal
	Amount1   decimal.Decimal
	LogIndex  uint
	AmountUSD decimal.Decimal

	FeeTo        string
	FeeLiquidity decimal.Decimal
}

// Swap is immutable once created.
type Swap struct {
	ID          string
	Transaction string
	Timestamp   int64
	Pair        string
	Sender      string
	From        string
	To          string
	Amount0In   decimal.Decimal
	Amount1In   decimal.Decimal
	Amount0Out  decimal.Decimal
	Amount1Out  decimal.Decimal
	AmountUSD   decimal.Decimal
	LogIndex    uint
}

// EventID builds the deterministic id for the n-th mint/burn/swap of a
// transaction.
func EventID(txHash string, index int) string {
	return fmt.Sprintf("%s-%d", txHash, index)
}

// BucketID builds the deterministic id for a rollup bucket.
func BucketID(owner string, bucket int64) string {
	return fmt.Sprintf("%s-%d", owner, bucket)
}
