package entity

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestIDHelpers(t *testing.T) {
	require.Equal(t, "0xabc-0", EventID("0xabc", 0))
	require.Equal(t, "0xabc-3", EventID("0xabc", 3))
	require.Equal(t, "0xpair-18518", BucketID("0xpair", 18518))
	require.Equal(t, "0xaa0xbb", PairLookupID("0xaa", "0xbb"))
}

func TestLoadReturnsNilForMissingRecords(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	pair, err := store.LoadPair(ctx, "0xmissing")
	require.NoError(t, err)
	require.Nil(t, pair)

	token, err := store.LoadToken(ctx, "0xmissing")
	require.NoError(t, err)
	require.Nil(t, token)
}

func TestLoadedRecordsDoNotShareMemory(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.SaveToken(ctx, &Token{ID: "0xaa", TxCount: 1}))

	loaded, err := store.LoadToken(ctx, "0xaa")
	require.NoError(t, err)
	loaded.TxCount = 99

	again, err := store.LoadToken(ctx, "0xaa")
	require.NoError(t, err)
	require.Equal(t, uint64(1), again.TxCount, "mutation must not leak back without a save")
}

func TestTransactionEventListsAreCopied(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	tx := &Transaction{ID: "0xtx", Mints: []string{"0xtx-0"}}
	require.NoError(t, store.SaveTransaction(ctx, tx))

	tx.Mints[0] = "mutated"

	loaded, err := store.LoadTransaction(ctx, "0xtx")
	require.NoError(t, err)
	require.Equal(t, []string{"0xtx-0"}, loaded.Mints)
}

func TestDeleteMint(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.SaveMint(ctx, &Mint{ID: "0xtx-0", Liquidity: decimal.NewFromInt(1)}))
	require.NoError(t, store.DeleteMint(ctx, "0xtx-0"))

	mint, err := store.LoadMint(ctx, "0xtx-0")
	require.NoError(t, err)
	require.Nil(t, mint)

	require.ErrorIs(t, store.DeleteMint(ctx, "0xtx-0"), ErrNotFound)
}
