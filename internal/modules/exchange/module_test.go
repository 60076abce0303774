package exchange

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/zilstream/exchange-subgraph/internal/entity"
)

var (
	testFactory  = common.HexToAddress("0xcA143Ce32Fe78f1f7019d7d551a6402fC5350c73")
	testWBNB     = common.HexToAddress("0xbb4CdB9CBd36B01bD1cbaEBF2De08d9173bc095c")
	testBUSD     = common.HexToAddress("0xe9e7CEA3DedcA5984780Bafc599bD69ADd087D56")
	testUSDT     = common.HexToAddress("0x55d398326f99059fF775485246999027B3197955")
	testCake     = common.HexToAddress("0x0E09FaBB73Bd3Ade0a17ECC321fD13a19e81cE82")
	testBusdPair = common.HexToAddress("0x1B96B92314C44b159149f7E0303511fB2Fc4774f")
	testUsdtPair = common.HexToAddress("0x20bCC3b8a0091ddac2d0BC30F68E6CBb97de59Cd")
	testCakePair = common.HexToAddress("0x0eD7e52944161450477ee417DE9Cd3a859b14fD0")

	testUser  = common.HexToAddress("0x1111111111111111111111111111111111111111")
	testFeeTo = common.HexToAddress("0x2222222222222222222222222222222222222222")

	testTx = common.HexToHash("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
)

type stubFetcher struct {
	tokens map[common.Address]*TokenMetadata
}

func (s *stubFetcher) FetchToken(_ context.Context, address common.Address) (*TokenMetadata, error) {
	meta, ok := s.tokens[address]
	if !ok {
		return nil, ErrNoDecimals
	}
	return meta, nil
}

func testOracleConfig() OracleConfig {
	return OracleConfig{
		WrappedNative: testWBNB.Hex(),
		ReferencePairs: []ReferencePair{
			{Address: testBusdPair.Hex(), NativeIsToken0: true},
			{Address: testUsdtPair.Hex(), NativeIsToken0: false},
		},
		Whitelist: []string{
			testWBNB.Hex(), testBUSD.Hex(), testUSDT.Hex(),
		},
		MinimumLiquidityThresholdBNB: decimal.NewFromInt(2),
	}
}

func newTestModule(t *testing.T) (*Module, *entity.MemoryStore) {
	t.Helper()
	store := entity.NewMemoryStore()
	fetcher := &stubFetcher{tokens: map[common.Address]*TokenMetadata{
		testWBNB: {Symbol: "WBNB", Name: "Wrapped BNB", Decimals: 18, TotalSupply: big.NewInt(0)},
		testBUSD: {Symbol: "BUSD", Name: "BUSD Token", Decimals: 18, TotalSupply: big.NewInt(0)},
		testUSDT: {Symbol: "USDT", Name: "Tether USD", Decimals: 18, TotalSupply: big.NewInt(0)},
		testCake: {Symbol: "Cake", Name: "PancakeSwap Token", Decimals: 18, TotalSupply: big.NewInt(0)},
	}}
	m := newModuleForTest(zerolog.Nop(), store, NewPriceOracle(testOracleConfig()), fetcher, testFactory.Hex())
	return m, store
}

func addrTopic(a common.Address) common.Hash {
	return common.BytesToHash(common.LeftPadBytes(a.Bytes(), 32))
}

func pad(v *big.Int) []byte {
	return common.LeftPadBytes(v.Bytes(), 32)
}

// wei scales a whole-token amount to 18 decimals.
func wei(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
}

func pairCreatedLog(token0, token1, pair common.Address) *types.Log {
	return &types.Log{
		Address:     testFactory,
		Topics:      []common.Hash{TopicPairCreated, addrTopic(token0), addrTopic(token1)},
		Data:        append(common.LeftPadBytes(pair.Bytes(), 32), pad(big.NewInt(1))...),
		BlockNumber: 100,
		TxHash:      testTx,
	}
}

func transferLog(pair, from, to common.Address, value *big.Int, index uint) *types.Log {
	return &types.Log{
		Address:     pair,
		Topics:      []common.Hash{TopicTransfer, addrTopic(from), addrTopic(to)},
		Data:        pad(value),
		BlockNumber: 101,
		TxHash:      testTx,
		Index:       index,
	}
}

func syncLog(pair common.Address, reserve0, reserve1 *big.Int, index uint) *types.Log {
	return &types.Log{
		Address:     pair,
		Topics:      []common.Hash{TopicSync},
		Data:        append(pad(reserve0), pad(reserve1)...),
		BlockNumber: 101,
		TxHash:      testTx,
		Index:       index,
	}
}

func mintLog(pair, sender common.Address, amount0, amount1 *big.Int, index uint) *types.Log {
	return &types.Log{
		Address:     pair,
		Topics:      []common.Hash{TopicMint, addrTopic(sender)},
		Data:        append(pad(amount0), pad(amount1)...),
		BlockNumber: 101,
		TxHash:      testTx,
		Index:       index,
	}
}

func burnLog(pair, sender, to common.Address, amount0, amount1 *big.Int, index uint) *types.Log {
	return &types.Log{
		Address:     pair,
		Topics:      []common.Hash{TopicBurn, addrTopic(sender), addrTopic(to)},
		Data:        append(pad(amount0), pad(amount1)...),
		BlockNumber: 101,
		TxHash:      testTx,
		Index:       index,
	}
}

func swapLog(pair, sender, to common.Address, a0In, a1In, a0Out, a1Out *big.Int, index uint) *types.Log {
	data := append(pad(a0In), pad(a1In)...)
	data = append(data, pad(a0Out)...)
	data = append(data, pad(a1Out)...)
	return &types.Log{
		Address:     pair,
		Topics:      []common.Hash{TopicSwap, addrTopic(sender), addrTopic(to)},
		Data:        data,
		BlockNumber: 101,
		TxHash:      testTx,
		Index:       index,
	}
}

func handle(t *testing.T, m *Module, log *types.Log, ts int64) {
	t.Helper()
	h, ok := m.handlers[log.Topics[0]]
	require.True(t, ok)
	require.NoError(t, h(context.Background(), &EventContext{Log: log, Timestamp: ts}))
}

func createCakePair(t *testing.T, m *Module) {
	t.Helper()
	handle(t, m, pairCreatedLog(testBUSD, testCake, testCakePair), 1600000000)
}

func TestPairCreatedBootstrapsRegistry(t *testing.T) {
	m, store := newTestModule(t)
	ctx := context.Background()

	createCakePair(t, m)

	factory, err := store.LoadFactory(ctx, m.factoryAddress)
	require.NoError(t, err)
	require.NotNil(t, factory)
	require.Equal(t, uint64(1), factory.PairCount)

	bundle, err := store.LoadBundle(ctx, entity.BundleID)
	require.NoError(t, err)
	require.NotNil(t, bundle)
	require.True(t, bundle.BNBPrice.IsZero())

	pair, err := store.LoadPair(ctx, hexAddr(testCakePair))
	require.NoError(t, err)
	require.NotNil(t, pair)
	require.Equal(t, hexAddr(testBUSD), pair.Token0)
	require.Equal(t, hexAddr(testCake), pair.Token1)
	require.Equal(t, int64(1600000000), pair.CreatedAtTimestamp)

	// The pair is findable under both token orderings.
	for _, id := range []string{
		entity.PairLookupID(hexAddr(testBUSD), hexAddr(testCake)),
		entity.PairLookupID(hexAddr(testCake), hexAddr(testBUSD)),
	} {
		lookup, err := store.LoadPairLookup(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, lookup)
		require.Equal(t, hexAddr(testCakePair), lookup.Pair)
	}

	token, err := store.LoadToken(ctx, hexAddr(testCake))
	require.NoError(t, err)
	require.NotNil(t, token)
	require.Equal(t, "Cake", token.Symbol)
	require.Equal(t, int32(18), token.Decimals)
}

func TestPairCreatedSkipsUnresolvableToken(t *testing.T) {
	m, store := newTestModule(t)
	ctx := context.Background()

	broken := common.HexToAddress("0x3333333333333333333333333333333333333333")
	brokenPair := common.HexToAddress("0x4444444444444444444444444444444444444444")
	handle(t, m, pairCreatedLog(testBUSD, broken, brokenPair), 1600000000)

	pair, err := store.LoadPair(ctx, hexAddr(brokenPair))
	require.NoError(t, err)
	require.Nil(t, pair)

	factory, err := store.LoadFactory(ctx, m.factoryAddress)
	require.NoError(t, err)
	require.NotNil(t, factory)
	require.Zero(t, factory.PairCount)
}

func TestPairCreatedIgnoresForeignFactory(t *testing.T) {
	m, store := newTestModule(t)
	ctx := context.Background()

	log := pairCreatedLog(testBUSD, testCake, testCakePair)
	log.Address = testUser
	handle(t, m, log, 1600000000)

	pair, err := store.LoadPair(ctx, hexAddr(testCakePair))
	require.NoError(t, err)
	require.Nil(t, pair)
}

func TestTransferCorrelatesMintAndBurn(t *testing.T) {
	m, store := newTestModule(t)
	ctx := context.Background()
	createCakePair(t, m)

	ts := int64(1600000100)

	// Initial lock of 1000 wei to the zero address is not a mint.
	handle(t, m, transferLog(testCakePair, testUser, zeroAddress, big.NewInt(1000), 1), ts)

	// Deposit: 100 LP tokens minted to the user.
	handle(t, m, transferLog(testCakePair, zeroAddress, testUser, wei(100), 2), ts)

	pair, err := store.LoadPair(ctx, hexAddr(testCakePair))
	require.NoError(t, err)
	require.True(t, pair.TotalSupply.Equal(decimal.NewFromInt(100)), pair.TotalSupply.String())

	tx, err := store.LoadTransaction(ctx, testTx.Hex())
	require.NoError(t, err)
	require.NotNil(t, tx)
	require.Len(t, tx.Mints, 1)
	require.Empty(t, tx.Burns)

	mint, err := store.LoadMint(ctx, tx.Mints[0])
	require.NoError(t, err)
	require.Equal(t, entity.StatusPendingSender, mint.Status)
	require.Equal(t, hexAddr(testUser), mint.To)
	require.True(t, mint.Liquidity.Equal(decimal.NewFromInt(100)))

	// Pair-level Mint completes the pending record.
	handle(t, m, mintLog(testCakePair, testUser, wei(400), wei(10), 3), ts)

	mint, err = store.LoadMint(ctx, tx.Mints[0])
	require.NoError(t, err)
	require.Equal(t, entity.StatusComplete, mint.Status)
	require.Equal(t, hexAddr(testUser), mint.Sender)
	require.True(t, mint.Amount0.Equal(decimal.NewFromInt(400)))
	require.True(t, mint.Amount1.Equal(decimal.NewFromInt(10)))

	// Withdrawal: direct send to the pair, then pair-to-zero.
	handle(t, m, transferLog(testCakePair, testUser, testCakePair, wei(50), 4), ts)

	tx, err = store.LoadTransaction(ctx, testTx.Hex())
	require.NoError(t, err)
	require.Len(t, tx.Burns, 1)
	burn, err := store.LoadBurn(ctx, tx.Burns[0])
	require.NoError(t, err)
	require.Equal(t, entity.StatusPendingCompletion, burn.Status)
	require.Equal(t, hexAddr(testUser), burn.Sender)

	handle(t, m, transferLog(testCakePair, testCakePair, zeroAddress, wei(50), 5), ts)

	pair, err = store.LoadPair(ctx, hexAddr(testCakePair))
	require.NoError(t, err)
	require.True(t, pair.TotalSupply.Equal(decimal.NewFromInt(50)), pair.TotalSupply.String())

	tx, err = store.LoadTransaction(ctx, testTx.Hex())
	require.NoError(t, err)
	require.Len(t, tx.Burns, 1)
	burn, err = store.LoadBurn(ctx, tx.Burns[0])
	require.NoError(t, err)
	require.Equal(t, entity.StatusComplete, burn.Status)
	require.True(t, burn.Liquidity.Equal(decimal.NewFromInt(50)))

	// Pair-level Burn fills in the withdrawal amounts.
	handle(t, m, burnLog(testCakePair, testUser, testUser, wei(200), wei(5), 6), ts)

	burn, err = store.LoadBurn(ctx, tx.Burns[0])
	require.NoError(t, err)
	require.True(t, burn.Amount0.Equal(decimal.NewFromInt(200)))
	require.True(t, burn.Amount1.Equal(decimal.NewFromInt(5)))
}

func TestBurnAbsorbsTrailingFeeMint(t *testing.T) {
	m, store := newTestModule(t)
	ctx := context.Background()
	createCakePair(t, m)

	ts := int64(1600000100)

	// Protocol fee mint lands first in a withdrawal transaction.
	handle(t, m, transferLog(testCakePair, zeroAddress, testFeeTo, wei(3), 1), ts)
	// User sends LP to the pair, pair destroys it.
	handle(t, m, transferLog(testCakePair, testUser, testCakePair, wei(40), 2), ts)
	handle(t, m, transferLog(testCakePair, testCakePair, zeroAddress, wei(40), 3), ts)

	tx, err := store.LoadTransaction(ctx, testTx.Hex())
	require.NoError(t, err)
	require.Empty(t, tx.Mints, "fee mint must be folded into the burn")
	require.Len(t, tx.Burns, 1)

	burn, err := store.LoadBurn(ctx, tx.Burns[0])
	require.NoError(t, err)
	require.Equal(t, hexAddr(testFeeTo), burn.FeeTo)
	require.True(t, burn.FeeLiquidity.Equal(decimal.NewFromInt(3)))

	// The absorbed mint record is gone.
	mint, err := store.LoadMint(ctx, entity.EventID(testTx.Hex(), 0))
	require.NoError(t, err)
	require.Nil(t, mint)

	// Supply: +3 fee mint, -40 burn.
	pair, err := store.LoadPair(ctx, hexAddr(testCakePair))
	require.NoError(t, err)
	require.True(t, pair.TotalSupply.Equal(decimal.NewFromInt(-37)), pair.TotalSupply.String())
}

func TestSecondMintOpensAfterCompletion(t *testing.T) {
	m, store := newTestModule(t)
	ctx := context.Background()
	createCakePair(t, m)

	ts := int64(1600000100)

	handle(t, m, transferLog(testCakePair, zeroAddress, testUser, wei(10), 1), ts)
	// A second zero-transfer while the first mint is still pending does
	// not open a new record.
	handle(t, m, transferLog(testCakePair, zeroAddress, testUser, wei(5), 2), ts)

	tx, err := store.LoadTransaction(ctx, testTx.Hex())
	require.NoError(t, err)
	require.Len(t, tx.Mints, 1)

	handle(t, m, mintLog(testCakePair, testUser, wei(1), wei(1), 3), ts)
	handle(t, m, transferLog(testCakePair, zeroAddress, testUser, wei(7), 4), ts)

	tx, err = store.LoadTransaction(ctx, testTx.Hex())
	require.NoError(t, err)
	require.Len(t, tx.Mints, 2)
	require.Equal(t, entity.EventID(testTx.Hex(), 1), tx.Mints[1])

	// Supply accumulated all three legs.
	pair, err := store.LoadPair(ctx, hexAddr(testCakePair))
	require.NoError(t, err)
	require.True(t, pair.TotalSupply.Equal(decimal.NewFromInt(22)), pair.TotalSupply.String())
}

func TestSyncUpdatesReservesAndSpotPrices(t *testing.T) {
	m, store := newTestModule(t)
	ctx := context.Background()
	createCakePair(t, m)

	handle(t, m, syncLog(testCakePair, wei(200), wei(50), 1), 1600000100)

	pair, err := store.LoadPair(ctx, hexAddr(testCakePair))
	require.NoError(t, err)
	require.True(t, pair.Reserve0.Equal(decimal.NewFromInt(200)))
	require.True(t, pair.Reserve1.Equal(decimal.NewFromInt(50)))
	require.True(t, pair.Token0Price.Equal(decimal.NewFromInt(4)), pair.Token0Price.String())
	require.True(t, pair.Token1Price.Equal(decimal.RequireFromString("0.25")), pair.Token1Price.String())

	token0, err := store.LoadToken(ctx, hexAddr(testBUSD))
	require.NoError(t, err)
	require.True(t, token0.TotalLiquidity.Equal(decimal.NewFromInt(200)))

	// Draining one side zeroes both spot prices' divisor cases.
	handle(t, m, syncLog(testCakePair, wei(200), big.NewInt(0), 2), 1600000100)

	pair, err = store.LoadPair(ctx, hexAddr(testCakePair))
	require.NoError(t, err)
	require.True(t, pair.Token0Price.IsZero())
	require.True(t, pair.Token1Price.Equal(decimal.Zero))

	token0, err = store.LoadToken(ctx, hexAddr(testBUSD))
	require.NoError(t, err)
	require.True(t, token0.TotalLiquidity.Equal(decimal.NewFromInt(200)), "old reserve subtracted before new added")
}

func TestSyncDerivesPricesThroughReferencePair(t *testing.T) {
	m, store := newTestModule(t)
	ctx := context.Background()

	// BUSD/WBNB reference pair: WBNB is token0.
	handle(t, m, pairCreatedLog(testWBNB, testBUSD, testBusdPair), 1600000000)
	createCakePair(t, m)

	// 10 WBNB x 3000 BUSD: BNB at $300.
	handle(t, m, syncLog(testBusdPair, wei(10), wei(3000), 1), 1600000100)

	bundle, err := store.LoadBundle(ctx, entity.BundleID)
	require.NoError(t, err)
	require.True(t, bundle.BNBPrice.Equal(decimal.NewFromInt(300)), bundle.BNBPrice.String())

	wbnb, err := store.LoadToken(ctx, hexAddr(testWBNB))
	require.NoError(t, err)
	require.True(t, wbnb.DerivedBNB.Equal(decimal.NewFromInt(1)))

	// The hop reads the pool's wrapped-native reserve value as of the
	// previous sync, so the derived price lands one sync later.
	busd, err := store.LoadToken(ctx, hexAddr(testBUSD))
	require.NoError(t, err)
	require.True(t, busd.DerivedBNB.IsZero())

	handle(t, m, syncLog(testBusdPair, wei(10), wei(3000), 2), 1600000100)

	busd, err = store.LoadToken(ctx, hexAddr(testBUSD))
	require.NoError(t, err)
	// 1 BUSD = 1/300 BNB via the single whitelist hop.
	busdDerived := decimal.NewFromInt(10).Div(decimal.NewFromInt(3000))
	require.True(t, busd.DerivedBNB.Equal(busdDerived), busd.DerivedBNB.String())

	// Cake prices through its BUSD pool: 1000 BUSD x 100 CAKE.
	handle(t, m, syncLog(testCakePair, wei(1000), wei(100), 3), 1600000100)
	handle(t, m, syncLog(testCakePair, wei(1000), wei(100), 4), 1600000100)

	cake, err := store.LoadToken(ctx, hexAddr(testCake))
	require.NoError(t, err)
	expected := decimal.NewFromInt(10).Mul(busdDerived)
	require.True(t, cake.DerivedBNB.Equal(expected), cake.DerivedBNB.String())

	// Previous derived price is retained for one cycle.
	require.True(t, cake.PreviousDerivedBNB.IsZero())
	handle(t, m, syncLog(testCakePair, wei(1000), wei(100), 5), 1600000100)
	cake, err = store.LoadToken(ctx, hexAddr(testCake))
	require.NoError(t, err)
	require.True(t, cake.PreviousDerivedBNB.Equal(expected))
}

func TestSwapAccumulatesVolumeAndFallsBackToDerived(t *testing.T) {
	m, store := newTestModule(t)
	ctx := context.Background()
	createCakePair(t, m)

	// Seed prices directly: BUSD (whitelisted) at 2 BNB, Cake at 3 BNB,
	// BNB at $1.
	busd, err := store.LoadToken(ctx, hexAddr(testBUSD))
	require.NoError(t, err)
	busd.DerivedBNB = decimal.NewFromInt(2)
	require.NoError(t, store.SaveToken(ctx, busd))
	cake, err := store.LoadToken(ctx, hexAddr(testCake))
	require.NoError(t, err)
	cake.DerivedBNB = decimal.NewFromInt(3)
	require.NoError(t, store.SaveToken(ctx, cake))
	bundle, err := store.LoadBundle(ctx, entity.BundleID)
	require.NoError(t, err)
	bundle.BNBPrice = decimal.NewFromInt(1)
	require.NoError(t, store.SaveBundle(ctx, bundle))

	ts := int64(1600000100)
	handle(t, m, swapLog(testCakePair, testUser, testUser, wei(10), big.NewInt(0), big.NewInt(0), wei(5), 1), ts)

	// Tracked counts only the whitelisted BUSD side: 10 x $2 = $20.
	// Derived averages both: (10x2 + 5x3)/2 = $17.5.
	tracked := decimal.NewFromInt(20)
	derived := decimal.RequireFromString("17.5")

	pair, err := store.LoadPair(ctx, hexAddr(testCakePair))
	require.NoError(t, err)
	require.True(t, pair.VolumeUSD.Equal(tracked), pair.VolumeUSD.String())
	require.True(t, pair.UntrackedVolumeUSD.Equal(derived), pair.UntrackedVolumeUSD.String())
	require.True(t, pair.VolumeToken0.Equal(decimal.NewFromInt(10)))
	require.True(t, pair.VolumeToken1.Equal(decimal.NewFromInt(5)))
	require.Equal(t, uint64(1), pair.TxCount)

	tx, err := store.LoadTransaction(ctx, testTx.Hex())
	require.NoError(t, err)
	require.Len(t, tx.Swaps, 1)
	swap, err := store.LoadSwap(ctx, tx.Swaps[0])
	require.NoError(t, err)
	require.True(t, swap.AmountUSD.Equal(tracked))
	require.Equal(t, hexAddr(testUser), swap.Sender)

	factory, err := store.LoadFactory(ctx, m.factoryAddress)
	require.NoError(t, err)
	require.True(t, factory.TotalVolumeUSD.Equal(tracked))
	require.True(t, factory.TotalVolumeBNB.Equal(tracked), "BNB at $1")
	require.True(t, factory.UntrackedVolumeUSD.Equal(derived))

	// With no whitelisted side the swap value falls back to derived.
	other := common.HexToAddress("0x5555555555555555555555555555555555555555")
	otherPair := common.HexToAddress("0x6666666666666666666666666666666666666666")
	fetcher := m.tokens.(*stubFetcher)
	fetcher.tokens[other] = &TokenMetadata{Symbol: "OTH", Name: "Other", Decimals: 18, TotalSupply: big.NewInt(0)}
	handle(t, m, pairCreatedLog(testCake, other, otherPair), 1600000000)

	oth, err := store.LoadToken(ctx, hexAddr(other))
	require.NoError(t, err)
	oth.DerivedBNB = decimal.NewFromInt(1)
	require.NoError(t, store.SaveToken(ctx, oth))

	handle(t, m, swapLog(otherPair, testUser, testUser, wei(4), big.NewInt(0), big.NewInt(0), wei(6), 2), ts)

	tx, err = store.LoadTransaction(ctx, testTx.Hex())
	require.NoError(t, err)
	require.Len(t, tx.Swaps, 2)
	swap, err = store.LoadSwap(ctx, tx.Swaps[1])
	require.NoError(t, err)
	// Neither cake nor other is whitelisted: tracked 0, derived (4x3+6x1)/2 = 9.
	require.True(t, swap.AmountUSD.Equal(decimal.NewFromInt(9)), swap.AmountUSD.String())

	p2, err := store.LoadPair(ctx, hexAddr(otherPair))
	require.NoError(t, err)
	require.True(t, p2.VolumeUSD.IsZero())
	require.True(t, p2.UntrackedVolumeUSD.Equal(decimal.NewFromInt(9)))
}

func TestMintEventWithoutPendingRecordFails(t *testing.T) {
	m, _ := newTestModule(t)
	createCakePair(t, m)

	h := m.handlers[TopicMint]
	err := h(context.Background(), &EventContext{
		Log:       mintLog(testCakePair, testUser, wei(1), wei(1), 1),
		Timestamp: 1600000100,
	})
	require.Error(t, err)
}

func TestHandlersIgnoreUnknownPairs(t *testing.T) {
	m, store := newTestModule(t)
	ctx := context.Background()

	unknown := common.HexToAddress("0x7777777777777777777777777777777777777777")
	handle(t, m, transferLog(unknown, zeroAddress, testUser, wei(1), 1), 1600000100)
	handle(t, m, syncLog(unknown, wei(1), wei(1), 2), 1600000100)
	handle(t, m, swapLog(unknown, testUser, testUser, wei(1), big.NewInt(0), big.NewInt(0), wei(1), 3), 1600000100)

	tx, err := store.LoadTransaction(ctx, testTx.Hex())
	require.NoError(t, err)
	require.Nil(t, tx)
}
