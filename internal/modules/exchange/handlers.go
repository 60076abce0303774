package exchange

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/zilstream/exchange-subgraph/internal/entity"
)

// LP tokens always carry 18 decimals.
const lpTokenDecimals = 18

// Pair contracts lock this many wei of LP tokens to the zero address on
// the first deposit. The lock transfer is not a logical mint.
var initialLiquidityLock = big.NewInt(1000)

var zeroAddress = common.Address{}

func hexAddr(a common.Address) string {
	return strings.ToLower(a.Hex())
}

// handlePairCreated bootstraps the factory and bundle on first sight,
// resolves both token metadata records, and registers the new pair. If
// either token's decimals cannot be resolved the whole event is skipped
// and no pair is created.
func (m *Module) handlePairCreated(ctx context.Context, ec *EventContext) error {
	if hexAddr(ec.Log.Address) != m.factoryAddress {
		return nil
	}

	ev, err := decodePairCreated(ec.Log)
	if err != nil {
		return err
	}

	bundle, err := m.store.LoadBundle(ctx, entity.BundleID)
	if err != nil {
		return fmt.Errorf("failed to load bundle: %w", err)
	}
	if bundle == nil {
		bundle = &entity.Bundle{ID: entity.BundleID}
		if err := m.store.SaveBundle(ctx, bundle); err != nil {
			return fmt.Errorf("failed to save bundle: %w", err)
		}
	}

	factory, err := m.store.LoadFactory(ctx, m.factoryAddress)
	if err != nil {
		return fmt.Errorf("failed to load factory: %w", err)
	}
	if factory == nil {
		factory = &entity.Factory{ID: m.factoryAddress}
	}

	token0, err := m.ensureToken(ctx, ev.Token0)
	if err != nil {
		return err
	}
	if token0 == nil {
		m.logger.Warn().
			Str("token", hexAddr(ev.Token0)).
			Str("pair", hexAddr(ev.Pair)).
			Msg("Token decimals unresolvable, skipping pair")
		return nil
	}
	token1, err := m.ensureToken(ctx, ev.Token1)
	if err != nil {
		return err
	}
	if token1 == nil {
		m.logger.Warn().
			Str("token", hexAddr(ev.Token1)).
			Str("pair", hexAddr(ev.Pair)).
			Msg("Token decimals unresolvable, skipping pair")
		return nil
	}

	pairID := hexAddr(ev.Pair)
	pair := &entity.Pair{
		ID:                   pairID,
		Token0:               token0.ID,
		Token1:               token1.ID,
		CreatedAtTimestamp:   ec.Timestamp,
		CreatedAtBlockNumber: ec.Log.BlockNumber,
	}

	factory.PairCount++

	if err := m.store.SaveToken(ctx, token0); err != nil {
		return fmt.Errorf("failed to save token0: %w", err)
	}
	if err := m.store.SaveToken(ctx, token1); err != nil {
		return fmt.Errorf("failed to save token1: %w", err)
	}
	if err := m.store.SavePair(ctx, pair); err != nil {
		return fmt.Errorf("failed to save pair: %w", err)
	}

	// Register the pair under both token orderings for oracle lookups.
	for _, id := range []string{
		entity.PairLookupID(token0.ID, token1.ID),
		entity.PairLookupID(token1.ID, token0.ID),
	} {
		if err := m.store.SavePairLookup(ctx, &entity.PairLookup{ID: id, Pair: pairID}); err != nil {
			return fmt.Errorf("failed to save pair lookup: %w", err)
		}
	}

	if err := m.store.SaveFactory(ctx, factory); err != nil {
		return fmt.Errorf("failed to save factory: %w", err)
	}

	m.logger.Info().
		Str("pair", pairID).
		Str("token0", token0.ID).
		Str("token1", token1.ID).
		Uint64("pair_count", factory.PairCount).
		Msg("Pair created")
	return nil
}

// ensureToken returns the stored token, fetching metadata on first
// sight. A nil token with nil error means the contract's decimals could
// not be resolved and the caller must skip.
func (m *Module) ensureToken(ctx context.Context, address common.Address) (*entity.Token, error) {
	id := hexAddr(address)
	token, err := m.store.LoadToken(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load token %s: %w", id, err)
	}
	if token != nil {
		return token, nil
	}

	if m.tokens == nil {
		return nil, nil
	}
	meta, err := m.tokens.FetchToken(ctx, address)
	if err != nil {
		m.logger.Debug().Err(err).Str("token", id).Msg("Token metadata fetch failed")
		return nil, nil
	}

	return &entity.Token{
		ID:          id,
		Symbol:      meta.Symbol,
		Name:        meta.Name,
		Decimals:    meta.Decimals,
		TotalSupply: toDecimal(meta.TotalSupply, meta.Decimals),
	}, nil
}

// handleTransfer is the mint/burn correlator. LP-token movements open
// and close logical mint and burn records on the owning transaction.
func (m *Module) handleTransfer(ctx context.Context, ec *EventContext) error {
	ev, err := decodeTransfer(ec.Log)
	if err != nil {
		return err
	}

	// The pair's initial liquidity lock is not a logical mint.
	if ev.To == zeroAddress && ev.Value.Cmp(initialLiquidityLock) == 0 {
		return nil
	}

	pairID := hexAddr(ec.Log.Address)
	pair, err := m.store.LoadPair(ctx, pairID)
	if err != nil {
		return fmt.Errorf("failed to load pair %s: %w", pairID, err)
	}
	if pair == nil {
		// Transfer of a token that is not a tracked pair's LP token.
		return nil
	}

	txHash := strings.ToLower(ec.Log.TxHash.Hex())
	value := toDecimal(ev.Value, lpTokenDecimals)

	transaction, err := m.store.LoadTransaction(ctx, txHash)
	if err != nil {
		return fmt.Errorf("failed to load transaction %s: %w", txHash, err)
	}
	if transaction == nil {
		transaction = &entity.Transaction{
			ID:          txHash,
			BlockNumber: ec.Log.BlockNumber,
			Timestamp:   ec.Timestamp,
		}
	}

	// Mint open: LP tokens coming from the zero address.
	if ev.From == zeroAddress {
		pair.TotalSupply = pair.TotalSupply.Add(value)

		open := len(transaction.Mints) == 0
		if !open {
			last, err := m.store.LoadMint(ctx, transaction.Mints[len(transaction.Mints)-1])
			if err != nil {
				return fmt.Errorf("failed to load mint: %w", err)
			}
			open = last != nil && last.Status != entity.StatusPendingSender
		}
		if open {
			mint := &entity.Mint{
				ID:          entity.EventID(txHash, len(transaction.Mints)),
				Transaction: txHash,
				Timestamp:   transaction.Timestamp,
				Pair:        pairID,
				To:          hexAddr(ev.To),
				Liquidity:   value,
				Status:      entity.StatusPendingSender,
			}
			if err := m.store.SaveMint(ctx, mint); err != nil {
				return fmt.Errorf("failed to save mint: %w", err)
			}
			transaction.Mints = append(transaction.Mints, mint.ID)
		}
	}

	// Burn open: LP tokens sent directly to the pair ahead of a burn
	// call. The record stays pending until the pair-to-zero leg lands.
	if ev.To == ec.Log.Address {
		burn := &entity.Burn{
			ID:          entity.EventID(txHash, len(transaction.Burns)),
			Transaction: txHash,
			Timestamp:   transaction.Timestamp,
			Pair:        pairID,
			Liquidity:   value,
			To:          hexAddr(ev.To),
			Sender:      hexAddr(ev.From),
			Status:      entity.StatusPendingCompletion,
		}
		if err := m.store.SaveBurn(ctx, burn); err != nil {
			return fmt.Errorf("failed to save burn: %w", err)
		}
		transaction.Burns = append(transaction.Burns, burn.ID)
	}

	// Burn close: the pair destroys the LP tokens.
	if ev.To == zeroAddress && ev.From == ec.Log.Address {
		pair.TotalSupply = pair.TotalSupply.Sub(value)

		var burn *entity.Burn
		reused := false
		if len(transaction.Burns) > 0 {
			last, err := m.store.LoadBurn(ctx, transaction.Burns[len(transaction.Burns)-1])
			if err != nil {
				return fmt.Errorf("failed to load burn: %w", err)
			}
			if last != nil && last.Status == entity.StatusPendingCompletion {
				burn = last
				reused = true
			}
		}
		if burn == nil {
			burn = &entity.Burn{
				ID:          entity.EventID(txHash, len(transaction.Burns)),
				Transaction: txHash,
				Timestamp:   transaction.Timestamp,
				Pair:        pairID,
				Liquidity:   value,
			}
		}
		burn.Status = entity.StatusComplete

		// A trailing incomplete mint here is the protocol fee mint; fold
		// it into the burn and drop the mint record.
		if len(transaction.Mints) > 0 {
			lastMintID := transaction.Mints[len(transaction.Mints)-1]
			lastMint, err := m.store.LoadMint(ctx, lastMintID)
			if err != nil {
				return fmt.Errorf("failed to load mint: %w", err)
			}
			if lastMint != nil && lastMint.Status == entity.StatusPendingSender {
				burn.FeeTo = lastMint.To
				burn.FeeLiquidity = lastMint.Liquidity
				if err := m.store.DeleteMint(ctx, lastMintID); err != nil {
					return fmt.Errorf("failed to delete fee mint: %w", err)
				}
				transaction.Mints = transaction.Mints[:len(transaction.Mints)-1]
			}
		}

		if err := m.store.SaveBurn(ctx, burn); err != nil {
			return fmt.Errorf("failed to save burn: %w", err)
		}
		if reused {
			transaction.Burns[len(transaction.Burns)-1] = burn.ID
		} else {
			transaction.Burns = append(transaction.Burns, burn.ID)
		}
	}

	if err := m.store.SaveTransaction(ctx, transaction); err != nil {
		return fmt.Errorf("failed to save transaction: %w", err)
	}
	if err := m.store.SavePair(ctx, pair); err != nil {
		return fmt.Errorf("failed to save pair: %w", err)
	}
	return nil
}

// handleSync resynchronizes a pair's reserves and everything derived
// from them: spot prices, the wrapped-native USD price, both tokens'
// derived prices, and the tracked liquidity aggregates. Old contributions
// are subtracted before the new reserves land and re-added after.
func (m *Module) handleSync(ctx context.Context, ec *EventContext) error {
	ev, err := decodeSync(ec.Log)
	if err != nil {
		return err
	}

	pairID := hexAddr(ec.Log.Address)
	pair, err := m.store.LoadPair(ctx, pairID)
	if err != nil {
		return fmt.Errorf("failed to load pair %s: %w", pairID, err)
	}
	if pair == nil {
		return nil
	}

	token0, token1, factory, bundle, err := m.loadPairContext(ctx, pair)
	if err != nil {
		return err
	}

	factory.TotalLiquidityBNB = factory.TotalLiquidityBNB.Sub(pair.TrackedReserveBNB)
	token0.TotalLiquidity = token0.TotalLiquidity.Sub(pair.Reserve0)
	token1.TotalLiquidity = token1.TotalLiquidity.Sub(pair.Reserve1)

	reserve0 := toDecimal(ev.Reserve0, token0.Decimals)
	reserve1 := toDecimal(ev.Reserve1, token1.Decimals)
	pair.Reserve0 = reserve0
	pair.Reserve1 = reserve1
	pair.Token0Price = safeDiv(reserve0, reserve1)
	pair.Token1Price = safeDiv(reserve1, reserve0)

	// Persist reserves before pricing so the oracle observes them when
	// this pair is a reference or whitelist routing pool.
	if err := m.store.SavePair(ctx, pair); err != nil {
		return fmt.Errorf("failed to save pair: %w", err)
	}

	bnbPrice, err := m.oracle.BNBPriceUSD(ctx, m.store)
	if err != nil {
		return fmt.Errorf("failed to derive native price: %w", err)
	}
	bundle.BNBPrice = bnbPrice

	token0.PreviousDerivedBNB = token0.DerivedBNB
	derived0, err := m.oracle.FindBNBPerToken(ctx, m.store, token0)
	if err != nil {
		return fmt.Errorf("failed to derive token0 price: %w", err)
	}
	token0.DerivedBNB = derived0
	if err := m.store.SaveToken(ctx, token0); err != nil {
		return fmt.Errorf("failed to save token0: %w", err)
	}

	token1.PreviousDerivedBNB = token1.DerivedBNB
	derived1, err := m.oracle.FindBNBPerToken(ctx, m.store, token1)
	if err != nil {
		return fmt.Errorf("failed to derive token1 price: %w", err)
	}
	token1.DerivedBNB = derived1
	if err := m.store.SaveToken(ctx, token1); err != nil {
		return fmt.Errorf("failed to save token1: %w", err)
	}

	trackedLiquidityBNB := decimal.Zero
	if !bnbPrice.IsZero() {
		trackedLiquidityBNB = m.oracle.
			TrackedLiquidityUSD(bnbPrice, reserve0, token0, reserve1, token1).
			Div(bnbPrice)
	}

	pair.TrackedReserveBNB = trackedLiquidityBNB
	reserveBNB := reserve0.Mul(derived0).Add(reserve1.Mul(derived1))
	pair.ReserveBNB = reserveBNB
	pair.ReserveUSD = reserveBNB.Mul(bnbPrice)

	token0.TotalLiquidity = token0.TotalLiquidity.Add(reserve0)
	token1.TotalLiquidity = token1.TotalLiquidity.Add(reserve1)

	factory.TotalLiquidityBNB = factory.TotalLiquidityBNB.Add(trackedLiquidityBNB)
	factory.TotalLiquidityUSD = factory.TotalLiquidityBNB.Mul(bnbPrice)

	if err := m.store.SavePair(ctx, pair); err != nil {
		return fmt.Errorf("failed to save pair: %w", err)
	}
	if err := m.store.SaveFactory(ctx, factory); err != nil {
		return fmt.Errorf("failed to save factory: %w", err)
	}
	if err := m.store.SaveToken(ctx, token0); err != nil {
		return fmt.Errorf("failed to save token0: %w", err)
	}
	if err := m.store.SaveToken(ctx, token1); err != nil {
		return fmt.Errorf("failed to save token1: %w", err)
	}
	if err := m.store.SaveBundle(ctx, bundle); err != nil {
		return fmt.Errorf("failed to save bundle: %w", err)
	}
	return nil
}

// handleMint completes the most recent pending mint on the transaction
// with the deposit amounts and USD value, then refreshes the rollups.
func (m *Module) handleMint(ctx context.Context, ec *EventContext) error {
	ev, err := decodeMint(ec.Log)
	if err != nil {
		return err
	}

	pairID := hexAddr(ec.Log.Address)
	pair, err := m.store.LoadPair(ctx, pairID)
	if err != nil {
		return fmt.Errorf("failed to load pair %s: %w", pairID, err)
	}
	if pair == nil {
		return nil
	}

	txHash := strings.ToLower(ec.Log.TxHash.Hex())
	transaction, err := m.store.LoadTransaction(ctx, txHash)
	if err != nil {
		return fmt.Errorf("failed to load transaction %s: %w", txHash, err)
	}
	if transaction == nil || len(transaction.Mints) == 0 {
		return fmt.Errorf("mint event in tx %s has no pending mint record", txHash)
	}
	mint, err := m.store.LoadMint(ctx, transaction.Mints[len(transaction.Mints)-1])
	if err != nil {
		return fmt.Errorf("failed to load mint: %w", err)
	}
	if mint == nil {
		return fmt.Errorf("mint record %s missing", transaction.Mints[len(transaction.Mints)-1])
	}

	token0, token1, factory, bundle, err := m.loadPairContext(ctx, pair)
	if err != nil {
		return err
	}

	amount0 := toDecimal(ev.Amount0, token0.Decimals)
	amount1 := toDecimal(ev.Amount1, token1.Decimals)

	token0.TxCount++
	token1.TxCount++
	pair.TxCount++
	factory.TxCount++

	amountUSD := token1.DerivedBNB.Mul(amount1).
		Add(token0.DerivedBNB.Mul(amount0)).
		Mul(bundle.BNBPrice)

	mint.Sender = hexAddr(ev.Sender)
	mint.Amount0 = amount0
	mint.Amount1 = amount1
	mint.LogIndex = ec.Log.Index
	mint.AmountUSD = amountUSD
	mint.Status = entity.StatusComplete

	if err := m.updateBuckets(ctx, pair, factory, token0, token1, bundle.BNBPrice, ec.Timestamp); err != nil {
		return err
	}

	if err := m.store.SaveMint(ctx, mint); err != nil {
		return fmt.Errorf("failed to save mint: %w", err)
	}
	return m.savePairContext(ctx, pair, factory, token0, token1)
}

// handleBurn completes the most recent burn on the transaction with the
// withdrawal amounts and USD value, then refreshes the rollups.
func (m *Module) handleBurn(ctx context.Context, ec *EventContext) error {
	ev, err := decodeBurn(ec.Log)
	if err != nil {
		return err
	}

	pairID := hexAddr(ec.Log.Address)
	pair, err := m.store.LoadPair(ctx, pairID)
	if err != nil {
		return fmt.Errorf("failed to load pair %s: %w", pairID, err)
	}
	if pair == nil {
		return nil
	}

	txHash := strings.ToLower(ec.Log.TxHash.Hex())
	transaction, err := m.store.LoadTransaction(ctx, txHash)
	if err != nil {
		return fmt.Errorf("failed to load transaction %s: %w", txHash, err)
	}
	if transaction == nil {
		return nil
	}
	if len(transaction.Burns) == 0 {
		return fmt.Errorf("burn event in tx %s has no burn record", txHash)
	}
	burn, err := m.store.LoadBurn(ctx, transaction.Burns[len(transaction.Burns)-1])
	if err != nil {
		return fmt.Errorf("failed to load burn: %w", err)
	}
	if burn == nil {
		return fmt.Errorf("burn record %s missing", transaction.Burns[len(transaction.Burns)-1])
	}

	token0, token1, factory, bundle, err := m.loadPairContext(ctx, pair)
	if err != nil {
		return err
	}

	amount0 := toDecimal(ev.Amount0, token0.Decimals)
	amount1 := toDecimal(ev.Amount1, token1.Decimals)

	token0.TxCount++
	token1.TxCount++
	factory.TxCount++
	pair.TxCount++

	amountUSD := token1.DerivedBNB.Mul(amount1).
		Add(token0.DerivedBNB.Mul(amount0)).
		Mul(bundle.BNBPrice)

	burn.Amount0 = amount0
	burn.Amount1 = amount1
	burn.LogIndex = ec.Log.Index
	burn.AmountUSD = amountUSD
	burn.Status = entity.StatusComplete

	if err := m.updateBuckets(ctx, pair, factory, token0, token1, bundle.BNBPrice, ec.Timestamp); err != nil {
		return err
	}

	if err := m.store.SaveBurn(ctx, burn); err != nil {
		return fmt.Errorf("failed to save burn: %w", err)
	}
	return m.savePairContext(ctx, pair, factory, token0, token1)
}

// handleSwap records a trade: volume accumulation on tokens, pair, and
// factory, an immutable swap record, and swap-owned bucket volume.
func (m *Module) handleSwap(ctx context.Context, ec *EventContext) error {
	ev, err := decodeSwap(ec.Log)
	if err != nil {
		return err
	}

	pairID := hexAddr(ec.Log.Address)
	pair, err := m.store.LoadPair(ctx, pairID)
	if err != nil {
		return fmt.Errorf("failed to load pair %s: %w", pairID, err)
	}
	if pair == nil {
		return nil
	}

	token0, token1, factory, bundle, err := m.loadPairContext(ctx, pair)
	if err != nil {
		return err
	}
	bnbPrice := bundle.BNBPrice

	amount0In := toDecimal(ev.Amount0In, token0.Decimals)
	amount1In := toDecimal(ev.Amount1In, token1.Decimals)
	amount0Out := toDecimal(ev.Amount0Out, token0.Decimals)
	amount1Out := toDecimal(ev.Amount1Out, token1.Decimals)

	amount0Total := amount0Out.Add(amount0In)
	amount1Total := amount1Out.Add(amount1In)

	// Derived value averages both legs; tracked value trusts only
	// whitelisted sides.
	derivedAmountBNB := token1.DerivedBNB.Mul(amount1Total).
		Add(token0.DerivedBNB.Mul(amount0Total)).
		Div(decimal.NewFromInt(2))
	derivedAmountUSD := derivedAmountBNB.Mul(bnbPrice)

	trackedAmountUSD := m.oracle.TrackedVolumeUSD(bnbPrice, amount0Total, token0, amount1Total, token1)
	trackedAmountBNB := decimal.Zero
	if !bnbPrice.IsZero() {
		trackedAmountBNB = trackedAmountUSD.Div(bnbPrice)
	}

	token0.TradeVolume = token0.TradeVolume.Add(amount0Total)
	token0.TradeVolumeUSD = token0.TradeVolumeUSD.Add(trackedAmountUSD)
	token0.UntrackedVolumeUSD = token0.UntrackedVolumeUSD.Add(derivedAmountUSD)

	token1.TradeVolume = token1.TradeVolume.Add(amount1Total)
	token1.TradeVolumeUSD = token1.TradeVolumeUSD.Add(trackedAmountUSD)
	token1.UntrackedVolumeUSD = token1.UntrackedVolumeUSD.Add(derivedAmountUSD)

	token0.TxCount++
	token1.TxCount++

	pair.VolumeUSD = pair.VolumeUSD.Add(trackedAmountUSD)
	pair.VolumeToken0 = pair.VolumeToken0.Add(amount0Total)
	pair.VolumeToken1 = pair.VolumeToken1.Add(amount1Total)
	pair.UntrackedVolumeUSD = pair.UntrackedVolumeUSD.Add(derivedAmountUSD)
	pair.TxCount++

	factory.TotalVolumeUSD = factory.TotalVolumeUSD.Add(trackedAmountUSD)
	factory.TotalVolumeBNB = factory.TotalVolumeBNB.Add(trackedAmountBNB)
	factory.UntrackedVolumeUSD = factory.UntrackedVolumeUSD.Add(derivedAmountUSD)
	factory.TxCount++

	txHash := strings.ToLower(ec.Log.TxHash.Hex())
	transaction, err := m.store.LoadTransaction(ctx, txHash)
	if err != nil {
		return fmt.Errorf("failed to load transaction %s: %w", txHash, err)
	}
	if transaction == nil {
		transaction = &entity.Transaction{
			ID:          txHash,
			BlockNumber: ec.Log.BlockNumber,
			Timestamp:   ec.Timestamp,
		}
	}

	from := ec.TxFrom
	if from == "" {
		from = hexAddr(ev.Sender)
	}

	amountUSD := trackedAmountUSD
	if amountUSD.IsZero() {
		amountUSD = derivedAmountUSD
	}

	swap := &entity.Swap{
		ID:          entity.EventID(txHash, len(transaction.Swaps)),
		Transaction: txHash,
		Timestamp:   transaction.Timestamp,
		Pair:        pairID,
		Sender:      hexAddr(ev.Sender),
		From:        strings.ToLower(from),
		To:          hexAddr(ev.To),
		Amount0In:   amount0In,
		Amount1In:   amount1In,
		Amount0Out:  amount0Out,
		Amount1Out:  amount1Out,
		AmountUSD:   amountUSD,
		LogIndex:    ec.Log.Index,
	}
	transaction.Swaps = append(transaction.Swaps, swap.ID)

	if err := m.store.SaveSwap(ctx, swap); err != nil {
		return fmt.Errorf("failed to save swap: %w", err)
	}
	if err := m.store.SaveTransaction(ctx, transaction); err != nil {
		return fmt.Errorf("failed to save transaction: %w", err)
	}

	pairDay, err := updatePairDayData(ctx, m.store, pair, ec.Timestamp)
	if err != nil {
		return err
	}
	pairHour, err := updatePairHourData(ctx, m.store, pair, ec.Timestamp)
	if err != nil {
		return err
	}
	exchangeDay, err := updateExchangeDayData(ctx, m.store, factory, ec.Timestamp)
	if err != nil {
		return err
	}
	token0Day, err := updateTokenDayData(ctx, m.store, token0, bnbPrice, ec.Timestamp)
	if err != nil {
		return err
	}
	token1Day, err := updateTokenDayData(ctx, m.store, token1, bnbPrice, ec.Timestamp)
	if err != nil {
		return err
	}

	exchangeDay.DailyVolumeUSD = exchangeDay.DailyVolumeUSD.Add(trackedAmountUSD)
	exchangeDay.DailyVolumeBNB = exchangeDay.DailyVolumeBNB.Add(trackedAmountBNB)
	exchangeDay.DailyVolumeUntracked = exchangeDay.DailyVolumeUntracked.Add(derivedAmountUSD)

	pairDay.DailyVolumeToken0 = pairDay.DailyVolumeToken0.Add(amount0Total)
	pairDay.DailyVolumeToken1 = pairDay.DailyVolumeToken1.Add(amount1Total)
	pairDay.DailyVolumeUSD = pairDay.DailyVolumeUSD.Add(trackedAmountUSD)

	pairHour.HourlyVolumeToken0 = pairHour.HourlyVolumeToken0.Add(amount0Total)
	pairHour.HourlyVolumeToken1 = pairHour.HourlyVolumeToken1.Add(amount1Total)
	pairHour.HourlyVolumeUSD = pairHour.HourlyVolumeUSD.Add(trackedAmountUSD)

	token0Day.DailyVolumeToken = token0Day.DailyVolumeToken.Add(amount0Total)
	daily0BNB := amount0Total.Mul(token0.DerivedBNB)
	token0Day.DailyVolumeBNB = token0Day.DailyVolumeBNB.Add(daily0BNB)
	token0Day.DailyVolumeUSD = token0Day.DailyVolumeUSD.Add(daily0BNB.Mul(bnbPrice))

	token1Day.DailyVolumeToken = token1Day.DailyVolumeToken.Add(amount1Total)
	daily1BNB := amount1Total.Mul(token1.DerivedBNB)
	token1Day.DailyVolumeBNB = token1Day.DailyVolumeBNB.Add(daily1BNB)
	token1Day.DailyVolumeUSD = token1Day.DailyVolumeUSD.Add(daily1BNB.Mul(bnbPrice))

	if err := m.store.SaveExchangeDayData(ctx, exchangeDay); err != nil {
		return fmt.Errorf("failed to save exchange day data: %w", err)
	}
	if err := m.store.SavePairDayData(ctx, pairDay); err != nil {
		return fmt.Errorf("failed to save pair day data: %w", err)
	}
	if err := m.store.SavePairHourData(ctx, pairHour); err != nil {
		return fmt.Errorf("failed to save pair hour data: %w", err)
	}
	if err := m.store.SaveTokenDayData(ctx, token0Day); err != nil {
		return fmt.Errorf("failed to save token0 day data: %w", err)
	}
	if err := m.store.SaveTokenDayData(ctx, token1Day); err != nil {
		return fmt.Errorf("failed to save token1 day data: %w", err)
	}

	return m.savePairContext(ctx, pair, factory, token0, token1)
}

// updateBuckets refreshes all five rollups for a mint or burn. Volume
// fields stay untouched; only the swap handler owns those.
func (m *Module) updateBuckets(ctx context.Context, pair *entity.Pair, factory *entity.Factory, token0, token1 *entity.Token, bnbPrice decimal.Decimal, timestamp int64) error {
	pairDay, err := updatePairDayData(ctx, m.store, pair, timestamp)
	if err != nil {
		return err
	}
	pairHour, err := updatePairHourData(ctx, m.store, pair, timestamp)
	if err != nil {
		return err
	}
	exchangeDay, err := updateExchangeDayData(ctx, m.store, factory, timestamp)
	if err != nil {
		return err
	}
	token0Day, err := updateTokenDayData(ctx, m.store, token0, bnbPrice, timestamp)
	if err != nil {
		return err
	}
	token1Day, err := updateTokenDayData(ctx, m.store, token1, bnbPrice, timestamp)
	if err != nil {
		return err
	}

	if err := m.store.SavePairDayData(ctx, pairDay); err != nil {
		return fmt.Errorf("failed to save pair day data: %w", err)
	}
	if err := m.store.SavePairHourData(ctx, pairHour); err != nil {
		return fmt.Errorf("failed to save pair hour data: %w", err)
	}
	if err := m.store.SaveExchangeDayData(ctx, exchangeDay); err != nil {
		return fmt.Errorf("failed to save exchange day data: %w", err)
	}
	if err := m.store.SaveTokenDayData(ctx, token0Day); err != nil {
		return fmt.Errorf("failed to save token0 day data: %w", err)
	}
	if err := m.store.SaveTokenDayData(ctx, token1Day); err != nil {
		return fmt.Errorf("failed to save token1 day data: %w", err)
	}
	return nil
}

// loadPairContext loads the entities every pair-event handler needs.
// All four must exist once the pair does.
func (m *Module) loadPairContext(ctx context.Context, pair *entity.Pair) (*entity.Token, *entity.Token, *entity.Factory, *entity.Bundle, error) {
	token0, err := m.store.LoadToken(ctx, pair.Token0)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to load token0: %w", err)
	}
	if token0 == nil {
		return nil, nil, nil, nil, fmt.Errorf("token %s missing for pair %s", pair.Token0, pair.ID)
	}
	token1, err := m.store.LoadToken(ctx, pair.Token1)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to load token1: %w", err)
	}
	if token1 == nil {
		return nil, nil, nil, nil, fmt.Errorf("token %s missing for pair %s", pair.Token1, pair.ID)
	}
	factory, err := m.store.LoadFactory(ctx, m.factoryAddress)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to load factory: %w", err)
	}
	if factory == nil {
		return nil, nil, nil, nil, fmt.Errorf("factory %s missing", m.factoryAddress)
	}
	bundle, err := m.store.LoadBundle(ctx, entity.BundleID)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to load bundle: %w", err)
	}
	if bundle == nil {
		return nil, nil, nil, nil, fmt.Errorf("bundle missing")
	}
	return token0, token1, factory, bundle, nil
}

func (m *Module) savePairContext(ctx context.Context, pair *entity.Pair, factory *entity.Factory, token0, token1 *entity.Token) error {
	if err := m.store.SaveToken(ctx, token0); err != nil {
		return fmt.Errorf("failed to save token0: %w", err)
	}
	if err := m.store.SaveToken(ctx, token1); err != nil {
		return fmt.Errorf("failed to save token1: %w", err)
	}
	if err := m.store.SavePair(ctx, pair); err != nil {
		return fmt.Errorf("failed to save pair: %w", err)
	}
	if err := m.store.SaveFactory(ctx, factory); err != nil {
		return fmt.Errorf("failed to save factory: %w", err)
	}
	return nil
}
