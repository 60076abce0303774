package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/zilstream/exchange-subgraph/internal/entity"
)

// EntityStore implements entity.Store on top of Postgres. Saves are
// upserts keyed by entity id; loads report absence as (nil, nil).
// Numeric columns travel as strings to keep exact decimal values.
type EntityStore struct {
	pool *pgxpool.Pool
}

// NewEntityStore creates a store backed by the given pool.
func NewEntityStore(pool *pgxpool.Pool) *EntityStore {
	return &EntityStore{pool: pool}
}

var _ entity.Store = (*EntityStore)(nil)

func parseDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

func (s *EntityStore) LoadFactory(ctx context.Context, id string) (*entity.Factory, error) {
	query := `
		SELECT id, pair_count,
		       total_volume_usd::text, total_volume_bnb::text, untracked_volume_usd::text,
		       total_liquidity_bnb::text, total_liquidity_usd::text, tx_count
		FROM factories WHERE id = $1`

	var f entity.Factory
	var volUSD, volBNB, untracked, liqBNB, liqUSD string
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&f.ID, &f.PairCount, &volUSD, &volBNB, &untracked, &liqBNB, &liqUSD, &f.TxCount,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("load factory %s: %w", id, err)
	}

	for _, field := range []struct {
		dst *decimal.Decimal
		src string
	}{
		{&f.TotalVolumeUSD, volUSD},
		{&f.TotalVolumeBNB, volBNB},
		{&f.UntrackedVolumeUSD, untracked},
		{&f.TotalLiquidityBNB, liqBNB},
		{&f.TotalLiquidityUSD, liqUSD},
	} {
		if *field.dst, err = parseDecimal(field.src); err != nil {
			return nil, fmt.Errorf("load factory %s: %w", id, err)
		}
	}
	return &f, nil
}

func (s *EntityStore) SaveFactory(ctx context.Context, f *entity.Factory) error {
	query := `
		INSERT INTO factories (id, pair_count, total_volume_usd, total_volume_bnb,
		                       untracked_volume_usd, total_liquidity_bnb, total_liquidity_usd, tx_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			pair_count = EXCLUDED.pair_count,
			total_volume_usd = EXCLUDED.total_volume_usd,
			total_volume_bnb = EXCLUDED.total_volume_bnb,
			untracked_volume_usd = EXCLUDED.untracked_volume_usd,
			total_liquidity_bnb = EXCLUDED.total_liquidity_bnb,
			total_liquidity_usd = EXCLUDED.total_liquidity_usd,
			tx_count = EXCLUDED.tx_count`

	_, err := s.pool.Exec(ctx, query,
		f.ID, f.PairCount, f.TotalVolumeUSD.String(), f.TotalVolumeBNB.String(),
		f.UntrackedVolumeUSD.String(), f.TotalLiquidityBNB.String(), f.TotalLiquidityUSD.String(), f.TxCount,
	)
	if err != nil {
		return fmt.Errorf("save factory %s: %w", f.ID, err)
	}
	return nil
}

func (s *EntityStore) LoadBundle(ctx context.Context, id string) (*entity.Bundle, error) {
	var b entity.Bundle
	var price string
	err := s.pool.QueryRow(ctx, `SELECT id, bnb_price::text FROM bundles WHERE id = $1`, id).
		Scan(&b.ID, &price)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("load bundle %s: %w", id, err)
	}
	if b.BNBPrice, err = parseDecimal(price); err != nil {
		return nil, fmt.Errorf("load bundle %s: %w", id, err)
	}
	return &b, nil
}

func (s *EntityStore) SaveBundle(ctx context.Context, b *entity.Bundle) error {
	query := `
		INSERT INTO bundles (id, bnb_price) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET bnb_price = EXCLUDED.bnb_price`

	if _, err := s.pool.Exec(ctx, query, b.ID, b.BNBPrice.String()); err != nil {
		return fmt.Errorf("save bundle %s: %w", b.ID, err)
	}
	return nil
}

func (s *EntityStore) LoadToken(ctx context.Context, id string) (*entity.Token, error) {
	query := `
		SELECT id, symbol, name, decimals, total_supply::text,
		       trade_volume::text, trade_volume_usd::text, untracked_volume_usd::text,
		       total_liquidity::text, derived_bnb::text, previous_derived_bnb::text, tx_count
		FROM tokens WHERE id = $1`

	var t entity.Token
	var supply, vol, volUSD, untracked, liquidity, derived, prevDerived string
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&t.ID, &t.Symbol, &t.Name, &t.Decimals, &supply,
		&vol, &volUSD, &untracked, &liquidity, &derived, &prevDerived, &t.TxCount,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("load token %s: %w", id, err)
	}

	for _, field := range []struct {
		dst *decimal.Decimal
		src string
	}{
		{&t.TotalSupply, supply},
		{&t.TradeVolume, vol},
		{&t.TradeVolumeUSD, volUSD},
		{&t.UntrackedVolumeUSD, untracked},
		{&t.TotalLiquidity, liquidity},
		{&t.DerivedBNB, derived},
		{&t.PreviousDerivedBNB, prevDerived},
	} {
		if *field.dst, err = parseDecimal(field.src); err != nil {
			return nil, fmt.Errorf("load token %s: %w", id, err)
		}
	}
	return &t, nil
}

func (s *EntityStore) SaveToken(ctx context.Context, t *entity.Token) error {
	query := `
		INSERT INTO tokens (id, symbol, name, decimals, total_supply,
		                    trade_volume, trade_volume_usd, untracked_volume_usd,
		                    total_liquidity, derived_bnb, previous_derived_bnb, tx_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			symbol = EXCLUDED.symbol,
			name = EXCLUDED.name,
			decimals = EXCLUDED.decimals,
			total_supply = EXCLUDED.total_supply,
			trade_volume = EXCLUDED.trade_volume,
			trade_volume_usd = EXCLUDED.trade_volume_usd,
			untracked_volume_usd = EXCLUDED.untracked_volume_usd,
			total_liquidity = EXCLUDED.total_liquidity,
			derived_bnb = EXCLUDED.derived_bnb,
			previous_derived_bnb = EXCLUDED.previous_derived_bnb,
			tx_count = EXCLUDED.tx_count`

	_, err := s.pool.Exec(ctx, query,
		t.ID, t.Symbol, t.Name, t.Decimals, t.TotalSupply.String(),
		t.TradeVolume.String(), t.TradeVolumeUSD.String(), t.UntrackedVolumeUSD.String(),
		t.TotalLiquidity.String(), t.DerivedBNB.String(), t.PreviousDerivedBNB.String(), t.TxCount,
	)
	if err != nil {
		return fmt.Errorf("save token %s: %w", t.ID, err)
	}
	return nil
}

func (s *EntityStore) LoadPair(ctx context.Context, id string) (*entity.Pair, error) {
	query := `
		SELECT id, token0, token1, reserve0::text, reserve1::text, total_supply::text,
		       reserve_bnb::text, reserve_usd::text, tracked_reserve_bnb::text,
		       token0_price::text, token1_price::text,
		       volume_token0::text, volume_token1::text, volume_usd::text, untracked_volume_usd::text,
		       tx_count, created_at_timestamp, created_at_block_number
		FROM pairs WHERE id = $1`

	var p entity.Pair
	var r0, r1, supply, resBNB, resUSD, trackedBNB, p0, p1, v0, v1, vUSD, untracked string
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Token0, &p.Token1, &r0, &r1, &supply,
		&resBNB, &resUSD, &trackedBNB, &p0, &p1, &v0, &v1, &vUSD, &untracked,
		&p.TxCount, &p.CreatedAtTimestamp, &p.CreatedAtBlockNumber,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("load pair %s: %w", id, err)
	}

	for _, field := range []struct {
		dst *decimal.Decimal
		src string
	}{
		{&p.Reserve0, r0},
		{&p.Reserve1, r1},
		{&p.TotalSupply, supply},
		{&p.ReserveBNB, resBNB},
		{&p.ReserveUSD, resUSD},
		{&p.TrackedReserveBNB, trackedBNB},
		{&p.Token0Price, p0},
		{&p.Token1Price, p1},
		{&p.VolumeToken0, v0},
		{&p.VolumeToken1, v1},
		{&p.VolumeUSD, vUSD},
		{&p.UntrackedVolumeUSD, untracked},
	} {
		if *field.dst, err = parseDecimal(field.src); err != nil {
			return nil, fmt.Errorf("load pair %s: %w", id, err)
		}
	}
	return &p, nil
}

func (s *EntityStore) SavePair(ctx context.Context, p *entity.Pair) error {
	query := `
		INSERT INTO pairs (id, token0, token1, reserve0, reserve1, total_supply,
		                   reserve_bnb, reserve_usd, tracked_reserve_bnb,
		                   token0_price, token1_price,
		                   volume_token0, volume_token1, volume_usd, untracked_volume_usd,
		                   tx_count, created_at_timestamp, created_at_block_number)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		ON CONFLICT (id) DO UPDATE SET
			reserve0 = EXCLUDED.reserve0,
			reserve1 = EXCLUDED.reserve1,
			total_supply = EXCLUDED.total_supply,
			reserve_bnb = EXCLUDED.reserve_bnb,
			reserve_usd = EXCLUDED.reserve_usd,
			tracked_reserve_bnb = EXCLUDED.tracked_reserve_bnb,
			token0_price = EXCLUDED.token0_price,
			token1_price = EXCLUDED.token1_price,
			volume_token0 = EXCLUDED.volume_token0,
			volume_token1 = EXCLUDED.volume_token1,
			volume_usd = EXCLUDED.volume_usd,
			untracked_volume_usd = EXCLUDED.untracked_volume_usd,
			tx_count = EXCLUDED.tx_count`

	_, err := s.pool.Exec(ctx, query,
		p.ID, p.Token0, p.Token1, p.Reserve0.String(), p.Reserve1.String(), p.TotalSupply.String(),
		p.ReserveBNB.String(), p.ReserveUSD.String(), p.TrackedReserveBNB.String(),
		p.Token0Price.String(), p.Token1Price.String(),
		p.VolumeToken0.String(), p.VolumeToken1.String(), p.VolumeUSD.String(), p.UntrackedVolumeUSD.String(),
		p.TxCount, p.CreatedAtTimestamp, p.CreatedAtBlockNumber,
	)
	if err != nil {
		return fmt.Errorf("save pair %s: %w", p.ID, err)
	}
	return nil
}

func (s *EntityStore) LoadPairLookup(ctx context.Context, id string) (*entity.PairLookup, error) {
	var l entity.PairLookup
	err := s.pool.QueryRow(ctx, `SELECT id, pair FROM pair_lookups WHERE id = $1`, id).
		Scan(&l.ID, &l.Pair)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("load pair lookup %s: %w", id, err)
	}
	return &l, nil
}

func (s *EntityStore) SavePairLookup(ctx context.Context, l *entity.PairLookup) error {
	query := `
		INSERT INTO pair_lookups (id, pair) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET pair = EXCLUDED.pair`

	if _, err := s.pool.Exec(ctx, query, l.ID, l.Pair); err != nil {
		return fmt.Errorf("save pair lookup %s: %w", l.ID, err)
	}
	return nil
}

func (s *EntityStore) LoadTransaction(ctx context.Context, id string) (*entity.Transaction, error) {
	query := `SELECT id, block_number, timestamp, mints, burns, swaps FROM transactions WHERE id = $1`

	var t entity.Transaction
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&t.ID, &t.BlockNumber, &t.Timestamp, &t.Mints, &t.Burns, &t.Swaps,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("load transaction %s: %w", id, err)
	}
	return &t, nil
}

func (s *EntityStore) SaveTransaction(ctx context.Context, t *entity.Transaction) error {
	mints, err := json.Marshal(t.Mints)
	if err != nil {
		return fmt.Errorf("save transaction %s: %w", t.ID, err)
	}
	burns, err := json.Marshal(t.Burns)
	if err != nil {
		return fmt.Errorf("save transaction %s: %w", t.ID, err)
	}
	swaps, err := json.Marshal(t.Swaps)
	if err != nil {
		return fmt.Errorf("save transaction %s: %w", t.ID, err)
	}

	query := `
		INSERT INTO transactions (id, block_number, timestamp, mints, burns, swaps)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			mints = EXCLUDED.mints,
			burns = EXCLUDED.burns,
			swaps = EXCLUDED.swaps`

	if _, err := s.pool.Exec(ctx, query, t.ID, t.BlockNumber, t.Timestamp,
		string(mints), string(burns), string(swaps)); err != nil {
		return fmt.Errorf("save transaction %s: %w", t.ID, err)
	}
	return nil
}

func (s *EntityStore) LoadMint(ctx context.Context, id string) (*entity.Mint, error) {
	query := `
		SELECT id, transaction_id, timestamp, pair, to_address, liquidity::text, status,
		       sender, amount0::text, amount1::text, log_index, amount_usd::text
		FROM mints WHERE id = $1`

	var m entity.Mint
	var liquidity, amount0, amount1, amountUSD string
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&m.ID, &m.Transaction, &m.Timestamp, &m.Pair, &m.To, &liquidity, &m.Status,
		&m.Sender, &amount0, &amount1, &m.LogIndex, &amountUSD,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("load mint %s: %w", id, err)
	}

	for _, field := range []struct {
		dst *decimal.Decimal
		src string
	}{
		{&m.Liquidity, liquidity},
		{&m.Amount0, amount0},
		{&m.Amount1, amount1},
		{&m.AmountUSD, amountUSD},
	} {
		if *field.dst, err = parseDecimal(field.src); err != nil {
			return nil, fmt.Errorf("load mint %s: %w", id, err)
		}
	}
	return &m, nil
}

func (s *EntityStore) SaveMint(ctx context.Context, m *entity.Mint) error {
	query := `
		INSERT INTO mints (id, transaction_id, timestamp, pair, to_address, liquidity, status,
		                   sender, amount0, amount1, log_index, amount_usd)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			liquidity = EXCLUDED.liquidity,
			status = EXCLUDED.status,
			sender = EXCLUDED.sender,
			amount0 = EXCLUDED.amount0,
			amount1 = EXCLUDED.amount1,
			log_index = EXCLUDED.log_index,
			amount_usd = EXCLUDED.amount_usd`

	_, err := s.pool.Exec(ctx, query,
		m.ID, m.Transaction, m.Timestamp, m.Pair, m.To, m.Liquidity.String(), string(m.Status),
		m.Sender, m.Amount0.String(), m.Amount1.String(), m.LogIndex, m.AmountUSD.String(),
	)
	if err != nil {
		return fmt.Errorf("save mint %s: %w", m.ID, err)
	}
	return nil
}

func (s *EntityStore) DeleteMint(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM mints WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete mint %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return entity.ErrNotFound
	}
	return nil
}

func (s *EntityStore) LoadBurn(ctx context.Context, id string) (*entity.Burn, error) {
	query := `
		SELECT id, transaction_id, timestamp, pair, liquidity::text, status,
		       sender, to_address, amount0::text, amount1::text, log_index, amount_usd::text,
		       fee_to, fee_liquidity::text
		FROM burns WHERE id = $1`

	var b entity.Burn
	var liquidity, amount0, amount1, amountUSD, feeLiquidity string
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&b.ID, &b.Transaction, &b.Timestamp, &b.Pair, &liquidity, &b.Status,
		&b.Sender, &b.To, &amount0, &amount1, &b.LogIndex, &amountUSD,
		&b.FeeTo, &feeLiquidity,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("load burn %s: %w", id, err)
	}

	for _, field := range []struct {
		dst *decimal.Decimal
		src string
	}{
		{&b.Liquidity, liquidity},
		{&b.Amount0, amount0},
		{&b.Amount1, amount1},
		{&b.AmountUSD, amountUSD},
		{&b.FeeLiquidity, feeLiquidity},
	} {
		if *field.dst, err = parseDecimal(field.src); err != nil {
			return nil, fmt.Errorf("load burn %s: %w", id, err)
		}
	}
	return &b, nil
}

func (s *EntityStore) SaveBurn(ctx context.Context, b *entity.Burn) error {
	query := `
		INSERT INTO burns (id, transaction_id, timestamp, pair, liquidity, status,
		                   sender, to_address, amount0, amount1, log_index, amount_usd,
		                   fee_to, fee_liquidity)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id) DO UPDATE SET
			liquidity = EXCLUDED.liquidity,
			status = EXCLUDED.status,
			sender = EXCLUDED.sender,
			to_address = EXCLUDED.to_address,
			amount0 = EXCLUDED.amount0,
			amount1 = EXCLUDED.amount1,
			log_index = EXCLUDED.log_index,
			amount_usd = EXCLUDED.amount_usd,
			fee_to = EXCLUDED.fee_to,
			fee_liquidity = EXCLUDED.fee_liquidity`

	_, err := s.pool.Exec(ctx, query,
		b.ID, b.Transaction, b.Timestamp, b.Pair, b.Liquidity.String(), string(b.Status),
		b.Sender, b.To, b.Amount0.String(), b.Amount1.String(), b.LogIndex, b.AmountUSD.String(),
		b.FeeTo, b.FeeLiquidity.String(),
	)
	if err != nil {
		return fmt.Errorf("save burn %s: %w", b.ID, err)
	}
	return nil
}

func (s *EntityStore) LoadSwap(ctx context.Context, id string) (*entity.Swap, error) {
	query := `
		SELECT id, transaction_id, timestamp, pair, sender, from_address, to_address,
		       amount0_in::text, amount1_in::text, amount0_out::text, amount1_out::text,
		       amount_usd::text, log_index
		FROM swaps WHERE id = $1`

	var sw entity.Swap
	var in0, in1, out0, out1, amountUSD string
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&sw.ID, &sw.Transaction, &sw.Timestamp, &sw.Pair, &sw.Sender, &sw.From, &sw.To,
		&in0, &in1, &out0, &out1, &amountUSD, &sw.LogIndex,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("load swap %s: %w", id, err)
	}

	for _, field := range []struct {
		dst *decimal.Decimal
		src string
	}{
		{&sw.Amount0In, in0},
		{&sw.Amount1In, in1},
		{&sw.Amount0Out, out0},
		{&sw.Amount1Out, out1},
		{&sw.AmountUSD, amountUSD},
	} {
		if *field.dst, err = parseDecimal(field.src); err != nil {
			return nil, fmt.Errorf("load swap %s: %w", id, err)
		}
	}
	return &sw, nil
}

func (s *EntityStore) SaveSwap(ctx context.Context, sw *entity.Swap) error {
	query := `
		INSERT INTO swaps (id, transaction_id, timestamp, pair, sender, from_address, to_address,
		                   amount0_in, amount1_in, amount0_out, amount1_out, amount_usd, log_index)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO NOTHING`

	_, err := s.pool.Exec(ctx, query,
		sw.ID, sw.Transaction, sw.Timestamp, sw.Pair, sw.Sender, sw.From, sw.To,
		sw.Amount0In.String(), sw.Amount1In.String(), sw.Amount0Out.String(), sw.Amount1Out.String(),
		sw.AmountUSD.String(), sw.LogIndex,
	)
	if err != nil {
		return fmt.Errorf("save swap %s: %w", sw.ID, err)
	}
	return nil
}

func (s *EntityStore) LoadExchangeDayData(ctx context.Context, id string) (*entity.ExchangeDayData, error) {
	query := `
		SELECT id, date, daily_volume_bnb::text, daily_volume_usd::text, daily_volume_untracked::text,
		       total_volume_bnb::text, total_volume_usd::text,
		       total_liquidity_bnb::text, total_liquidity_usd::text, tx_count
		FROM exchange_day_data WHERE id = $1`

	var d entity.ExchangeDayData
	var dailyBNB, dailyUSD, dailyUntracked, totalBNB, totalUSD, liqBNB, liqUSD string
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&d.ID, &d.Date, &dailyBNB, &dailyUSD, &dailyUntracked,
		&totalBNB, &totalUSD, &liqBNB, &liqUSD, &d.TxCount,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("load exchange day data %s: %w", id, err)
	}

	for _, field := range []struct {
		dst *decimal.Decimal
		src string
	}{
		{&d.DailyVolumeBNB, dailyBNB},
		{&d.DailyVolumeUSD, dailyUSD},
		{&d.DailyVolumeUntracked, dailyUntracked},
		{&d.TotalVolumeBNB, totalBNB},
		{&d.TotalVolumeUSD, totalUSD},
		{&d.TotalLiquidityBNB, liqBNB},
		{&d.TotalLiquidityUSD, liqUSD},
	} {
		if *field.dst, err = parseDecimal(field.src); err != nil {
			return nil, fmt.Errorf("load exchange day data %s: %w", id, err)
		}
	}
	return &d, nil
}

func (s *EntityStore) SaveExchangeDayData(ctx context.Context, d *entity.ExchangeDayData) error {
	query := `
		INSERT INTO exchange_day_data (id, date, daily_volume_bnb, daily_volume_usd, daily_volume_untracked,
		                               total_volume_bnb, total_volume_usd,
		                               total_liquidity_bnb, total_liquidity_usd, tx_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			daily_volume_bnb = EXCLUDED.daily_volume_bnb,
			daily_volume_usd = EXCLUDED.daily_volume_usd,
			daily_volume_untracked = EXCLUDED.daily_volume_untracked,
			total_volume_bnb = EXCLUDED.total_volume_bnb,
			total_volume_usd = EXCLUDED.total_volume_usd,
			total_liquidity_bnb = EXCLUDED.total_liquidity_bnb,
			total_liquidity_usd = EXCLUDED.total_liquidity_usd,
			tx_count = EXCLUDED.tx_count`

	_, err := s.pool.Exec(ctx, query,
		d.ID, d.Date, d.DailyVolumeBNB.String(), d.DailyVolumeUSD.String(), d.DailyVolumeUntracked.String(),
		d.TotalVolumeBNB.String(), d.TotalVolumeUSD.String(),
		d.TotalLiquidityBNB.String(), d.TotalLiquidityUSD.String(), d.TxCount,
	)
	if err != nil {
		return fmt.Errorf("save exchange day data %s: %w", d.ID, err)
	}
	return nil
}

func (s *EntityStore) LoadPairDayData(ctx context.Context, id string) (*entity.PairDayData, error) {
	query := `
		SELECT id, date, pair_address, token0, token1,
		       reserve0::text, reserve1::text, total_supply::text, reserve_usd::text,
		       daily_volume_token0::text, daily_volume_token1::text, daily_volume_usd::text, daily_txns
		FROM pair_day_data WHERE id = $1`

	var d entity.PairDayData
	var r0, r1, supply, resUSD, v0, v1, vUSD string
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&d.ID, &d.Date, &d.PairAddress, &d.Token0, &d.Token1,
		&r0, &r1, &supply, &resUSD, &v0, &v1, &vUSD, &d.DailyTxns,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("load pair day data %s: %w", id, err)
	}

	for _, field := range []struct {
		dst *decimal.Decimal
		src string
	}{
		{&d.Reserve0, r0},
		{&d.Reserve1, r1},
		{&d.TotalSupply, supply},
		{&d.ReserveUSD, resUSD},
		{&d.DailyVolumeToken0, v0},
		{&d.DailyVolumeToken1, v1},
		{&d.DailyVolumeUSD, vUSD},
	} {
		if *field.dst, err = parseDecimal(field.src); err != nil {
			return nil, fmt.Errorf("load pair day data %s: %w", id, err)
		}
	}
	return &d, nil
}

func (s *EntityStore) SavePairDayData(ctx context.Context, d *entity.PairDayData) error {
	query := `
		INSERT INTO pair_day_data (id, date, pair_address, token0, token1,
		                           reserve0, reserve1, total_supply, reserve_usd,
		                           daily_volume_token0, daily_volume_token1, daily_volume_usd, daily_txns)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
			reserve0 = EXCLUDED.reserve0,
			reserve1 = EXCLUDED.reserve1,
			total_supply = EXCLUDED.total_supply,
			reserve_usd = EXCLUDED.reserve_usd,
			daily_volume_token0 = EXCLUDED.daily_volume_token0,
			daily_volume_token1 = EXCLUDED.daily_volume_token1,
			daily_volume_usd = EXCLUDED.daily_volume_usd,
			daily_txns = EXCLUDED.daily_txns`

	_, err := s.pool.Exec(ctx, query,
		d.ID, d.Date, d.PairAddress, d.Token0, d.Token1,
		d.Reserve0.String(), d.Reserve1.String(), d.TotalSupply.String(), d.ReserveUSD.String(),
		d.DailyVolumeToken0.String(), d.DailyVolumeToken1.String(), d.DailyVolumeUSD.String(), d.DailyTxns,
	)
	if err != nil {
		return fmt.Errorf("save pair day data %s: %w", d.ID, err)
	}
	return nil
}

func (s *EntityStore) LoadPairHourData(ctx context.Context, id string) (*entity.PairHourData, error) {
	query := `
		SELECT id, hour_start_unix, pair,
		       reserve0::text, reserve1::text, reserve_usd::text,
		       hourly_volume_token0::text, hourly_volume_token1::text, hourly_volume_usd::text, hourly_txns
		FROM pair_hour_data WHERE id = $1`

	var d entity.PairHourData
	var r0, r1, resUSD, v0, v1, vUSD string
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&d.ID, &d.HourStartUnix, &d.Pair,
		&r0, &r1, &resUSD, &v0, &v1, &vUSD, &d.HourlyTxns,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("load pair hour data %s: %w", id, err)
	}

	for _, field := range []struct {
		dst *decimal.Decimal
		src string
	}{
		{&d.Reserve0, r0},
		{&d.Reserve1, r1},
		{&d.ReserveUSD, resUSD},
		{&d.HourlyVolumeToken0, v0},
		{&d.HourlyVolumeToken1, v1},
		{&d.HourlyVolumeUSD, vUSD},
	} {
		if *field.dst, err = parseDecimal(field.src); err != nil {
			return nil, fmt.Errorf("load pair hour data %s: %w", id, err)
		}
	}
	return &d, nil
}

func (s *EntityStore) SavePairHourData(ctx context.Context, d *entity.PairHourData) error {
	query := `
		INSERT INTO pair_hour_data (id, hour_start_unix, pair,
		                            reserve0, reserve1, reserve_usd,
		                            hourly_volume_token0, hourly_volume_token1, hourly_volume_usd, hourly_txns)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			reserve0 = EXCLUDED.reserve0,
			reserve1 = EXCLUDED.reserve1,
			reserve_usd = EXCLUDED.reserve_usd,
			hourly_volume_token0 = EXCLUDED.hourly_volume_token0,
			hourly_volume_token1 = EXCLUDED.hourly_volume_token1,
			hourly_volume_usd = EXCLUDED.hourly_volume_usd,
			hourly_txns = EXCLUDED.hourly_txns`

	_, err := s.pool.Exec(ctx, query,
		d.ID, d.HourStartUnix, d.Pair,
		d.Reserve0.String(), d.Reserve1.String(), d.ReserveUSD.String(),
		d.HourlyVolumeToken0.String(), d.HourlyVolumeToken1.String(), d.HourlyVolumeUSD.String(), d.HourlyTxns,
	)
	if err != nil {
		return fmt.Errorf("save pair hour data %s: %w", d.ID, err)
	}
	return nil
}

func (s *EntityStore) LoadTokenDayData(ctx context.Context, id string) (*entity.TokenDayData, error) {
	query := `
		SELECT id, date, token,
		       daily_volume_token::text, daily_volume_bnb::text, daily_volume_usd::text, daily_txns,
		       total_liquidity_token::text, total_liquidity_bnb::text, total_liquidity_usd::text,
		       price_usd::text
		FROM token_day_data WHERE id = $1`

	var d entity.TokenDayData
	var volToken, volBNB, volUSD, liqToken, liqBNB, liqUSD, price string
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&d.ID, &d.Date, &d.Token,
		&volToken, &volBNB, &volUSD, &d.DailyTxns,
		&liqToken, &liqBNB, &liqUSD, &price,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("load token day data %s: %w", id, err)
	}

	for _, field := range []struct {
		dst *decimal.Decimal
		src string
	}{
		{&d.DailyVolumeToken, volToken},
		{&d.DailyVolumeBNB, volBNB},
		{&d.DailyVolumeUSD, volUSD},
		{&d.TotalLiquidityToken, liqToken},
		{&d.TotalLiquidityBNB, liqBNB},
		{&d.TotalLiquidityUSD, liqUSD},
		{&d.PriceUSD, price},
	} {
		if *field.dst, err = parseDecimal(field.src); err != nil {
			return nil, fmt.Errorf("load token day data %s: %w", id, err)
		}
	}
	return &d, nil
}

func (s *EntityStore) SaveTokenDayData(ctx context.Context, d *entity.TokenDayData) error {
	query := `
		INSERT INTO token_day_data (id, date, token,
		                            daily_volume_token, daily_volume_bnb, daily_volume_usd, daily_txns,
		                            total_liquidity_token, total_liquidity_bnb, total_liquidity_usd, price_usd)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			daily_volume_token = EXCLUDED.daily_volume_token,
			daily_volume_bnb = EXCLUDED.daily_volume_bnb,
			daily_volume_usd = EXCLUDED.daily_volume_usd,
			daily_txns = EXCLUDED.daily_txns,
			total_liquidity_token = EXCLUDED.total_liquidity_token,
			total_liquidity_bnb = EXCLUDED.total_liquidity_bnb,
			total_liquidity_usd = EXCLUDED.total_liquidity_usd,
			price_usd = EXCLUDED.price_usd`

	_, err := s.pool.Exec(ctx, query,
		d.ID, d.Date, d.Token,
		d.DailyVolumeToken.String(), d.DailyVolumeBNB.String(), d.DailyVolumeUSD.String(), d.DailyTxns,
		d.TotalLiquidityToken.String(), d.TotalLiquidityBNB.String(), d.TotalLiquidityUSD.String(), d.PriceUSD.String(),
	)
	if err != nil {
		return fmt.Errorf("save token day data %s: %w", d.ID, err)
	}
	return nil
}
