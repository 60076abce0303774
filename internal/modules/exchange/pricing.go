package exchange

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/zilstream/exchange-subgraph/internal/entity"
)

// ReferencePair identifies a stable/wrapped-native pool the oracle uses
// to anchor the wrapped-native USD price. NativeIsToken0 records which
// side of the pool holds the wrapped native token.
type ReferencePair struct {
	Address        string `yaml:"address"`
	NativeIsToken0 bool   `yaml:"nativeIsToken0"`
}

// OracleConfig is the pricing configuration injected into the engine.
// All addresses are lowercased hex.
type OracleConfig struct {
	WrappedNative  string          `yaml:"wrappedNative"`
	ReferencePairs []ReferencePair `yaml:"referencePairs"`
	Whitelist      []string        `yaml:"whitelist"`

	// Pools whose wrapped-native reserve value is at or below this
	// threshold are ignored when deriving token prices. The raw field
	// carries the manifest value; yaml cannot decode straight into a
	// decimal.
	MinimumLiquidityThresholdBNB    decimal.Decimal `yaml:"-"`
	MinimumLiquidityThresholdBNBRaw string          `yaml:"minimumLiquidityThresholdBNB"`
}

// Normalize lowercases every address in the config and parses the raw
// liquidity threshold when one was supplied.
func (c *OracleConfig) Normalize() {
	if c.MinimumLiquidityThresholdBNBRaw != "" {
		if threshold, err := decimal.NewFromString(c.MinimumLiquidityThresholdBNBRaw); err == nil {
			c.MinimumLiquidityThresholdBNB = threshold
		}
	}
	c.WrappedNative = strings.ToLower(c.WrappedNative)
	for i := range c.ReferencePairs {
		c.ReferencePairs[i].Address = strings.ToLower(c.ReferencePairs[i].Address)
	}
	for i := range c.Whitelist {
		c.Whitelist[i] = strings.ToLower(c.Whitelist[i])
	}
}

// PriceOracle derives USD and wrapped-native prices from pool reserves.
// It reads pairs and tokens through the entity store and never touches
// the chain.
type PriceOracle struct {
	config OracleConfig

	whitelisted map[string]bool
}

// NewPriceOracle builds an oracle from a normalized config.
func NewPriceOracle(config OracleConfig) *PriceOracle {
	config.Normalize()
	whitelisted := make(map[string]bool, len(config.Whitelist))
	for _, addr := range config.Whitelist {
		whitelisted[addr] = true
	}
	return &PriceOracle{config: config, whitelisted: whitelisted}
}

// IsWhitelisted reports whether a token participates in tracked volume
// and liquidity.
func (o *PriceOracle) IsWhitelisted(token string) bool {
	return o.whitelisted[token]
}

// BNBPriceUSD computes the USD price of the wrapped native token as the
// liquidity-weighted average of the reference pairs' spot prices. A
// missing reference pair drops out of the average; with no usable pair
// the price is zero.
func (o *PriceOracle) BNBPriceUSD(ctx context.Context, store entity.Store) (decimal.Decimal, error) {
	type anchor struct {
		price  decimal.Decimal
		weight decimal.Decimal
	}

	var anchors []anchor
	totalNative := decimal.Zero
	for _, ref := range o.config.ReferencePairs {
		pair, err := store.LoadPair(ctx, ref.Address)
		if err != nil {
			return decimal.Zero, err
		}
		if pair == nil {
			continue
		}
		var price, nativeReserve decimal.Decimal
		if ref.NativeIsToken0 {
			price = pair.Token1Price
			nativeReserve = pair.Reserve0
		} else {
			price = pair.Token0Price
			nativeReserve = pair.Reserve1
		}
		anchors = append(anchors, anchor{price: price, weight: nativeReserve})
		totalNative = totalNative.Add(nativeReserve)
	}

	switch {
	case len(anchors) == 0:
		return decimal.Zero, nil
	case len(anchors) == 1:
		return anchors[0].price, nil
	case totalNative.IsZero():
		return decimal.Zero, nil
	}

	weighted := decimal.Zero
	for _, a := range anchors {
		weighted = weighted.Add(a.price.Mul(a.weight.Div(totalNative)))
	}
	return weighted, nil
}

// FindBNBPerToken derives a token's price in the wrapped native token by
// walking the whitelist for a pool pairing the token with a whitelisted
// counterpart. The wrapped native token itself is worth exactly one.
// Only one hop is taken; the counterpart's own derived price is read as
// stored.
func (o *PriceOracle) FindBNBPerToken(ctx context.Context, store entity.Store, token *entity.Token) (decimal.Decimal, error) {
	if token.ID == o.config.WrappedNative {
		return decimal.NewFromInt(1), nil
	}

	for _, counterpart := range o.config.Whitelist {
		lookup, err := store.LoadPairLookup(ctx, entity.PairLookupID(token.ID, counterpart))
		if err != nil {
			return decimal.Zero, err
		}
		if lookup == nil {
			continue
		}
		pair, err := store.LoadPair(ctx, lookup.Pair)
		if err != nil {
			return decimal.Zero, err
		}
		if pair == nil {
			continue
		}
		if !pair.ReserveBNB.GreaterThan(o.config.MinimumLiquidityThresholdBNB) {
			continue
		}
		if pair.Token0 == token.ID {
			other, err := store.LoadToken(ctx, pair.Token1)
			if err != nil {
				return decimal.Zero, err
			}
			if other == nil {
				continue
			}
			return pair.Token1Price.Mul(other.DerivedBNB), nil
		}
		if pair.Token1 == token.ID {
			other, err := store.LoadToken(ctx, pair.Token0)
			if err != nil {
				return decimal.Zero, err
			}
			if other == nil {
				continue
			}
			return pair.Token0Price.Mul(other.DerivedBNB), nil
		}
	}

	return decimal.Zero, nil
}

// TrackedVolumeUSD values a trade using only whitelisted sides. With
// both tokens whitelisted the two USD legs are averaged; with one, that
// leg stands alone; with neither, the tracked volume is zero.
func (o *PriceOracle) TrackedVolumeUSD(bnbPrice, amount0 decimal.Decimal, token0 *entity.Token, amount1 decimal.Decimal, token1 *entity.Token) decimal.Decimal {
	price0 := token0.DerivedBNB.Mul(bnbPrice)
	price1 := token1.DerivedBNB.Mul(bnbPrice)

	wl0 := o.whitelisted[token0.ID]
	wl1 := o.whitelisted[token1.ID]

	switch {
	case wl0 && wl1:
		return amount0.Mul(price0).Add(amount1.Mul(price1)).Div(decimal.NewFromInt(2))
	case wl0:
		return amount0.Mul(price0)
	case wl1:
		return amount1.Mul(price1)
	}
	return decimal.Zero
}

// TrackedLiquidityUSD values pool reserves using only whitelisted sides.
// With one whitelisted token its side is doubled to stand in for the
// unpriced side; with neither, tracked liquidity is zero.
func (o *PriceOracle) TrackedLiquidityUSD(bnbPrice, amount0 decimal.Decimal, token0 *entity.Token, amount1 decimal.Decimal, token1 *entity.Token) decimal.Decimal {
	price0 := token0.DerivedBNB.Mul(bnbPrice)
	price1 := token1.DerivedBNB.Mul(bnbPrice)

	wl0 := o.whitelisted[token0.ID]
	wl1 := o.whitelisted[token1.ID]

	switch {
	case wl0 && wl1:
		return amount0.Mul(price0).Add(amount1.Mul(price1))
	case wl0:
		return amount0.Mul(price0).Mul(decimal.NewFromInt(2))
	case wl1:
		return amount1.Mul(price1).Mul(decimal.NewFromInt(2))
	}
	return decimal.Zero
}
