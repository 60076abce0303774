package entity

import (
	"context"
	"errors"
)

// ErrNotFound is returned by store implementations for operations that
// require an existing record (deletes). Plain loads report absence as a
// nil record with a nil error, mirroring the load-or-null semantics the
// handlers are written against.
var ErrNotFound = errors.New("entity not found")

// Store is the persistent entity store the engine runs against. All
// reads and writes within one event handler happen on the same store;
// saves are upserts keyed by entity id.
//
// Load methods return (nil, nil) when no record exists. Errors are
// reserved for store failures.
type Store interface {
	LoadFactory(ctx context.Context, id string) (*Factory, error)
	SaveFactory(ctx context.Context, f *Factory) error

	LoadBundle(ctx context.Context, id string) (*Bundle, error)
	SaveBundle(ctx context.Context, b *Bundle) error

	LoadToken(ctx context.Context, id string) (*Token, error)
	SaveToken(ctx context.Context, t *Token) error

	LoadPair(ctx context.Context, id string) (*Pair, error)
	SavePair(ctx context.Context, p *Pair) error

	LoadPairLookup(ctx context.Context, id string) (*PairLookup, error)
	SavePairLookup(ctx context.Context, l *PairLookup) error

	LoadTransaction(ctx context.Context, id string) (*Transaction, error)
	SaveTransaction(ctx context.Context, t *Transaction) error

	LoadMint(ctx context.Context, id string) (*Mint, error)
	SaveMint(ctx context.Context, m *Mint) error
	// DeleteMint removes a mint absorbed into a burn as a fee mint. This
	// is the only hard delete in the model.
	DeleteMint(ctx context.Context, id string) error

	LoadBurn(ctx context.Context, id string) (*Burn, error)
	SaveBurn(ctx context.Context, b *Burn) error

	LoadSwap(ctx context.Context, id string) (*Swap, error)
	SaveSwap(ctx context.Context, s *Swap) error

	LoadExchangeDayData(ctx context.Context, id string) (*ExchangeDayData, error)
	SaveExchangeDayData(ctx context.Context, d *ExchangeDayData) error

	LoadPairDayData(ctx context.Context, id string) (*PairDayData, error)
	SavePairDayData(ctx context.Context, d *PairDayData) error

	LoadPairHourData(ctx context.Context, id string) (*PairHourData, error)
	SavePairHourData(ctx context.Context, d *PairHourData) error

	LoadTokenDayData(ctx context.Context, id string) (*TokenDayData, error)
	SaveTokenDayData(ctx context.Context, d *TokenDayData) error
}
