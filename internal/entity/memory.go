package entity

import "context"

// MemoryStore is an in-memory Store. Used by engine tests and as a
// scratch store for replay verification. Records are copied on both save
// and load so callers never share memory with the store, matching the
// load/mutate/save cycle of the database-backed store.
type MemoryStore struct {
	factories    map[string]Factory
	bundles      map[string]Bundle
	tokens       map[string]Token
	pairs        map[string]Pair
	pairLookups  map[string]PairLookup
	transactions map[string]Transaction
	mints        map[string]Mint
	burns        map[string]Burn
	swaps        map[string]Swap
	exchangeDays map[string]ExchangeDayData
	pairDays     map[string]PairDayData
	pairHours    map[string]PairHourData
	tokenDays    map[string]TokenDayData
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		factories:    make(map[string]Factory),
		bundles:      make(map[string]Bundle),
		tokens:       make(map[string]Token),
		pairs:        make(map[string]Pair),
		pairLookups:  make(map[string]PairLookup),
		transactions: make(map[string]Transaction),
		mints:        make(map[string]Mint),
		burns:        make(map[string]Burn),
		swaps:        make(map[string]Swap),
		exchangeDays: make(map[string]ExchangeDayData),
		pairDays:     make(map[string]PairDayData),
		pairHours:    make(map[string]PairHourData),
		tokenDays:    make(map[string]TokenDayData),
	}
}

var _ Store = (*MemoryStore)(nil)

func (s *MemoryStore) LoadFactory(_ context.Context, id string) (*Factory, error) {
	if f, ok := s.factories[id]; ok {
		return &f, nil
	}
	return nil, nil
}

func (s *MemoryStore) SaveFactory(_ context.Context, f *Factory) error {
	s.factories[f.ID] = *f
	return nil
}

func (s *MemoryStore) LoadBundle(_ context.Context, id string) (*Bundle, error) {
	if b, ok := s.bundles[id]; ok {
		return &b, nil
	}
	return nil, nil
}

func (s *MemoryStore) SaveBundle(_ context.Context, b *Bundle) error {
	s.bundles[b.ID] = *b
	return nil
}

func (s *MemoryStore) LoadToken(_ context.Context, id string) (*Token, error) {
	if t, ok := s.tokens[id]; ok {
		return &t, nil
	}
	return nil, nil
}

func (s *MemoryStore) SaveToken(_ context.Context, t *Token) error {
	s.tokens[t.ID] = *t
	return nil
}

func (s *MemoryStore) LoadPair(_ context.Context, id string) (*Pair, error) {
	if p, ok := s.pairs[id]; ok {
		return &p, nil
	}
	return nil, nil
}

func (s *MemoryStore) SavePair(_ context.Context, p *Pair) error {
	s.pairs[p.ID] = *p
	return nil
}

func (s *MemoryStore) LoadPairLookup(_ context.Context, id string) (*PairLookup, error) {
	if l, ok := s.pairLookups[id]; ok {
		return &l, nil
	}
	return nil, nil
}

func (s *MemoryStore) SavePairLookup(_ context.Context, l *PairLookup) error {
	s.pairLookups[l.ID] = *l
	return nil
}

func (s *MemoryStore) LoadTransaction(_ context.Context, id string) (*Transaction, error) {
	if t, ok := s.transactions[id]; ok {
		cp := t
		cp.Mints = append([]string(nil), t.Mints...)
		cp.Burns = append([]string(nil), t.Burns...)
		cp.Swaps = append([]string(nil), t.Swaps...)
		return &cp, nil
	}
	return nil, nil
}

func (s *MemoryStore) SaveTransaction(_ context.Context, t *Transaction) error {
	cp := *t
	cp.Mints = append([]string(nil), t.Mints...)
	cp.Burns = append([]string(nil), t.Burns...)
	cp.Swaps = append([]string(nil), t.Swaps...)
	s.transactions[t.ID] = cp
	return nil
}

func (s *MemoryStore) LoadMint(_ context.Context, id string) (*Mint, error) {
	if m, ok := s.mints[id]; ok {
		return &m, nil
	}
	return nil, nil
}

func (s *MemoryStore) SaveMint(_ context.Context, m *Mint) error {
	s.mints[m.ID] = *m
	return nil
}

func (s *MemoryStore) DeleteMint(_ context.Context, id string) error {
	if _, ok := s.mints[id]; !ok {
		return ErrNotFound
	}
	delete(s.mints, id)
	return nil
}

func (s *MemoryStore) LoadBurn(_ context.Context, id string) (*Burn, error) {
	if b, ok := s.burns[id]; ok {
		return &b, nil
	}
	return nil, nil
}

func (s *MemoryStore) SaveBurn(_ context.Context, b *Burn) error {
	s.burns[b.ID] = *b
	return nil
}

func (s *MemoryStore) LoadSwap(_ context.Context, id string) (*Swap, error) {
	if sw, ok := s.swaps[id]; ok {
		return &sw, nil
	}
	return nil, nil
}

func (s *MemoryStore) SaveSwap(_ context.Context, sw *Swap) error {
	s.swaps[sw.ID] = *sw
	return nil
}

func (s *MemoryStore) LoadExchangeDayData(_ context.Context, id string) (*ExchangeDayData, error) {
	if d, ok := s.exchangeDays[id]; ok {
		return &d, nil
	}
	return nil, nil
}

func (s *MemoryStore) SaveExchangeDayData(_ context.Context, d *ExchangeDayData) error {
	s.exchangeDays[d.ID] = *d
	return nil
}

func (s *MemoryStore) LoadPairDayData(_ context.Context, id string) (*PairDayData, error) {
	if d, ok := s.pairDays[id]; ok {
		return &d, nil
	}
	return nil, nil
}

func (s *MemoryStore) SavePairDayData(_ context.Context, d *PairDayData) error {
	s.pairDays[d.ID] = *d
	return nil
}

func (s *MemoryStore) LoadPairHourData(_ context.Context, id string) (*PairHourData, error) {
	if d, ok := s.pairHours[id]; ok {
		return &d, nil
	}
	return nil, nil
}

func (s *MemoryStore) SavePairHourData(_ context.Context, d *PairHourData) error {
	s.pairHours[d.ID] = *d
	return nil
}

func (s *MemoryStore) LoadTokenDayData(_ context.Context, id string) (*TokenDayData, error) {
	if d, ok := s.tokenDays[id]; ok {
		return &d, nil
	}
	return nil, nil
}

func (s *MemoryStore) SaveTokenDayData(_ context.Context, d *TokenDayData) error {
	s.tokenDays[d.ID] = *d
	return nil
}
