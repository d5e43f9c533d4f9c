package memory

import (
	"context"
	"sync"

	"github.com/garment-erp/production-ledger/internal/domain"
)

// LotStore is the in-memory WIP lot registry paired with its journal. The
// store mutex makes every update closure atomic: the balance mutation and the
// journal append land together or not at all.
type LotStore struct {
	mu     sync.RWMutex
	lots   map[string]*domain.Lot
	ledger []*domain.Entry
}

// NewLotStore creates an empty lot store
func NewLotStore() *LotStore {
	return &LotStore{
		lots: make(map[string]*domain.Lot),
	}
}

// Save creates a lot and journals its opening entries
func (s *LotStore) Save(ctx context.Context, lot *domain.Lot, entries ...*domain.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.lots[lot.LotNumber]; exists {
		return domain.ErrLotAlreadyExists
	}
	s.lots[lot.LotNumber] = lot
	s.ledger = append(s.ledger, entries...)
	return nil
}

// FindByNumber returns a copy of the lot
func (s *LotStore) FindByNumber(ctx context.Context, lotNumber string) (*domain.Lot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lot, ok := s.lots[lotNumber]
	if !ok {
		return nil, domain.ErrLotNotFound
	}
	return lot.Clone(), nil
}

// List returns copies of all lots
func (s *LotStore) List(ctx context.Context) ([]*domain.Lot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lots := make([]*domain.Lot, 0, len(s.lots))
	for _, lot := range s.lots {
		lots = append(lots, lot.Clone())
	}
	return lots, nil
}

// Update runs fn against the live lot under the store lock and journals the
// entries it returns. On error nothing is persisted.
func (s *LotStore) Update(ctx context.Context, lotNumber string, fn func(*domain.Lot) ([]*domain.Entry, error)) (*domain.Lot, []*domain.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lot, ok := s.lots[lotNumber]
	if !ok {
		return nil, nil, domain.ErrLotNotFound
	}

	staged := lot.Clone()
	entries, err := fn(staged)
	if err != nil {
		return nil, nil, err
	}

	// the stored copy drops pending events, the caller's copy keeps them
	s.lots[lotNumber] = staged.Clone()
	s.ledger = append(s.ledger, entries...)
	return staged, entries, nil
}

// ListLedger returns journal entries, most recent first
func (s *LotStore) ListLedger(ctx context.Context, filter domain.LedgerFilter) ([]*domain.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return listReversed(s.ledger, filter), nil
}

// listReversed filters a journal into reverse-chronological order. Insertion
// order is the source of truth, so reversal is positional.
func listReversed(ledger []*domain.Entry, filter domain.LedgerFilter) []*domain.Entry {
	entries := make([]*domain.Entry, 0, len(ledger))
	for i := len(ledger) - 1; i >= 0; i-- {
		if filter.Matches(ledger[i]) {
			entries = append(entries, ledger[i])
		}
	}
	return entries
}
