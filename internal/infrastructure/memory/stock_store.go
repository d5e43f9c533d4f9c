package memory

import (
	"context"
	"sync"

	"github.com/garment-erp/production-ledger/internal/domain"
)

// StockStore is the in-memory raw-material stock registry paired with its
// journal
type StockStore struct {
	mu      sync.RWMutex
	entries map[string]*domain.StockEntry
	ledger  []*domain.Entry
}

// NewStockStore creates an empty stock store
func NewStockStore() *StockStore {
	return &StockStore{
		entries: make(map[string]*domain.StockEntry),
	}
}

// Upsert finds or creates the (itemId, lotNumber) aggregate, runs fn against
// it, and journals the entry fn returns
func (s *StockStore) Upsert(ctx context.Context, itemID, lotNumber, uom string, fn func(*domain.StockEntry) (*domain.Entry, error)) (*domain.StockEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := domain.StockKey(itemID, lotNumber)
	stock, ok := s.entries[key]
	if !ok {
		stock = &domain.StockEntry{
			ItemID:    itemID,
			LotNumber: lotNumber,
			UOM:       uom,
		}
	}

	staged := *stock
	entry, err := fn(&staged)
	if err != nil {
		return nil, err
	}

	s.entries[key] = &staged
	if entry != nil {
		s.ledger = append(s.ledger, entry)
	}
	result := staged
	return &result, nil
}

// AppendEntry journals an audit-only posting with no aggregate effect
func (s *StockStore) AppendEntry(ctx context.Context, entry *domain.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ledger = append(s.ledger, entry)
	return nil
}

// List returns copies of all stock aggregates
func (s *StockStore) List(ctx context.Context) ([]*domain.StockEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]*domain.StockEntry, 0, len(s.entries))
	for _, stock := range s.entries {
		copied := *stock
		entries = append(entries, &copied)
	}
	return entries, nil
}

// ListLedger returns journal entries, most recent first
func (s *StockStore) ListLedger(ctx context.Context, filter domain.LedgerFilter) ([]*domain.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return listReversed(s.ledger, filter), nil
}
