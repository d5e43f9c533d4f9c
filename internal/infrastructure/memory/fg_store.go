package memory

import (
	"context"
	"sync"
	"time"

	"github.com/garment-erp/production-ledger/internal/domain"
)

// FGStore is the in-memory finished-goods registry paired with its journal,
// plus the blocked-style map and dispatch records
type FGStore struct {
	mu         sync.RWMutex
	stock      map[string]*domain.FGStockEntry
	ledger     []*domain.Entry
	blocked    map[string]*domain.BlockedStyle
	dispatches map[string]*domain.Dispatch
}

// NewFGStore creates an empty finished-goods store
func NewFGStore() *FGStore {
	return &FGStore{
		stock:      make(map[string]*domain.FGStockEntry),
		blocked:    make(map[string]*domain.BlockedStyle),
		dispatches: make(map[string]*domain.Dispatch),
	}
}

// Upsert finds or creates the (style, color, warehouse) aggregate, runs fn
// against it, and journals the entries fn returns
func (s *FGStore) Upsert(ctx context.Context, styleID, color, warehouse string, packingDate time.Time, fn func(*domain.FGStockEntry) ([]*domain.Entry, error)) (*domain.FGStockEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := domain.FGKey(styleID, color, warehouse)
	stock, ok := s.stock[key]
	if !ok {
		stock = domain.NewFGStockEntry(styleID, color, warehouse, packingDate)
	}

	staged := cloneFGEntry(stock)
	entries, err := fn(staged)
	if err != nil {
		return nil, err
	}

	s.stock[key] = staged
	s.ledger = append(s.ledger, entries...)
	return cloneFGEntry(staged), nil
}

// Update runs fn against an existing aggregate; missing keys fail
func (s *FGStore) Update(ctx context.Context, styleID, color, warehouse string, fn func(*domain.FGStockEntry) ([]*domain.Entry, error)) (*domain.FGStockEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := domain.FGKey(styleID, color, warehouse)
	stock, ok := s.stock[key]
	if !ok {
		return nil, domain.ErrStockEntryNotFound
	}

	staged := cloneFGEntry(stock)
	entries, err := fn(staged)
	if err != nil {
		return nil, err
	}

	s.stock[key] = staged
	s.ledger = append(s.ledger, entries...)
	return cloneFGEntry(staged), nil
}

// Find returns a copy of the (style, color, warehouse) aggregate
func (s *FGStore) Find(ctx context.Context, styleID, color, warehouse string) (*domain.FGStockEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stock, ok := s.stock[domain.FGKey(styleID, color, warehouse)]
	if !ok {
		return nil, domain.ErrStockEntryNotFound
	}
	return cloneFGEntry(stock), nil
}

// List returns copies of all finished-goods aggregates
func (s *FGStore) List(ctx context.Context) ([]*domain.FGStockEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]*domain.FGStockEntry, 0, len(s.stock))
	for _, stock := range s.stock {
		entries = append(entries, cloneFGEntry(stock))
	}
	return entries, nil
}

// AppendEntry journals an audit-only posting with no aggregate effect
func (s *FGStore) AppendEntry(ctx context.Context, entry *domain.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ledger = append(s.ledger, entry)
	return nil
}

// ListLedger returns journal entries, most recent first
func (s *FGStore) ListLedger(ctx context.Context, filter domain.LedgerFilter) ([]*domain.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return listReversed(s.ledger, filter), nil
}

// SaveBlock records a dispatch block for a style
func (s *FGStore) SaveBlock(ctx context.Context, block *domain.BlockedStyle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.blocked[block.StyleID] = block
	return nil
}

// RemoveBlock lifts a style's dispatch block
func (s *FGStore) RemoveBlock(ctx context.Context, styleID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.blocked, styleID)
	return nil
}

// FindBlock reports whether a style is blocked
func (s *FGStore) FindBlock(ctx context.Context, styleID string) (*domain.BlockedStyle, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	block, ok := s.blocked[styleID]
	if !ok {
		return nil, false, nil
	}
	copied := *block
	return &copied, true, nil
}

// ListBlocked returns all blocked styles
func (s *FGStore) ListBlocked(ctx context.Context) ([]*domain.BlockedStyle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	blocks := make([]*domain.BlockedStyle, 0, len(s.blocked))
	for _, block := range s.blocked {
		copied := *block
		blocks = append(blocks, &copied)
	}
	return blocks, nil
}

// SaveDispatch records a planned dispatch
func (s *FGStore) SaveDispatch(ctx context.Context, dispatch *domain.Dispatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.dispatches[dispatch.DispatchID] = dispatch
	return nil
}

// FindDispatch returns a copy of the dispatch
func (s *FGStore) FindDispatch(ctx context.Context, dispatchID string) (*domain.Dispatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	dispatch, ok := s.dispatches[dispatchID]
	if !ok {
		return nil, domain.ErrDispatchNotFound
	}
	return cloneDispatch(dispatch), nil
}

// ListDispatches returns copies of all dispatches
func (s *FGStore) ListDispatches(ctx context.Context) ([]*domain.Dispatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	dispatches := make([]*domain.Dispatch, 0, len(s.dispatches))
	for _, dispatch := range s.dispatches {
		dispatches = append(dispatches, cloneDispatch(dispatch))
	}
	return dispatches, nil
}

// UpdateDispatch runs fn against the live dispatch under the store lock
func (s *FGStore) UpdateDispatch(ctx context.Context, dispatchID string, fn func(*domain.Dispatch) error) (*domain.Dispatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dispatch, ok := s.dispatches[dispatchID]
	if !ok {
		return nil, domain.ErrDispatchNotFound
	}

	staged := cloneDispatch(dispatch)
	if err := fn(staged); err != nil {
		return nil, err
	}

	s.dispatches[dispatchID] = staged
	return cloneDispatch(staged), nil
}

func cloneFGEntry(stock *domain.FGStockEntry) *domain.FGStockEntry {
	copied := *stock
	copied.SizeBreakdown = make(map[string]int, len(stock.SizeBreakdown))
	for size, pieces := range stock.SizeBreakdown {
		copied.SizeBreakdown[size] = pieces
	}
	return &copied
}

func cloneDispatch(dispatch *domain.Dispatch) *domain.Dispatch {
	copied := *dispatch
	copied.Allocations = make([]domain.DispatchAllocation, len(dispatch.Allocations))
	copy(copied.Allocations, dispatch.Allocations)
	if dispatch.ConfirmedAt != nil {
		confirmedAt := *dispatch.ConfirmedAt
		copied.ConfirmedAt = &confirmedAt
	}
	return &copied
}
