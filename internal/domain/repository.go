package domain

import (
	"context"
	"time"
)

// Each domain pairs a registry with its own append-only journal. Update
// closures return the entries produced by the mutation so the store can apply
// the balance change and the journal write atomically for the subject key.

// LotRepository is the port for WIP lot persistence
type LotRepository interface {
	Save(ctx context.Context, lot *Lot, entries ...*Entry) error
	FindByNumber(ctx context.Context, lotNumber string) (*Lot, error)
	List(ctx context.Context) ([]*Lot, error)
	Update(ctx context.Context, lotNumber string, fn func(*Lot) ([]*Entry, error)) (*Lot, []*Entry, error)
	ListLedger(ctx context.Context, filter LedgerFilter) ([]*Entry, error)
}

// IssueRepository is the port for issue-to-production persistence. Update
// hands the closure the issue together with its journal entries, since status
// propagation and return credits touch both under one lock.
type IssueRepository interface {
	Save(ctx context.Context, issue *Issue, entries []*Entry) error
	FindByNumber(ctx context.Context, issueNumber string) (*Issue, error)
	List(ctx context.Context) ([]*Issue, error)
	Update(ctx context.Context, issueNumber string, fn func(*Issue, []*Entry) error) (*Issue, error)
	ListLedger(ctx context.Context, filter LedgerFilter) ([]*Entry, error)
}

// StockRepository is the port for raw-material stock persistence
type StockRepository interface {
	Upsert(ctx context.Context, itemID, lotNumber, uom string, fn func(*StockEntry) (*Entry, error)) (*StockEntry, error)
	AppendEntry(ctx context.Context, entry *Entry) error
	List(ctx context.Context) ([]*StockEntry, error)
	ListLedger(ctx context.Context, filter LedgerFilter) ([]*Entry, error)
}

// FGRepository is the port for finished-goods stock, style blocks, and
// dispatches
type FGRepository interface {
	Upsert(ctx context.Context, styleID, color, warehouse string, packingDate time.Time, fn func(*FGStockEntry) ([]*Entry, error)) (*FGStockEntry, error)
	Update(ctx context.Context, styleID, color, warehouse string, fn func(*FGStockEntry) ([]*Entry, error)) (*FGStockEntry, error)
	Find(ctx context.Context, styleID, color, warehouse string) (*FGStockEntry, error)
	List(ctx context.Context) ([]*FGStockEntry, error)
	AppendEntry(ctx context.Context, entry *Entry) error
	ListLedger(ctx context.Context, filter LedgerFilter) ([]*Entry, error)

	SaveBlock(ctx context.Context, block *BlockedStyle) error
	RemoveBlock(ctx context.Context, styleID string) error
	FindBlock(ctx context.Context, styleID string) (*BlockedStyle, bool, error)
	ListBlocked(ctx context.Context) ([]*BlockedStyle, error)

	SaveDispatch(ctx context.Context, dispatch *Dispatch) error
	FindDispatch(ctx context.Context, dispatchID string) (*Dispatch, error)
	ListDispatches(ctx context.Context) ([]*Dispatch, error)
	UpdateDispatch(ctx context.Context, dispatchID string, fn func(*Dispatch) error) (*Dispatch, error)
}
