package domain

import "time"

// DispatchStatus represents the lifecycle state of a dispatch
type DispatchStatus string

const (
	DispatchStatusPlanned    DispatchStatus = "planned"
	DispatchStatusDispatched DispatchStatus = "dispatched"
)

// String returns the string representation of the dispatch status
func (s DispatchStatus) String() string {
	return string(s)
}

// ReturnRoute is the destination of a processed dispatch return
type ReturnRoute string

const (
	ReturnRouteFG    ReturnRoute = "FG"
	ReturnRouteWIP   ReturnRoute = "WIP"
	ReturnRouteScrap ReturnRoute = "Scrap"
)

// IsValid checks if the return route is valid
func (r ReturnRoute) IsValid() bool {
	switch r {
	case ReturnRouteFG, ReturnRouteWIP, ReturnRouteScrap:
		return true
	default:
		return false
	}
}

// String returns the string representation of the return route
func (r ReturnRoute) String() string {
	return string(r)
}

// FGStockEntry is the packed-goods aggregate for one (style, color, warehouse)
// key. TotalPieces always equals the sum of the size breakdown.
type FGStockEntry struct {
	StyleID       string         `json:"styleId"`
	Color         string         `json:"color"`
	Warehouse     string         `json:"warehouse"`
	CartonCount   int            `json:"cartonCount"`
	TotalPieces   int            `json:"totalPieces"`
	SizeBreakdown map[string]int `json:"sizeBreakdown"`
	PackingDate   time.Time      `json:"packingDate"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

// FGKey builds the (style, color, warehouse) aggregate key
func FGKey(styleID, color, warehouse string) string {
	return styleID + "|" + color + "|" + warehouse
}

// Key returns the aggregate key of the entry
func (f *FGStockEntry) Key() string {
	return FGKey(f.StyleID, f.Color, f.Warehouse)
}

// NewFGStockEntry creates an empty aggregate, stamped with its first packing date
func NewFGStockEntry(styleID, color, warehouse string, packingDate time.Time) *FGStockEntry {
	return &FGStockEntry{
		StyleID:       styleID,
		Color:         color,
		Warehouse:     warehouse,
		SizeBreakdown: make(map[string]int),
		PackingDate:   packingDate,
		UpdatedAt:     packingDate,
	}
}

// AddPacking credits cartons and pieces of one size into the aggregate and
// returns the paired ledger entry with the post-increment piece balance.
func (f *FGStockEntry) AddPacking(packingNo, size string, cartons, pieces int, actor string, ids IDSource, now time.Time) (*Entry, error) {
	if pieces <= 0 || cartons < 0 {
		return nil, ErrInvalidQuantity
	}

	f.CartonCount += cartons
	f.TotalPieces += pieces
	f.SizeBreakdown[size] += pieces
	f.UpdatedAt = now

	return &Entry{
		EntryID:      ids.NewID(PrefixEntry),
		SubjectKey:   f.Key(),
		Action:       ActionPacking,
		QuantityIn:   pieces,
		BalanceAfter: f.TotalPieces,
		Actor:        actor,
		Detail: &PackingDetail{
			PackingNo: packingNo,
			Size:      size,
			Cartons:   cartons,
		},
		RecordedAt: now,
	}, nil
}

// CreditReturn re-credits returned pieces through the packing-increment path,
// journaled as a return rather than a packing.
func (f *FGStockEntry) CreditReturn(dispatchNo, size string, cartons, pieces int, actor string, ids IDSource, now time.Time) (*Entry, error) {
	if pieces <= 0 || cartons < 0 {
		return nil, ErrInvalidQuantity
	}

	f.CartonCount += cartons
	f.TotalPieces += pieces
	f.SizeBreakdown[size] += pieces
	f.UpdatedAt = now

	return &Entry{
		EntryID:      ids.NewID(PrefixEntry),
		SubjectKey:   f.Key(),
		Action:       ActionReturn,
		QuantityIn:   pieces,
		BalanceAfter: f.TotalPieces,
		Actor:        actor,
		Detail: &ReturnDetail{
			DispatchNo: dispatchNo,
			RoutedTo:   ReturnRouteFG,
			Size:       size,
		},
		RecordedAt: now,
	}, nil
}

// Deduct debits cartons and pieces of one size without journaling. Callers
// validating a multi-line dispatch run it against scratch copies so no
// aggregate is committed until every line clears.
func (f *FGStockEntry) Deduct(size string, cartons, pieces int) error {
	if pieces <= 0 || cartons < 0 {
		return ErrInvalidQuantity
	}
	if f.TotalPieces < pieces || f.SizeBreakdown[size] < pieces || f.CartonCount < cartons {
		return ErrInsufficientBalance
	}

	f.CartonCount -= cartons
	f.TotalPieces -= pieces
	f.SizeBreakdown[size] -= pieces
	return nil
}

// DeductDispatch debits one dispatch allocation from the aggregate. Over-
// allocation is rejected rather than driving the balance negative.
func (f *FGStockEntry) DeductDispatch(dispatchID, dispatchNo, size string, cartons, pieces int, actor string, ids IDSource, now time.Time) (*Entry, error) {
	if err := f.Deduct(size, cartons, pieces); err != nil {
		return nil, err
	}
	f.UpdatedAt = now

	return &Entry{
		EntryID:      ids.NewID(PrefixEntry),
		SubjectKey:   f.Key(),
		Action:       ActionDispatch,
		QuantityOut:  pieces,
		BalanceAfter: f.TotalPieces,
		Actor:        actor,
		Detail: &DispatchDetail{
			DispatchID: dispatchID,
			DispatchNo: dispatchNo,
			Size:       size,
			Cartons:    cartons,
		},
		RecordedAt: now,
	}, nil
}

// ApplyRepackDelta applies one signed carton-level piece delta. Negative
// results are rejected.
func (f *FGStockEntry) ApplyRepackDelta(packingNo, cartonNo, size string, delta int, actor string, ids IDSource, now time.Time) (*Entry, error) {
	if delta == 0 {
		return nil, ErrInvalidQuantity
	}
	if delta < 0 && (f.TotalPieces+delta < 0 || f.SizeBreakdown[size]+delta < 0) {
		return nil, ErrInsufficientBalance
	}

	f.TotalPieces += delta
	f.SizeBreakdown[size] += delta
	f.UpdatedAt = now

	entry := &Entry{
		EntryID:      ids.NewID(PrefixEntry),
		SubjectKey:   f.Key(),
		Action:       ActionRepack,
		BalanceAfter: f.TotalPieces,
		Actor:        actor,
		Detail: &RepackDetail{
			PackingNo: packingNo,
			CartonNo:  cartonNo,
			Size:      size,
			Delta:     delta,
		},
		RecordedAt: now,
	}
	if delta > 0 {
		entry.QuantityIn = delta
		entry.Reason = "Repack add"
	} else {
		entry.QuantityOut = -delta
		entry.Reason = "Repack remove"
	}

	return entry, nil
}

// BlockedStyle gates dispatch eligibility for one style
type BlockedStyle struct {
	StyleID   string    `json:"styleId"`
	Reason    string    `json:"reason"`
	BlockedBy string    `json:"blockedBy"`
	BlockedAt time.Time `json:"blockedAt"`
}

// DispatchAllocation is one line of a dispatch
type DispatchAllocation struct {
	StyleID   string `json:"styleId"`
	Color     string `json:"color"`
	Size      string `json:"size"`
	Warehouse string `json:"warehouse"`
	Cartons   int    `json:"cartons"`
	Pieces    int    `json:"pieces"`
}

// Dispatch is a planned-then-confirmed outbound shipment. Stock is only
// debited on confirmation.
type Dispatch struct {
	DispatchID  string               `json:"dispatchId"`
	DispatchNo  string               `json:"dispatchNo"`
	CustomerID  string               `json:"customerId"`
	Allocations []DispatchAllocation `json:"allocations"`
	Status      DispatchStatus       `json:"status"`
	CreatedAt   time.Time            `json:"createdAt"`
	ConfirmedAt *time.Time           `json:"confirmedAt,omitempty"`
}

// TotalPieces sums all allocation piece counts
func (d *Dispatch) TotalPieces() int {
	total := 0
	for _, a := range d.Allocations {
		total += a.Pieces
	}
	return total
}

// NewDispatch creates a planned dispatch with no stock effect
func NewDispatch(dispatchNo, customerID string, allocations []DispatchAllocation, ids IDSource, now time.Time) (*Dispatch, error) {
	if len(allocations) == 0 {
		return nil, ErrInvalidQuantity
	}
	for _, a := range allocations {
		if a.Pieces <= 0 || a.Cartons < 0 {
			return nil, ErrInvalidQuantity
		}
	}

	return &Dispatch{
		DispatchID:  ids.NewID(PrefixDispatch),
		DispatchNo:  dispatchNo,
		CustomerID:  customerID,
		Allocations: allocations,
		Status:      DispatchStatusPlanned,
		CreatedAt:   now,
	}, nil
}

// MarkDispatched transitions the dispatch out of planned
func (d *Dispatch) MarkDispatched(now time.Time) error {
	if d.Status != DispatchStatusPlanned {
		return ErrDispatchNotPlanned
	}
	d.Status = DispatchStatusDispatched
	d.ConfirmedAt = &now
	return nil
}

// RepackItem is one carton line of a packing list, before or after repack
type RepackItem struct {
	CartonNo string `json:"cartonNo"`
	Size     string `json:"size"`
	Color    string `json:"color"`
	Pieces   int    `json:"pieces"`
}

// RepackDelta is a signed piece adjustment for one (cartonNo, size, color)
type RepackDelta struct {
	CartonNo string
	Size     string
	Color    string
	Delta    int
}

// ComputeRepackDeltas diffs original against new carton contents and returns
// the signed per-line deltas, dropping zero deltas.
func ComputeRepackDeltas(original, updated []RepackItem) []RepackDelta {
	type lineKey struct {
		cartonNo string
		size     string
		color    string
	}

	counts := make(map[lineKey]int)
	order := make([]lineKey, 0, len(original)+len(updated))
	for _, item := range updated {
		k := lineKey{item.CartonNo, item.Size, item.Color}
		if _, seen := counts[k]; !seen {
			order = append(order, k)
		}
		counts[k] += item.Pieces
	}
	for _, item := range original {
		k := lineKey{item.CartonNo, item.Size, item.Color}
		if _, seen := counts[k]; !seen {
			order = append(order, k)
		}
		counts[k] -= item.Pieces
	}

	deltas := make([]RepackDelta, 0, len(order))
	for _, k := range order {
		if counts[k] == 0 {
			continue
		}
		deltas = append(deltas, RepackDelta{
			CartonNo: k.cartonNo,
			Size:     k.size,
			Color:    k.color,
			Delta:    counts[k],
		})
	}
	return deltas
}
