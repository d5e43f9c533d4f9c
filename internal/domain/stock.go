package domain

import "time"

// StockEntry is an aggregate of raw material on hand, keyed by item and lot
type StockEntry struct {
	ItemID    string    `json:"itemId"`
	LotNumber string    `json:"lotNumber"`
	Quantity  int       `json:"quantity"`
	UOM       string    `json:"uom"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// StockKey identifies a raw stock aggregate
func (s *StockEntry) StockKey() string {
	return StockKey(s.ItemID, s.LotNumber)
}

// StockKey builds the (itemId, lotNumber) aggregate key
func StockKey(itemID, lotNumber string) string {
	return itemID + "|" + lotNumber
}

// Credit merges a raw-material credit into the aggregate and returns the
// paired ledger entry with the post-merge balance.
func (s *StockEntry) Credit(qty int, reason, actor string, ids IDSource, now time.Time) (*Entry, error) {
	if qty <= 0 {
		return nil, ErrInvalidQuantity
	}

	s.Quantity += qty
	s.UpdatedAt = now

	return &Entry{
		EntryID:      ids.NewID(PrefixEntry),
		SubjectKey:   s.StockKey(),
		Action:       ActionReturn,
		QuantityIn:   qty,
		BalanceAfter: s.Quantity,
		Actor:        actor,
		Reason:       reason,
		Detail: &StockDetail{
			ItemID:    s.ItemID,
			LotNumber: s.LotNumber,
			UOM:       s.UOM,
		},
		RecordedAt: now,
	}, nil
}

// NewDamagedEntry records a damage posting. Damaged stock is a pure audit
// trail: no aggregate is touched and the balance is fixed at zero.
func NewDamagedEntry(itemID, lotNumber, uom string, qty int, reason, actor string, ids IDSource, now time.Time) (*Entry, error) {
	if qty <= 0 {
		return nil, ErrInvalidQuantity
	}

	return &Entry{
		EntryID:      ids.NewID(PrefixEntry),
		SubjectKey:   StockKey(itemID, lotNumber),
		Action:       ActionDamaged,
		QuantityOut:  qty,
		BalanceAfter: 0,
		Actor:        actor,
		Reason:       reason,
		Detail: &StockDetail{
			ItemID:    itemID,
			LotNumber: lotNumber,
			UOM:       uom,
		},
		RecordedAt: now,
	}, nil
}
