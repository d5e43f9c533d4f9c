package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LotStatus represents the status of a WIP lot
type LotStatus string

const (
	LotStatusActive   LotStatus = "active"
	LotStatusOnHold   LotStatus = "on_hold"
	LotStatusReleased LotStatus = "released"
	LotStatusClosed   LotStatus = "closed"
)

// IsValid checks if the lot status is valid
func (s LotStatus) IsValid() bool {
	switch s {
	case LotStatusActive, LotStatusOnHold, LotStatusReleased, LotStatusClosed:
		return true
	default:
		return false
	}
}

// String returns the string representation of the lot status
func (s LotStatus) String() string {
	return string(s)
}

// Lot is a unit of production quantity moving through manufacturing stages.
// It is the single source of truth for per-stage WIP balances; every mutation
// returns the ledger entries that must be journaled with it.
type Lot struct {
	LotNumber      string               `json:"lotNumber"`
	ParentLot      string               `json:"parentLot,omitempty"` // lineage for splits, carried but not acted on
	StyleID        string               `json:"styleId"`
	Color          string               `json:"color"`
	Size           string               `json:"size"`
	UOM            string               `json:"uom"`
	TotalQty       int                  `json:"totalQty"`
	Balances       map[ProcessStage]int `json:"balances"`
	CurrentProcess ProcessStage         `json:"currentProcess"`
	Status         LotStatus            `json:"status"`
	HoldReason     string               `json:"holdReason,omitempty"`
	HoldDate       *time.Time           `json:"holdDate,omitempty"`
	CreatedAt      time.Time            `json:"createdAt"`
	UpdatedAt      time.Time            `json:"updatedAt"`

	events []DomainEvent
}

// NewLot creates an active lot with the full quantity sitting in the opening stage
func NewLot(lotNumber, parentLot, styleID, color, size, uom string, totalQty int, openingStage ProcessStage, now time.Time) (*Lot, error) {
	if totalQty <= 0 {
		return nil, ErrInvalidQuantity
	}
	if !openingStage.IsValid() {
		return nil, ErrInvalidStage
	}

	return &Lot{
		LotNumber:      lotNumber,
		ParentLot:      parentLot,
		StyleID:        styleID,
		Color:          color,
		Size:           size,
		UOM:            uom,
		TotalQty:       totalQty,
		Balances:       map[ProcessStage]int{openingStage: totalQty},
		CurrentProcess: openingStage,
		Status:         LotStatusActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// AggregateBalance returns the sum of all stage balances
func (l *Lot) AggregateBalance() int {
	total := 0
	for _, qty := range l.Balances {
		total += qty
	}
	return total
}

// StageBalance returns the balance sitting in one stage
func (l *Lot) StageBalance(stage ProcessStage) int {
	return l.Balances[stage]
}

// Hold places the lot on hold. Balances are untouched; the entry carries a
// zero quantity delta.
func (l *Lot) Hold(reason, actor string, ids IDSource, now time.Time) (*Entry, error) {
	if l.Status == LotStatusClosed {
		return nil, ErrLotClosed
	}

	l.Status = LotStatusOnHold
	l.HoldReason = reason
	l.HoldDate = &now
	l.UpdatedAt = now

	return &Entry{
		EntryID:      ids.NewID(PrefixEntry),
		SubjectKey:   l.LotNumber,
		Action:       ActionHold,
		BalanceAfter: l.AggregateBalance(),
		Actor:        actor,
		Reason:       reason,
		RecordedAt:   now,
	}, nil
}

// Release lifts a hold and makes the lot available again
func (l *Lot) Release(actor string, ids IDSource, now time.Time) (*Entry, error) {
	if l.Status == LotStatusClosed {
		return nil, ErrLotClosed
	}

	l.Status = LotStatusReleased
	l.HoldReason = ""
	l.HoldDate = nil
	l.UpdatedAt = now

	return &Entry{
		EntryID:      ids.NewID(PrefixEntry),
		SubjectKey:   l.LotNumber,
		Action:       ActionRelease,
		BalanceAfter: l.AggregateBalance(),
		Actor:        actor,
		RecordedAt:   now,
	}, nil
}

// Transfer moves qty out of the current stage toward a destination bin.
// The destination is a physical location, not a stage: CurrentProcess does
// not change and no stage is credited.
func (l *Lot) Transfer(destination string, qty int, reason, actor string, ids IDSource, now time.Time) (*Entry, error) {
	if l.Status == LotStatusClosed {
		return nil, ErrLotClosed
	}
	if qty <= 0 {
		return nil, ErrInvalidQuantity
	}
	if l.Balances[l.CurrentProcess] < qty {
		return nil, ErrInsufficientBalance
	}

	l.Balances[l.CurrentProcess] -= qty
	l.UpdatedAt = now

	return &Entry{
		EntryID:      ids.NewID(PrefixEntry),
		SubjectKey:   l.LotNumber,
		Action:       ActionTransfer,
		QuantityOut:  qty,
		BalanceAfter: l.AggregateBalance(),
		Actor:        actor,
		Reason:       reason,
		Detail: &TransferDetail{
			TransferID: ids.NewID(PrefixTransfer),
			FromLine:   l.CurrentProcess.String(),
			ToLine:     destination,
			Status:     "in_transit",
		},
		RecordedAt: now,
	}, nil
}

// Rework moves qty from one stage to another within the lot. Quantity is
// conserved: the aggregate balance is unchanged.
func (l *Lot) Rework(fromProcess, toProcess ProcessStage, qty int, remarks string, ids IDSource, now time.Time) (*Entry, error) {
	if l.Status == LotStatusClosed {
		return nil, ErrLotClosed
	}
	if !fromProcess.IsValid() || !toProcess.IsValid() {
		return nil, ErrInvalidStage
	}
	if qty <= 0 {
		return nil, ErrInvalidQuantity
	}
	if l.Balances[fromProcess] < qty {
		return nil, ErrInsufficientBalance
	}

	l.Balances[fromProcess] -= qty
	l.Balances[toProcess] += qty
	l.UpdatedAt = now

	return &Entry{
		EntryID:      ids.NewID(PrefixEntry),
		SubjectKey:   l.LotNumber,
		Action:       ActionRework,
		QuantityIn:   qty,
		QuantityOut:  qty,
		BalanceAfter: l.AggregateBalance(),
		Reason:       remarks,
		Detail: &ReworkDetail{
			ReworkID:    ids.NewID(PrefixRework),
			FromProcess: fromProcess,
			ToProcess:   toProcess,
			Status:      "reworked",
		},
		RecordedAt: now,
	}, nil
}

// Finish subtracts finished quantity from the current stage. When the
// aggregate balance drains to exactly zero the lot closes and a second entry
// records the auto-close. The finished pieces graduate to finished goods only
// through a separate packing-close posting.
func (l *Lot) Finish(finishedQty int, actor string, ids IDSource, now time.Time) ([]*Entry, error) {
	if l.Status == LotStatusClosed {
		return nil, ErrLotClosed
	}
	if finishedQty <= 0 {
		return nil, ErrInvalidQuantity
	}
	if l.Balances[l.CurrentProcess] < finishedQty {
		return nil, ErrInsufficientBalance
	}

	l.Balances[l.CurrentProcess] -= finishedQty
	l.UpdatedAt = now

	entries := []*Entry{{
		EntryID:      ids.NewID(PrefixEntry),
		SubjectKey:   l.LotNumber,
		Action:       ActionFinish,
		QuantityOut:  finishedQty,
		BalanceAfter: l.AggregateBalance(),
		Actor:        actor,
		RecordedAt:   now,
	}}

	if l.AggregateBalance() == 0 {
		l.Status = LotStatusClosed
		entries = append(entries, &Entry{
			EntryID:      ids.NewID(PrefixEntry),
			SubjectKey:   l.LotNumber,
			Action:       ActionFinish,
			BalanceAfter: 0,
			Actor:        actor,
			Reason:       "Auto-closed, converted to FG",
			RecordedAt:   now,
		})
		l.addDomainEvent(LotFinishedEvent{
			LotNumber:   l.LotNumber,
			StyleID:     l.StyleID,
			FinishedQty: finishedQty,
			Timestamp:   now,
		})
	}

	return entries, nil
}

// ConsumeMaterial records material consumption against the lot with planned
// versus actual variance. Raw stock is not debited here; that coupling belongs
// to the stock ledger boundary.
func (l *Lot) ConsumeMaterial(materialID string, plannedQty, consumedQty decimal.Decimal, uom string, ids IDSource, now time.Time) (*Entry, error) {
	if l.Status == LotStatusClosed {
		return nil, ErrLotClosed
	}
	if consumedQty.IsNegative() {
		return nil, ErrInvalidQuantity
	}

	varianceQty := plannedQty.Sub(consumedQty)
	variancePct := decimal.Zero
	if plannedQty.IsPositive() {
		variancePct = varianceQty.Div(plannedQty).Mul(decimal.NewFromInt(100)).Round(2)
	}
	l.UpdatedAt = now

	return &Entry{
		EntryID:      ids.NewID(PrefixEntry),
		SubjectKey:   l.LotNumber,
		Action:       ActionIssue,
		BalanceAfter: l.AggregateBalance(),
		Detail: &ConsumeDetail{
			MaterialID:         materialID,
			UOM:                uom,
			PlannedQty:         plannedQty,
			ConsumedQty:        consumedQty,
			VarianceQty:        varianceQty,
			VariancePercentage: variancePct,
		},
		RecordedAt: now,
	}, nil
}

// Clone returns a deep copy of the lot without pending domain events
func (l *Lot) Clone() *Lot {
	copied := *l
	copied.Balances = make(map[ProcessStage]int, len(l.Balances))
	for stage, qty := range l.Balances {
		copied.Balances[stage] = qty
	}
	if l.HoldDate != nil {
		holdDate := *l.HoldDate
		copied.HoldDate = &holdDate
	}
	copied.events = nil
	return &copied
}

// addDomainEvent adds a domain event to the lot
func (l *Lot) addDomainEvent(event DomainEvent) {
	l.events = append(l.events, event)
}

// PullEvents returns and clears pending domain events
func (l *Lot) PullEvents() []DomainEvent {
	events := l.events
	l.events = nil
	return events
}
