package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Action tags a ledger entry with the operation that produced it
type Action string

const (
	ActionIssue    Action = "issue"
	ActionTransfer Action = "transfer"
	ActionRework   Action = "rework"
	ActionHold     Action = "hold"
	ActionRelease  Action = "release"
	ActionFinish   Action = "finish"
	ActionConsume  Action = "consume"
	ActionPacking  Action = "packing"
	ActionDispatch Action = "dispatch"
	ActionReturn   Action = "return"
	ActionRepack   Action = "repack"
	ActionScrap    Action = "scrap"
	ActionDamaged  Action = "damaged"
)

// IsValid checks if the action is valid
func (a Action) IsValid() bool {
	switch a {
	case ActionIssue, ActionTransfer, ActionRework, ActionHold, ActionRelease,
		ActionFinish, ActionConsume, ActionPacking, ActionDispatch, ActionReturn,
		ActionRepack, ActionScrap, ActionDamaged:
		return true
	default:
		return false
	}
}

// String returns the string representation of the action
func (a Action) String() string {
	return string(a)
}

// Detail carries the action-specific payload of a ledger entry. One struct per
// action keeps each entry to the fields that action actually has.
type Detail interface {
	DetailType() Action
}

// TransferDetail records a location move of WIP quantity
type TransferDetail struct {
	TransferID string `json:"transferId"`
	FromLine   string `json:"fromLine"`
	ToLine     string `json:"toLine"`
	Status     string `json:"status"` // in_transit
}

func (d *TransferDetail) DetailType() Action { return ActionTransfer }

// ReworkDetail records a stage-to-stage move within a lot
type ReworkDetail struct {
	ReworkID    string       `json:"reworkId"`
	FromProcess ProcessStage `json:"fromProcess"`
	ToProcess   ProcessStage `json:"toProcess"`
	Status      string       `json:"status"` // reworked
}

func (d *ReworkDetail) DetailType() Action { return ActionRework }

// ConsumeDetail records material consumption against a lot with variance
type ConsumeDetail struct {
	MaterialID         string          `json:"materialId"`
	UOM                string          `json:"uom"`
	PlannedQty         decimal.Decimal `json:"plannedQty"`
	ConsumedQty        decimal.Decimal `json:"consumedQty"`
	VarianceQty        decimal.Decimal `json:"varianceQty"`
	VariancePercentage decimal.Decimal `json:"variancePercentage"`
}

func (d *ConsumeDetail) DetailType() Action { return ActionConsume }

// IssueDetail records one issued line of an issue-to-production document.
// Status, ReturnedQty and BalanceQty are the single deliberate exception to
// entry immutability: they track the approval state machine and return credits.
type IssueDetail struct {
	IssueNumber  string       `json:"issueNumber"`
	MaterialCode string       `json:"materialCode"`
	LotNumber    string       `json:"lotNumber,omitempty"`
	Process      ProcessStage `json:"process"`
	IssuedQty    int          `json:"issuedQty"`
	ReturnedQty  int          `json:"returnedQty"`
	BalanceQty   int          `json:"balanceQty"`
	Status       IssueStatus  `json:"status"`
}

func (d *IssueDetail) DetailType() Action { return ActionIssue }

// StockDetail records a raw-material credit or damage posting
type StockDetail struct {
	ItemID    string `json:"itemId"`
	LotNumber string `json:"lotNumber"`
	UOM       string `json:"uom"`
}

func (d *StockDetail) DetailType() Action { return ActionReturn }

// PackingDetail records a packing-close posting into finished goods
type PackingDetail struct {
	PackingNo string `json:"packingNo"`
	Size      string `json:"size"`
	Cartons   int    `json:"cartons"`
}

func (d *PackingDetail) DetailType() Action { return ActionPacking }

// DispatchDetail records a confirmed dispatch allocation
type DispatchDetail struct {
	DispatchID string `json:"dispatchId"`
	DispatchNo string `json:"dispatchNo"`
	Size       string `json:"size"`
	Cartons    int    `json:"cartons"`
}

func (d *DispatchDetail) DetailType() Action { return ActionDispatch }

// ReturnDetail records a routed dispatch return
type ReturnDetail struct {
	DispatchNo string      `json:"dispatchNo"`
	RoutedTo   ReturnRoute `json:"routedTo"`
	LotNumber  string      `json:"lotNumber,omitempty"`
	Size       string      `json:"size,omitempty"`
}

func (d *ReturnDetail) DetailType() Action { return ActionReturn }

// RepackDetail records one signed carton-level delta of a repack
type RepackDetail struct {
	PackingNo string `json:"packingNo"`
	CartonNo  string `json:"cartonNo"`
	Size      string `json:"size"`
	Delta     int    `json:"delta"`
}

func (d *RepackDetail) DetailType() Action { return ActionRepack }

// Entry is one immutable audit record of a quantity movement. Every balance
// mutation is paired with exactly one entry, and BalanceAfter snapshots the
// registry balance computed immediately after that mutation.
type Entry struct {
	EntryID      string    `json:"entryId"`
	SubjectKey   string    `json:"subjectKey"` // lot number, issue number, style key
	Action       Action    `json:"action"`
	QuantityIn   int       `json:"quantityIn"`
	QuantityOut  int       `json:"quantityOut"`
	BalanceAfter int       `json:"balanceAfter"`
	Actor        string    `json:"actor,omitempty"`
	Reason       string    `json:"reason,omitempty"`
	Detail       Detail    `json:"detail,omitempty"`
	RecordedAt   time.Time `json:"recordedAt"`
}

// LedgerFilter narrows ledger listings
type LedgerFilter struct {
	SubjectKey string
	Action     Action
}

// Matches reports whether the entry passes the filter
func (f LedgerFilter) Matches(e *Entry) bool {
	if f.SubjectKey != "" && e.SubjectKey != f.SubjectKey {
		return false
	}
	if f.Action != "" && e.Action != f.Action {
		return false
	}
	return true
}
