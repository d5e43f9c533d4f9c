package application

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/garment-erp/production-ledger/internal/domain"
)

// CreateLotCommand represents the command to create a WIP lot
type CreateLotCommand struct {
	LotNumber    string
	ParentLot    string
	StyleID      string
	Color        string
	Size         string
	UOM          string
	TotalQty     int
	OpeningStage domain.ProcessStage
	Actor        string
}

// HoldLotCommand represents the command to place a lot on hold
type HoldLotCommand struct {
	LotNumber string
	Reason    string
	Actor     string
}

// ReleaseLotCommand represents the command to release a held lot
type ReleaseLotCommand struct {
	LotNumber string
	Actor     string
}

// TransferLotCommand represents the command to move quantity to a location
type TransferLotCommand struct {
	LotNumber   string
	Destination string
	Qty         int
	Reason      string
	Actor       string
}

// ReworkLotCommand represents the command to move quantity between stages
type ReworkLotCommand struct {
	LotNumber   string
	FromProcess domain.ProcessStage
	ToProcess   domain.ProcessStage
	Qty         int
	Remarks     string
}

// FinishLotCommand represents the command to record finished output
type FinishLotCommand struct {
	LotNumber   string
	FinishedQty int
	Actor       string
}

// ConsumeMaterialCommand represents the command to record material
// consumption against a lot
type ConsumeMaterialCommand struct {
	LotNumber   string
	MaterialID  string
	PlannedQty  decimal.Decimal
	ConsumedQty decimal.Decimal
	UOM         string
}

// IssueLineCommand is one material line of an issue
type IssueLineCommand struct {
	MaterialCode string
	LotNumber    string
	IssuedQty    int
	UOM          string
}

// CreateIssueCommand represents the command to create an issue-to-production
type CreateIssueCommand struct {
	IssueDate time.Time
	Process   domain.ProcessStage
	Items     []IssueLineCommand
	Actor     string
}

// ApproveIssueCommand represents the command to approve an issue
type ApproveIssueCommand struct {
	IssueNumber string
	Approver    string
}

// RejectIssueCommand represents the command to reject an issue
type RejectIssueCommand struct {
	IssueNumber string
	Reason      string
}

// RecordIssueReturnCommand represents the command to credit a return against
// an issue line
type RecordIssueReturnCommand struct {
	IssueNumber  string
	MaterialCode string
	ReturnedQty  int
}

// AddRawStockCommand represents the command to credit raw stock
type AddRawStockCommand struct {
	ItemID    string
	LotNumber string
	Qty       int
	UOM       string
	Reason    string
	Actor     string
}

// AddDamagedStockCommand represents the command to record damaged stock
type AddDamagedStockCommand struct {
	ItemID    string
	LotNumber string
	Qty       int
	UOM       string
	Reason    string
	Actor     string
}

// PackingItemCommand is one line of a packing close
type PackingItemCommand struct {
	StyleID   string
	Color     string
	Warehouse string
	Size      string
	Cartons   int
	Pieces    int
}

// RecordPackingCloseCommand represents the command to post a packing close
type RecordPackingCloseCommand struct {
	PackingNo string
	Items     []PackingItemCommand
	Actor     string
}

// BlockStyleCommand represents the command to block a style from dispatch
type BlockStyleCommand struct {
	StyleID string
	Reason  string
	Actor   string
}

// UnblockStyleCommand represents the command to lift a style block
type UnblockStyleCommand struct {
	StyleID string
	Actor   string
}

// CreateDispatchCommand represents the command to plan a dispatch
type CreateDispatchCommand struct {
	DispatchNo  string
	CustomerID  string
	Allocations []domain.DispatchAllocation
	Actor       string
}

// ConfirmDispatchCommand represents the command to confirm a planned dispatch
type ConfirmDispatchCommand struct {
	DispatchID string
	Actor      string
}

// ReturnLineCommand is one returned line of a dispatch
type ReturnLineCommand struct {
	StyleID   string
	Color     string
	Warehouse string
	Size      string
	Cartons   int
	Pieces    int

	// WIP routing only
	LotNumber   string
	FromProcess domain.ProcessStage
	ToProcess   domain.ProcessStage
}

// ProcessReturnCommand represents the command to route a dispatch return
type ProcessReturnCommand struct {
	DispatchNo string
	Returns    []ReturnLineCommand
	Reason     string
	Route      domain.ReturnRoute
	Actor      string
}

// RepackCartonCommand represents the command to adjust carton contents
type RepackCartonCommand struct {
	PackingNo     string
	StyleID       string
	Warehouse     string
	OriginalItems []domain.RepackItem
	NewItems      []domain.RepackItem
	Actor         string
}

// ValuationQuery represents the query for a stock valuation report
type ValuationQuery struct {
	Method   domain.ValuationMethod
	PriceMap map[string]decimal.Decimal
}
