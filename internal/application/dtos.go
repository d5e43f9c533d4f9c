package application

import (
	"time"

	"github.com/garment-erp/production-ledger/internal/domain"
)

// LotDTO is the outward representation of a WIP lot
type LotDTO struct {
	LotNumber        string         `json:"lotNumber"`
	ParentLot        string         `json:"parentLot,omitempty"`
	StyleID          string         `json:"styleId"`
	Color            string         `json:"color"`
	Size             string         `json:"size"`
	UOM              string         `json:"uom"`
	TotalQty         int            `json:"totalQty"`
	Balances         map[string]int `json:"balances"`
	AggregateBalance int            `json:"aggregateBalance"`
	CurrentProcess   string         `json:"currentProcess"`
	Status           string         `json:"status"`
	HoldReason       string         `json:"holdReason,omitempty"`
	HoldDate         *time.Time     `json:"holdDate,omitempty"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
}

// ToLotDTO converts a domain lot to its DTO
func ToLotDTO(lot *domain.Lot) *LotDTO {
	balances := make(map[string]int, len(lot.Balances))
	for stage, qty := range lot.Balances {
		balances[stage.String()] = qty
	}

	return &LotDTO{
		LotNumber:        lot.LotNumber,
		ParentLot:        lot.ParentLot,
		StyleID:          lot.StyleID,
		Color:            lot.Color,
		Size:             lot.Size,
		UOM:              lot.UOM,
		TotalQty:         lot.TotalQty,
		Balances:         balances,
		AggregateBalance: lot.AggregateBalance(),
		CurrentProcess:   lot.CurrentProcess.String(),
		Status:           lot.Status.String(),
		HoldReason:       lot.HoldReason,
		HoldDate:         lot.HoldDate,
		CreatedAt:        lot.CreatedAt,
		UpdatedAt:        lot.UpdatedAt,
	}
}

// ToLotDTOs converts a slice of domain lots
func ToLotDTOs(lots []*domain.Lot) []*LotDTO {
	dtos := make([]*LotDTO, 0, len(lots))
	for _, lot := range lots {
		dtos = append(dtos, ToLotDTO(lot))
	}
	return dtos
}

// EntryDTO is the outward representation of a ledger entry
type EntryDTO struct {
	EntryID      string    `json:"entryId"`
	SubjectKey   string    `json:"subjectKey"`
	Action       string    `json:"action"`
	QuantityIn   int       `json:"quantityIn"`
	QuantityOut  int       `json:"quantityOut"`
	BalanceAfter int       `json:"balanceAfter"`
	Actor        string    `json:"actor,omitempty"`
	Reason       string    `json:"reason,omitempty"`
	Detail       any       `json:"detail,omitempty"`
	RecordedAt   time.Time `json:"recordedAt"`
}

// ToEntryDTO converts a domain ledger entry to its DTO
func ToEntryDTO(e *domain.Entry) *EntryDTO {
	dto := &EntryDTO{
		EntryID:      e.EntryID,
		SubjectKey:   e.SubjectKey,
		Action:       e.Action.String(),
		QuantityIn:   e.QuantityIn,
		QuantityOut:  e.QuantityOut,
		BalanceAfter: e.BalanceAfter,
		Actor:        e.Actor,
		Reason:       e.Reason,
		RecordedAt:   e.RecordedAt,
	}
	if e.Detail != nil {
		dto.Detail = e.Detail
	}
	return dto
}

// ToEntryDTOs converts a slice of ledger entries
func ToEntryDTOs(entries []*domain.Entry) []*EntryDTO {
	dtos := make([]*EntryDTO, 0, len(entries))
	for _, e := range entries {
		dtos = append(dtos, ToEntryDTO(e))
	}
	return dtos
}

// IssueDTO is the outward representation of an issue-to-production
type IssueDTO struct {
	IssueNumber    string             `json:"issueNumber"`
	IssueDate      time.Time          `json:"issueDate"`
	Process        string             `json:"process"`
	Items          []domain.IssueItem `json:"items"`
	Status         string             `json:"status"`
	ApprovedBy     string             `json:"approvedBy,omitempty"`
	RejectedReason string             `json:"rejectedReason,omitempty"`
	CreatedAt      time.Time          `json:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt"`
}

// ToIssueDTO converts a domain issue to its DTO
func ToIssueDTO(issue *domain.Issue) *IssueDTO {
	return &IssueDTO{
		IssueNumber:    issue.IssueNumber,
		IssueDate:      issue.IssueDate,
		Process:        issue.Process.String(),
		Items:          issue.Items,
		Status:         issue.Status.String(),
		ApprovedBy:     issue.ApprovedBy,
		RejectedReason: issue.RejectedReason,
		CreatedAt:      issue.CreatedAt,
		UpdatedAt:      issue.UpdatedAt,
	}
}

// ToIssueDTOs converts a slice of issues
func ToIssueDTOs(issues []*domain.Issue) []*IssueDTO {
	dtos := make([]*IssueDTO, 0, len(issues))
	for _, issue := range issues {
		dtos = append(dtos, ToIssueDTO(issue))
	}
	return dtos
}
