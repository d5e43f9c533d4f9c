package domain

import "time"

// IssueStatus represents the approval state of an issue-to-production document
type IssueStatus string

const (
	IssueStatusDraft    IssueStatus = "draft"
	IssueStatusApproved IssueStatus = "approved"
	IssueStatusRejected IssueStatus = "rejected"
)

// IsValid checks if the issue status is valid
func (s IssueStatus) IsValid() bool {
	switch s {
	case IssueStatusDraft, IssueStatusApproved, IssueStatusRejected:
		return true
	default:
		return false
	}
}

// String returns the string representation of the issue status
func (s IssueStatus) String() string {
	return string(s)
}

// IssueItem is one material line of an issue
type IssueItem struct {
	MaterialCode string `json:"materialCode"`
	LotNumber    string `json:"lotNumber,omitempty"`
	IssuedQty    int    `json:"issuedQty"`
	UOM          string `json:"uom"`
}

// Issue hands raw material from stock to a production stage behind an
// approval gate. Once approved the issued balances are considered live.
type Issue struct {
	IssueNumber    string       `json:"issueNumber"`
	IssueDate      time.Time    `json:"issueDate"`
	Process        ProcessStage `json:"process"`
	Items          []IssueItem  `json:"items"`
	Status         IssueStatus  `json:"status"`
	ApprovedBy     string       `json:"approvedBy,omitempty"`
	RejectedReason string       `json:"rejectedReason,omitempty"`
	CreatedAt      time.Time    `json:"createdAt"`
	UpdatedAt      time.Time    `json:"updatedAt"`
}

// NewIssue creates a draft issue and one ledger entry per line item, each
// seeded with balanceQty equal to the issued quantity.
func NewIssue(issueDate time.Time, process ProcessStage, items []IssueItem, actor string, ids IDSource, now time.Time) (*Issue, []*Entry, error) {
	if !process.IsValid() {
		return nil, nil, ErrInvalidStage
	}
	if len(items) == 0 {
		return nil, nil, ErrInvalidQuantity
	}
	for _, item := range items {
		if item.IssuedQty <= 0 {
			return nil, nil, ErrInvalidQuantity
		}
	}

	issue := &Issue{
		IssueNumber: ids.NewID(PrefixIssue),
		IssueDate:   issueDate,
		Process:     process,
		Items:       items,
		Status:      IssueStatusDraft,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	entries := make([]*Entry, 0, len(items))
	for _, item := range items {
		entries = append(entries, &Entry{
			EntryID:     ids.NewID(PrefixEntry),
			SubjectKey:  issue.IssueNumber,
			Action:      ActionIssue,
			QuantityOut: item.IssuedQty,
			// no registry backs issue lines, the live balance is the line's own
			BalanceAfter: item.IssuedQty,
			Actor:        actor,
			Detail: &IssueDetail{
				IssueNumber:  issue.IssueNumber,
				MaterialCode: item.MaterialCode,
				LotNumber:    item.LotNumber,
				Process:      process,
				IssuedQty:    item.IssuedQty,
				BalanceQty:   item.IssuedQty,
				Status:       IssueStatusDraft,
			},
			RecordedAt: now,
		})
	}

	return issue, entries, nil
}

// Approve moves the issue to approved. Approving an already-approved issue is
// a no-op; approving a rejected issue fails.
func (i *Issue) Approve(approver string, now time.Time) error {
	switch i.Status {
	case IssueStatusApproved:
		return nil
	case IssueStatusRejected:
		return ErrIssueFinalized
	}

	i.Status = IssueStatusApproved
	i.ApprovedBy = approver
	i.UpdatedAt = now
	return nil
}

// Reject moves the issue to rejected. Rejecting an already-rejected issue is
// a no-op; rejecting an approved issue fails. Ledger entries for the issue
// persist after rejection for audit.
func (i *Issue) Reject(reason string, now time.Time) error {
	switch i.Status {
	case IssueStatusRejected:
		return nil
	case IssueStatusApproved:
		return ErrIssueFinalized
	}

	i.Status = IssueStatusRejected
	i.RejectedReason = reason
	i.UpdatedAt = now
	return nil
}

// ApplyIssueStatus propagates an issue's status onto one of its ledger
// entries. Status tracking is the single sanctioned in-place mutation of a
// journaled entry.
func ApplyIssueStatus(e *Entry, status IssueStatus) {
	if detail, ok := e.Detail.(*IssueDetail); ok {
		detail.Status = status
	}
}

// ApplyReturn credits a return against an issue's ledger entry, incrementing
// the returned quantity and decrementing the line balance floored at zero.
func ApplyReturn(e *Entry, returnedQty int) error {
	if returnedQty <= 0 {
		return ErrInvalidQuantity
	}
	detail, ok := e.Detail.(*IssueDetail)
	if !ok {
		return ErrIssueItemNotFound
	}

	detail.ReturnedQty += returnedQty
	detail.BalanceQty -= returnedQty
	if detail.BalanceQty < 0 {
		detail.BalanceQty = 0
	}
	return nil
}
