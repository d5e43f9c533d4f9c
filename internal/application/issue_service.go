package application

import (
	"context"
	"fmt"
	"time"

	"github.com/garment-erp/production-ledger/internal/domain"
	"github.com/garment-erp/production-ledger/pkg/logging"
	"github.com/garment-erp/production-ledger/pkg/metrics"
)

// IssueService handles issue-to-production use cases: material hand-off to a
// stage behind an approval gate, with returns credited against issue lines
type IssueService struct {
	issues  domain.IssueRepository
	metrics *metrics.Metrics
	logger  *logging.Logger
	ids     domain.IDSource
	now     func() time.Time
}

// NewIssueService creates a new IssueService
func NewIssueService(
	issues domain.IssueRepository,
	m *metrics.Metrics,
	logger *logging.Logger,
	ids domain.IDSource,
	now func() time.Time,
) *IssueService {
	if now == nil {
		now = time.Now
	}
	return &IssueService{
		issues:  issues,
		metrics: m,
		logger:  logger,
		ids:     ids,
		now:     now,
	}
}

// CreateIssue creates a draft issue with one ledger entry per line
func (s *IssueService) CreateIssue(ctx context.Context, cmd CreateIssueCommand) (*IssueDTO, error) {
	items := make([]domain.IssueItem, 0, len(cmd.Items))
	for _, line := range cmd.Items {
		items = append(items, domain.IssueItem{
			MaterialCode: line.MaterialCode,
			LotNumber:    line.LotNumber,
			IssuedQty:    line.IssuedQty,
			UOM:          line.UOM,
		})
	}

	issue, entries, err := domain.NewIssue(cmd.IssueDate, cmd.Process, items, cmd.Actor, s.ids, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.issues.Save(ctx, issue, entries); err != nil {
		s.logger.Error("Failed to create issue", "process", cmd.Process.String(), "error", err)
		return nil, fmt.Errorf("failed to create issue: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordIssueCreated(cmd.Process.String())
		for _, e := range entries {
			s.metrics.RecordLedgerEntry("issue", e.Action.String())
		}
	}

	s.logger.Info("Created issue", "issueNumber", issue.IssueNumber, "process", cmd.Process.String(), "items", len(items))
	return ToIssueDTO(issue), nil
}

// ApproveIssue approves an issue and propagates the status to every ledger
// entry of that issue
func (s *IssueService) ApproveIssue(ctx context.Context, cmd ApproveIssueCommand) (*IssueDTO, error) {
	issue, err := s.issues.Update(ctx, cmd.IssueNumber, func(issue *domain.Issue, entries []*domain.Entry) error {
		if err := issue.Approve(cmd.Approver, s.now()); err != nil {
			return err
		}
		for _, e := range entries {
			domain.ApplyIssueStatus(e, domain.IssueStatusApproved)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Audit(ctx, "approve", "issue", cmd.IssueNumber, cmd.Approver, nil)
	return ToIssueDTO(issue), nil
}

// RejectIssue rejects an issue; its ledger entries persist for audit with the
// rejected status
func (s *IssueService) RejectIssue(ctx context.Context, cmd RejectIssueCommand) (*IssueDTO, error) {
	issue, err := s.issues.Update(ctx, cmd.IssueNumber, func(issue *domain.Issue, entries []*domain.Entry) error {
		if err := issue.Reject(cmd.Reason, s.now()); err != nil {
			return err
		}
		for _, e := range entries {
			domain.ApplyIssueStatus(e, domain.IssueStatusRejected)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Rejected issue", "issueNumber", cmd.IssueNumber, "reason", cmd.Reason)
	return ToIssueDTO(issue), nil
}

// RecordReturn credits a return against the matching issue line entry
func (s *IssueService) RecordReturn(ctx context.Context, cmd RecordIssueReturnCommand) (*IssueDTO, error) {
	issue, err := s.issues.Update(ctx, cmd.IssueNumber, func(issue *domain.Issue, entries []*domain.Entry) error {
		for _, e := range entries {
			detail, ok := e.Detail.(*domain.IssueDetail)
			if !ok || detail.MaterialCode != cmd.MaterialCode {
				continue
			}
			return domain.ApplyReturn(e, cmd.ReturnedQty)
		}
		return domain.ErrIssueItemNotFound
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Recorded issue return",
		"issueNumber", cmd.IssueNumber,
		"materialCode", cmd.MaterialCode,
		"returnedQty", cmd.ReturnedQty,
	)
	return ToIssueDTO(issue), nil
}

// GetIssue retrieves an issue by number
func (s *IssueService) GetIssue(ctx context.Context, issueNumber string) (*IssueDTO, error) {
	issue, err := s.issues.FindByNumber(ctx, issueNumber)
	if err != nil {
		return nil, err
	}
	return ToIssueDTO(issue), nil
}

// ListIssues lists all issues
func (s *IssueService) ListIssues(ctx context.Context) ([]*IssueDTO, error) {
	issues, err := s.issues.List(ctx)
	if err != nil {
		return nil, err
	}
	return ToIssueDTOs(issues), nil
}

// GetIssueLedger lists the ledger entries of one issue, most recent first
func (s *IssueService) GetIssueLedger(ctx context.Context, issueNumber string) ([]*EntryDTO, error) {
	if _, err := s.issues.FindByNumber(ctx, issueNumber); err != nil {
		return nil, err
	}

	entries, err := s.issues.ListLedger(ctx, domain.LedgerFilter{SubjectKey: issueNumber})
	if err != nil {
		return nil, err
	}
	return ToEntryDTOs(entries), nil
}
