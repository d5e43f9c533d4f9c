package memory

import (
	"context"
	"sync"

	"github.com/garment-erp/production-ledger/internal/domain"
)

// IssueStore is the in-memory issue registry paired with its journal. Issue
// entries are journaled once and then mutated in place for status propagation
// and return credits, which is why Update hands the closure live entry
// pointers while the issue itself is staged.
type IssueStore struct {
	mu     sync.RWMutex
	issues map[string]*domain.Issue
	ledger []*domain.Entry
}

// NewIssueStore creates an empty issue store
func NewIssueStore() *IssueStore {
	return &IssueStore{
		issues: make(map[string]*domain.Issue),
	}
}

// Save creates an issue and journals one entry per line item
func (s *IssueStore) Save(ctx context.Context, issue *domain.Issue, entries []*domain.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.issues[issue.IssueNumber] = issue
	s.ledger = append(s.ledger, entries...)
	return nil
}

// FindByNumber returns the issue
func (s *IssueStore) FindByNumber(ctx context.Context, issueNumber string) (*domain.Issue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	issue, ok := s.issues[issueNumber]
	if !ok {
		return nil, domain.ErrIssueNotFound
	}
	return cloneIssue(issue), nil
}

// List returns all issues
func (s *IssueStore) List(ctx context.Context) ([]*domain.Issue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	issues := make([]*domain.Issue, 0, len(s.issues))
	for _, issue := range s.issues {
		issues = append(issues, cloneIssue(issue))
	}
	return issues, nil
}

// Update runs fn against a staged clone of the issue and its live journal
// entries under the store lock; the clone is committed only when fn succeeds
func (s *IssueStore) Update(ctx context.Context, issueNumber string, fn func(*domain.Issue, []*domain.Entry) error) (*domain.Issue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	issue, ok := s.issues[issueNumber]
	if !ok {
		return nil, domain.ErrIssueNotFound
	}

	entries := make([]*domain.Entry, 0, len(issue.Items))
	for _, e := range s.ledger {
		if e.SubjectKey == issueNumber {
			entries = append(entries, e)
		}
	}

	staged := cloneIssue(issue)
	if err := fn(staged, entries); err != nil {
		return nil, err
	}

	s.issues[issueNumber] = staged
	return cloneIssue(staged), nil
}

// ListLedger returns journal entries, most recent first
func (s *IssueStore) ListLedger(ctx context.Context, filter domain.LedgerFilter) ([]*domain.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return listReversed(s.ledger, filter), nil
}

func cloneIssue(issue *domain.Issue) *domain.Issue {
	copied := *issue
	copied.Items = make([]domain.IssueItem, len(issue.Items))
	copy(copied.Items, issue.Items)
	return &copied
}
