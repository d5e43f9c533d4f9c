package domain

import (
	"errors"
	"testing"
)

func newTestIssue(t *testing.T) (*Issue, []*Entry) {
	t.Helper()
	issue, entries, err := NewIssue(testTime, StageCutting, []IssueItem{
		{MaterialCode: "FAB-01", LotNumber: "RLOT-1", IssuedQty: 120, UOM: "m"},
		{MaterialCode: "TRIM-02", IssuedQty: 500, UOM: "pcs"},
	}, "storekeeper", &seqIDs{}, testTime)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return issue, entries
}

func TestNewIssue(t *testing.T) {
	issue, entries := newTestIssue(t)

	if issue.Status != IssueStatusDraft {
		t.Errorf("expected draft status, got %s", issue.Status)
	}
	if len(entries) != 2 {
		t.Fatalf("expected one entry per line, got %d", len(entries))
	}
	for i, e := range entries {
		if e.SubjectKey != issue.IssueNumber {
			t.Errorf("entry %d subject %s does not match issue %s", i, e.SubjectKey, issue.IssueNumber)
		}
		if e.Action != ActionIssue {
			t.Errorf("entry %d: expected issue action, got %s", i, e.Action)
		}
		detail := e.Detail.(*IssueDetail)
		if detail.Status != IssueStatusDraft {
			t.Errorf("entry %d: expected draft detail status, got %s", i, detail.Status)
		}
		if detail.BalanceQty != detail.IssuedQty {
			t.Errorf("entry %d: balance %d should equal issued %d", i, detail.BalanceQty, detail.IssuedQty)
		}
		if e.BalanceAfter != detail.IssuedQty {
			t.Errorf("entry %d: BalanceAfter %d should equal issued %d", i, e.BalanceAfter, detail.IssuedQty)
		}
	}
}

func TestNewIssue_Validation(t *testing.T) {
	ids := &seqIDs{}

	if _, _, err := NewIssue(testTime, "dyeing", []IssueItem{{MaterialCode: "X", IssuedQty: 1}}, "a", ids, testTime); !errors.Is(err, ErrInvalidStage) {
		t.Errorf("expected ErrInvalidStage, got %v", err)
	}
	if _, _, err := NewIssue(testTime, StageCutting, nil, "a", ids, testTime); !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("expected ErrInvalidQuantity for empty items, got %v", err)
	}
	if _, _, err := NewIssue(testTime, StageCutting, []IssueItem{{MaterialCode: "X", IssuedQty: 0}}, "a", ids, testTime); !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("expected ErrInvalidQuantity for zero line, got %v", err)
	}
}

func TestIssue_ApproveAndReject(t *testing.T) {
	t.Run("approve propagates to entries", func(t *testing.T) {
		issue, entries := newTestIssue(t)

		if err := issue.Approve("manager", testTime); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, e := range entries {
			ApplyIssueStatus(e, issue.Status)
		}

		if issue.Status != IssueStatusApproved || issue.ApprovedBy != "manager" {
			t.Errorf("approval not recorded: %s by %s", issue.Status, issue.ApprovedBy)
		}
		for i, e := range entries {
			if e.Detail.(*IssueDetail).Status != IssueStatusApproved {
				t.Errorf("entry %d status not propagated", i)
			}
		}
	})

	t.Run("approve is idempotent", func(t *testing.T) {
		issue, _ := newTestIssue(t)
		if err := issue.Approve("manager", testTime); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := issue.Approve("someone-else", testTime); err != nil {
			t.Errorf("re-approval should be a no-op, got %v", err)
		}
		if issue.ApprovedBy != "manager" {
			t.Errorf("re-approval overwrote approver: %s", issue.ApprovedBy)
		}
	})

	t.Run("terminal states are exclusive", func(t *testing.T) {
		issue, _ := newTestIssue(t)
		if err := issue.Reject("wrong process", testTime); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := issue.Approve("manager", testTime); !errors.Is(err, ErrIssueFinalized) {
			t.Errorf("expected ErrIssueFinalized approving a rejected issue, got %v", err)
		}

		other, _ := newTestIssue(t)
		if err := other.Approve("manager", testTime); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := other.Reject("too late", testTime); !errors.Is(err, ErrIssueFinalized) {
			t.Errorf("expected ErrIssueFinalized rejecting an approved issue, got %v", err)
		}
	})
}

func TestApplyReturn(t *testing.T) {
	_, entries := newTestIssue(t)
	entry := entries[0] // issued 120

	if err := ApplyReturn(entry, 30); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	detail := entry.Detail.(*IssueDetail)
	if detail.ReturnedQty != 30 || detail.BalanceQty != 90 {
		t.Errorf("expected returned 30 / balance 90, got %d/%d", detail.ReturnedQty, detail.BalanceQty)
	}

	// over-return floors the balance at zero but keeps the full returned qty
	if err := ApplyReturn(entry, 200); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if detail.ReturnedQty != 230 {
		t.Errorf("expected returned 230, got %d", detail.ReturnedQty)
	}
	if detail.BalanceQty != 0 {
		t.Errorf("expected balance floored at 0, got %d", detail.BalanceQty)
	}

	if err := ApplyReturn(entry, 0); !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("expected ErrInvalidQuantity, got %v", err)
	}
	if err := ApplyReturn(&Entry{}, 5); !errors.Is(err, ErrIssueItemNotFound) {
		t.Errorf("expected ErrIssueItemNotFound on non-issue entry, got %v", err)
	}
}
