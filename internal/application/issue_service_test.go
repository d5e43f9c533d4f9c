package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garment-erp/production-ledger/internal/domain"
	"github.com/garment-erp/production-ledger/internal/infrastructure/memory"
)

func newIssueFixture(t *testing.T) *IssueService {
	t.Helper()
	return NewIssueService(memory.NewIssueStore(), nil, testLogger(), &seqIDs{}, testClock)
}

func createIssue(t *testing.T, service *IssueService) *IssueDTO {
	t.Helper()
	issue, err := service.CreateIssue(context.Background(), CreateIssueCommand{
		IssueDate: testTime,
		Process:   domain.StageCutting,
		Items: []IssueLineCommand{
			{MaterialCode: "FAB-01", LotNumber: "RLOT-1", IssuedQty: 120, UOM: "m"},
			{MaterialCode: "TRIM-02", IssuedQty: 500, UOM: "pcs"},
		},
		Actor: "storekeeper",
	})
	require.NoError(t, err)
	return issue
}

func TestIssueService_CreateIssue(t *testing.T) {
	service := newIssueFixture(t)
	issue := createIssue(t, service)

	assert.Equal(t, "draft", issue.Status)
	require.Len(t, issue.Items, 2)

	entries, err := service.GetIssueLedger(context.Background(), issue.IssueNumber)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.Equal(t, "issue", e.Action)
	}
}

func TestIssueService_ApprovePropagatesToEntries(t *testing.T) {
	service := newIssueFixture(t)
	ctx := context.Background()
	issue := createIssue(t, service)

	approved, err := service.ApproveIssue(ctx, ApproveIssueCommand{IssueNumber: issue.IssueNumber, Approver: "manager"})
	require.NoError(t, err)
	assert.Equal(t, "approved", approved.Status)
	assert.Equal(t, "manager", approved.ApprovedBy)

	entries, err := service.GetIssueLedger(ctx, issue.IssueNumber)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	for i, e := range entries {
		detail, ok := e.Detail.(*domain.IssueDetail)
		require.True(t, ok)
		assert.Equal(t, domain.IssueStatusApproved, detail.Status, "entry %d", i)
	}
}

func TestIssueService_RejectKeepsEntriesForAudit(t *testing.T) {
	service := newIssueFixture(t)
	ctx := context.Background()
	issue := createIssue(t, service)

	rejected, err := service.RejectIssue(ctx, RejectIssueCommand{IssueNumber: issue.IssueNumber, Reason: "wrong process"})
	require.NoError(t, err)
	assert.Equal(t, "rejected", rejected.Status)

	entries, err := service.GetIssueLedger(ctx, issue.IssueNumber)
	require.NoError(t, err)
	require.Len(t, entries, 2, "entries persist after rejection")
	for _, e := range entries {
		assert.Equal(t, domain.IssueStatusRejected, e.Detail.(*domain.IssueDetail).Status)
	}

	_, err = service.ApproveIssue(ctx, ApproveIssueCommand{IssueNumber: issue.IssueNumber, Approver: "manager"})
	assert.ErrorIs(t, err, domain.ErrIssueFinalized)
}

func TestIssueService_RecordReturn(t *testing.T) {
	service := newIssueFixture(t)
	ctx := context.Background()
	issue := createIssue(t, service)
	_, err := service.ApproveIssue(ctx, ApproveIssueCommand{IssueNumber: issue.IssueNumber, Approver: "manager"})
	require.NoError(t, err)

	_, err = service.RecordReturn(ctx, RecordIssueReturnCommand{
		IssueNumber:  issue.IssueNumber,
		MaterialCode: "FAB-01",
		ReturnedQty:  30,
	})
	require.NoError(t, err)

	entries, err := service.GetIssueLedger(ctx, issue.IssueNumber)
	require.NoError(t, err)
	var line *domain.IssueDetail
	for _, e := range entries {
		detail := e.Detail.(*domain.IssueDetail)
		if detail.MaterialCode == "FAB-01" {
			line = detail
		}
	}
	require.NotNil(t, line)
	assert.Equal(t, 30, line.ReturnedQty)
	assert.Equal(t, 90, line.BalanceQty)

	_, err = service.RecordReturn(ctx, RecordIssueReturnCommand{
		IssueNumber:  issue.IssueNumber,
		MaterialCode: "NOPE",
		ReturnedQty:  1,
	})
	assert.ErrorIs(t, err, domain.ErrIssueItemNotFound)
}

func TestIssueService_NotFound(t *testing.T) {
	service := newIssueFixture(t)
	ctx := context.Background()

	_, err := service.GetIssue(ctx, "ISS-MISSING")
	assert.ErrorIs(t, err, domain.ErrIssueNotFound)
	_, err = service.ApproveIssue(ctx, ApproveIssueCommand{IssueNumber: "ISS-MISSING", Approver: "manager"})
	assert.ErrorIs(t, err, domain.ErrIssueNotFound)
}
