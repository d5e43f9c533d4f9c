package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garment-erp/production-ledger/internal/domain"
)

func savedIssue(t *testing.T, store *IssueStore, ids domain.IDSource) *domain.Issue {
	t.Helper()
	issue, entries, err := domain.NewIssue(testTime, domain.StageCutting, []domain.IssueItem{
		{MaterialCode: "FAB-01", LotNumber: "RLOT-1", IssuedQty: 120, UOM: "m"},
	}, "storekeeper", ids, testTime)
	require.NoError(t, err)
	require.NoError(t, store.Save(context.Background(), issue, entries))
	return issue
}

func TestIssueStore_Update(t *testing.T) {
	store := NewIssueStore()
	ctx := context.Background()
	issue := savedIssue(t, store, &seqIDs{})

	updated, err := store.Update(ctx, issue.IssueNumber, func(i *domain.Issue, entries []*domain.Entry) error {
		if err := i.Approve("supervisor", testTime); err != nil {
			return err
		}
		for _, e := range entries {
			domain.ApplyIssueStatus(e, i.Status)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, domain.IssueStatusApproved, updated.Status)

	stored, err := store.FindByNumber(ctx, issue.IssueNumber)
	require.NoError(t, err)
	assert.Equal(t, domain.IssueStatusApproved, stored.Status)

	entries, err := store.ListLedger(ctx, domain.LedgerFilter{SubjectKey: issue.IssueNumber})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	detail, ok := entries[0].Detail.(*domain.IssueDetail)
	require.True(t, ok)
	assert.Equal(t, domain.IssueStatusApproved, detail.Status)
}

func TestIssueStore_Update_RollsBackOnError(t *testing.T) {
	store := NewIssueStore()
	ctx := context.Background()
	issue := savedIssue(t, store, &seqIDs{})

	boom := errors.New("boom")
	_, err := store.Update(ctx, issue.IssueNumber, func(i *domain.Issue, _ []*domain.Entry) error {
		// mutate before failing: the staged copy must be discarded
		i.Status = domain.IssueStatusApproved
		return boom
	})
	assert.ErrorIs(t, err, boom)

	stored, err := store.FindByNumber(ctx, issue.IssueNumber)
	require.NoError(t, err)
	assert.Equal(t, domain.IssueStatusDraft, stored.Status)

	_, err = store.Update(ctx, "IS-MISSING", func(*domain.Issue, []*domain.Entry) error { return nil })
	assert.ErrorIs(t, err, domain.ErrIssueNotFound)
}
