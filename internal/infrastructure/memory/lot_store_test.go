package memory

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garment-erp/production-ledger/internal/domain"
)

type seqIDs struct {
	n int
}

func (s *seqIDs) NewID(prefix string) string {
	s.n++
	return fmt.Sprintf("%s-%04d", prefix, s.n)
}

var testTime = time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

func savedLot(t *testing.T, store *LotStore, lotNumber string, qty int) *domain.Lot {
	t.Helper()
	lot, err := domain.NewLot(lotNumber, "", "STY-100", "navy", "M", "pcs", qty, domain.StageCutting, testTime)
	require.NoError(t, err)
	require.NoError(t, store.Save(context.Background(), lot, &domain.Entry{
		EntryID:      "LE-OPEN-" + lotNumber,
		SubjectKey:   lotNumber,
		Action:       domain.ActionIssue,
		QuantityIn:   qty,
		BalanceAfter: qty,
		RecordedAt:   testTime,
	}))
	return lot
}

func TestLotStore_SaveAndFind(t *testing.T) {
	store := NewLotStore()
	ctx := context.Background()
	savedLot(t, store, "LOT-001", 100)

	found, err := store.FindByNumber(ctx, "LOT-001")
	require.NoError(t, err)
	assert.Equal(t, 100, found.AggregateBalance())

	// reads are copies: mutating the result must not touch the store
	found.Balances[domain.StageCutting] = 1
	again, err := store.FindByNumber(ctx, "LOT-001")
	require.NoError(t, err)
	assert.Equal(t, 100, again.AggregateBalance())

	_, err = store.FindByNumber(ctx, "LOT-MISSING")
	assert.ErrorIs(t, err, domain.ErrLotNotFound)

	dup, err := domain.NewLot("LOT-001", "", "STY-100", "navy", "M", "pcs", 5, domain.StageCutting, testTime)
	require.NoError(t, err)
	assert.ErrorIs(t, store.Save(ctx, dup), domain.ErrLotAlreadyExists)
}

func TestLotStore_Update(t *testing.T) {
	store := NewLotStore()
	ctx := context.Background()
	ids := &seqIDs{}
	savedLot(t, store, "LOT-001", 100)

	lot, entries, err := store.Update(ctx, "LOT-001", func(l *domain.Lot) ([]*domain.Entry, error) {
		entry, err := l.Rework(domain.StageCutting, domain.StageStitching, 20, "", ids, testTime)
		if err != nil {
			return nil, err
		}
		return []*domain.Entry{entry}, nil
	})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 20, lot.StageBalance(domain.StageStitching))

	stored, err := store.FindByNumber(ctx, "LOT-001")
	require.NoError(t, err)
	assert.Equal(t, 20, stored.StageBalance(domain.StageStitching))
}

func TestLotStore_Update_RollsBackOnError(t *testing.T) {
	store := NewLotStore()
	ctx := context.Background()
	savedLot(t, store, "LOT-001", 10)

	boom := errors.New("boom")
	_, _, err := store.Update(ctx, "LOT-001", func(l *domain.Lot) ([]*domain.Entry, error) {
		// mutate before failing: the staged copy must be discarded
		l.Balances[domain.StageCutting] = 0
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)

	stored, err := store.FindByNumber(ctx, "LOT-001")
	require.NoError(t, err)
	assert.Equal(t, 10, stored.AggregateBalance())

	ledger, err := store.ListLedger(ctx, domain.LedgerFilter{SubjectKey: "LOT-001"})
	require.NoError(t, err)
	assert.Len(t, ledger, 1, "failed update must not journal entries")
}

func TestLotStore_LedgerOrderAndFilter(t *testing.T) {
	store := NewLotStore()
	ctx := context.Background()
	ids := &seqIDs{}
	savedLot(t, store, "LOT-001", 100)
	savedLot(t, store, "LOT-002", 50)

	for i := 0; i < 3; i++ {
		_, _, err := store.Update(ctx, "LOT-001", func(l *domain.Lot) ([]*domain.Entry, error) {
			entry, err := l.Rework(domain.StageCutting, domain.StageStitching, 1, "", ids, testTime)
			if err != nil {
				return nil, err
			}
			return []*domain.Entry{entry}, nil
		})
		require.NoError(t, err)
	}

	entries, err := store.ListLedger(ctx, domain.LedgerFilter{SubjectKey: "LOT-001"})
	require.NoError(t, err)
	require.Len(t, entries, 4)
	// most recent first, by insertion order
	assert.Equal(t, "LE-0005", entries[0].EntryID)
	assert.Equal(t, "LE-0003", entries[1].EntryID)
	assert.Equal(t, "LE-OPEN-LOT-001", entries[3].EntryID)

	reworks, err := store.ListLedger(ctx, domain.LedgerFilter{Action: domain.ActionRework})
	require.NoError(t, err)
	assert.Len(t, reworks, 3)

	all, err := store.ListLedger(ctx, domain.LedgerFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 5)
}
