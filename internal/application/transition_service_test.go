package application

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garment-erp/production-ledger/internal/domain"
	"github.com/garment-erp/production-ledger/internal/infrastructure/memory"
	"github.com/garment-erp/production-ledger/pkg/events"
	"github.com/garment-erp/production-ledger/pkg/logging"
)

type seqIDs struct {
	n int
}

func (s *seqIDs) NewID(prefix string) string {
	s.n++
	return fmt.Sprintf("%s-%04d", prefix, s.n)
}

// recordingPublisher captures every published envelope for assertions
type recordingPublisher struct {
	mu        sync.Mutex
	envelopes []events.Envelope
}

func (p *recordingPublisher) Publish(ctx context.Context, envelope events.Envelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.envelopes = append(p.envelopes, envelope)
	return nil
}

func (p *recordingPublisher) ofType(eventType string) []events.Envelope {
	p.mu.Lock()
	defer p.mu.Unlock()
	matched := make([]events.Envelope, 0)
	for _, e := range p.envelopes {
		if e.Type == eventType {
			matched = append(matched, e)
		}
	}
	return matched
}

var testTime = time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

func testClock() time.Time { return testTime }

func testLogger() *logging.Logger {
	cfg := logging.DefaultConfig("production-ledger-test")
	cfg.Output = io.Discard
	return logging.New(cfg)
}

func newTransitionFixture(t *testing.T) (*TransitionService, *recordingPublisher) {
	t.Helper()
	publisher := &recordingPublisher{}
	service := NewTransitionService(memory.NewLotStore(), publisher, nil, testLogger(), &seqIDs{}, testClock)
	return service, publisher
}

func createLot(t *testing.T, service *TransitionService, lotNumber string, qty int, stage domain.ProcessStage) *LotDTO {
	t.Helper()
	lot, err := service.CreateLot(context.Background(), CreateLotCommand{
		LotNumber:    lotNumber,
		StyleID:      "STY-100",
		Color:        "navy",
		Size:         "M",
		UOM:          "pcs",
		TotalQty:     qty,
		OpeningStage: stage,
		Actor:        "planner",
	})
	require.NoError(t, err)
	return lot
}

func TestTransitionService_CreateLot(t *testing.T) {
	service, _ := newTransitionFixture(t)
	ctx := context.Background()

	lot := createLot(t, service, "LOT-001", 100, domain.StageCutting)
	assert.Equal(t, 100, lot.AggregateBalance)
	assert.Equal(t, "active", lot.Status)

	entries, err := service.GetLedgerForLot(ctx, "LOT-001")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "issue", entries[0].Action)
	assert.Equal(t, 100, entries[0].QuantityIn)
	assert.Equal(t, 100, entries[0].BalanceAfter)

	_, err = service.CreateLot(ctx, CreateLotCommand{
		LotNumber: "LOT-001", StyleID: "STY-100", TotalQty: 10, OpeningStage: domain.StageCutting,
	})
	assert.Error(t, err)
}

func TestTransitionService_ReworkAndLedgerAgreement(t *testing.T) {
	service, _ := newTransitionFixture(t)
	ctx := context.Background()
	createLot(t, service, "LOT-001", 100, domain.StageCutting)

	lot, err := service.ReworkLot(ctx, ReworkLotCommand{
		LotNumber:   "LOT-001",
		FromProcess: domain.StageCutting,
		ToProcess:   domain.StageStitching,
		Qty:         15,
		Remarks:     "stitch defects",
	})
	require.NoError(t, err)
	assert.Equal(t, 100, lot.AggregateBalance)
	assert.Equal(t, 85, lot.Balances["cutting"])
	assert.Equal(t, 15, lot.Balances["stitching"])

	// latest ledger entry must agree with the registry balance
	entries, err := service.GetLedgerForLot(ctx, "LOT-001")
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	assert.Equal(t, lot.AggregateBalance, entries[0].BalanceAfter)
}

func TestTransitionService_FinishLot(t *testing.T) {
	service, publisher := newTransitionFixture(t)
	ctx := context.Background()
	createLot(t, service, "LOT-001", 100, domain.StageFinishing)

	lot, err := service.FinishLot(ctx, FinishLotCommand{LotNumber: "LOT-001", FinishedQty: 60, Actor: "operator"})
	require.NoError(t, err)
	assert.Equal(t, "active", lot.Status)
	assert.Empty(t, publisher.ofType(events.TypeLotFinished))

	lot, err = service.FinishLot(ctx, FinishLotCommand{LotNumber: "LOT-001", FinishedQty: 40, Actor: "operator"})
	require.NoError(t, err)
	assert.Equal(t, "closed", lot.Status)
	assert.Equal(t, 0, lot.AggregateBalance)

	finished := publisher.ofType(events.TypeLotFinished)
	require.Len(t, finished, 1)
	assert.Equal(t, "LOT-001", finished[0].Subject)

	entries, err := service.GetLedgerForLot(ctx, "LOT-001")
	require.NoError(t, err)
	require.Len(t, entries, 4) // opening, finish 60, finish 40, auto-close
	assert.Equal(t, "Auto-closed, converted to FG", entries[0].Reason)
	assert.Equal(t, 0, entries[0].BalanceAfter)

	// terminal: no further operation may touch the lot
	_, err = service.HoldLot(ctx, HoldLotCommand{LotNumber: "LOT-001", Reason: "late qa", Actor: "qa"})
	assert.ErrorIs(t, err, domain.ErrLotClosed)

	// re-finishing must not publish again
	assert.Len(t, publisher.ofType(events.TypeLotFinished), 1)
}

func TestTransitionService_HoldReleaseTransfer(t *testing.T) {
	service, _ := newTransitionFixture(t)
	ctx := context.Background()
	createLot(t, service, "LOT-001", 50, domain.StageStitching)

	lot, err := service.HoldLot(ctx, HoldLotCommand{LotNumber: "LOT-001", Reason: "shade check", Actor: "qa"})
	require.NoError(t, err)
	assert.Equal(t, "on_hold", lot.Status)

	lot, err = service.ReleaseLot(ctx, ReleaseLotCommand{LotNumber: "LOT-001", Actor: "qa"})
	require.NoError(t, err)
	assert.Equal(t, "released", lot.Status)

	lot, err = service.TransferLot(ctx, TransferLotCommand{
		LotNumber: "LOT-001", Destination: "washing-unit-2", Qty: 20, Actor: "supervisor",
	})
	require.NoError(t, err)
	assert.Equal(t, 30, lot.AggregateBalance)

	_, err = service.TransferLot(ctx, TransferLotCommand{
		LotNumber: "LOT-001", Destination: "washing-unit-2", Qty: 31, Actor: "supervisor",
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)
}

func TestTransitionService_ConsumeMaterial(t *testing.T) {
	service, _ := newTransitionFixture(t)
	ctx := context.Background()
	createLot(t, service, "LOT-001", 100, domain.StageCutting)

	entry, err := service.ConsumeMaterial(ctx, ConsumeMaterialCommand{
		LotNumber:   "LOT-001",
		MaterialID:  "MAT-FAB-01",
		PlannedQty:  decimal.NewFromInt(100),
		ConsumedQty: decimal.NewFromInt(90),
		UOM:         "kg",
	})
	require.NoError(t, err)
	assert.Equal(t, "issue", entry.Action)

	detail, ok := entry.Detail.(*domain.ConsumeDetail)
	require.True(t, ok)
	assert.Equal(t, "10", detail.VarianceQty.String())
	assert.Equal(t, "10", detail.VariancePercentage.String())

	lot, err := service.GetLot(ctx, "LOT-001")
	require.NoError(t, err)
	assert.Equal(t, 100, lot.AggregateBalance, "consumption must not move piece balances")
}

func TestTransitionService_LotNotFound(t *testing.T) {
	service, _ := newTransitionFixture(t)
	ctx := context.Background()

	_, err := service.GetLot(ctx, "LOT-MISSING")
	assert.ErrorIs(t, err, domain.ErrLotNotFound)
	_, err = service.GetLedgerForLot(ctx, "LOT-MISSING")
	assert.ErrorIs(t, err, domain.ErrLotNotFound)
	_, err = service.FinishLot(ctx, FinishLotCommand{LotNumber: "LOT-MISSING", FinishedQty: 1})
	assert.ErrorIs(t, err, domain.ErrLotNotFound)
}
