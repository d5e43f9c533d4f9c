package application

import (
	"context"
	"fmt"
	"time"

	"github.com/garment-erp/production-ledger/internal/domain"
	"github.com/garment-erp/production-ledger/pkg/events"
	"github.com/garment-erp/production-ledger/pkg/logging"
	"github.com/garment-erp/production-ledger/pkg/metrics"
)

// TransitionService handles WIP lot use cases: the registry of lots and the
// operations that move quantity through their stages
type TransitionService struct {
	lots      domain.LotRepository
	publisher events.Publisher
	metrics   *metrics.Metrics
	logger    *logging.Logger
	ids       domain.IDSource
	now       func() time.Time
}

// NewTransitionService creates a new TransitionService
func NewTransitionService(
	lots domain.LotRepository,
	publisher events.Publisher,
	m *metrics.Metrics,
	logger *logging.Logger,
	ids domain.IDSource,
	now func() time.Time,
) *TransitionService {
	if now == nil {
		now = time.Now
	}
	return &TransitionService{
		lots:      lots,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
		ids:       ids,
		now:       now,
	}
}

// CreateLot creates a WIP lot with its opening ledger entry
func (s *TransitionService) CreateLot(ctx context.Context, cmd CreateLotCommand) (*LotDTO, error) {
	now := s.now()

	lot, err := domain.NewLot(cmd.LotNumber, cmd.ParentLot, cmd.StyleID, cmd.Color, cmd.Size, cmd.UOM, cmd.TotalQty, cmd.OpeningStage, now)
	if err != nil {
		return nil, err
	}

	opening := &domain.Entry{
		EntryID:      s.ids.NewID(domain.PrefixEntry),
		SubjectKey:   lot.LotNumber,
		Action:       domain.ActionIssue,
		QuantityIn:   cmd.TotalQty,
		BalanceAfter: lot.AggregateBalance(),
		Actor:        cmd.Actor,
		RecordedAt:   now,
	}

	if err := s.lots.Save(ctx, lot, opening); err != nil {
		s.logger.Error("Failed to create lot", "lotNumber", cmd.LotNumber, "error", err)
		return nil, fmt.Errorf("failed to create lot: %w", err)
	}

	s.recordEntries(opening)
	s.logger.Info("Created WIP lot", "lotNumber", cmd.LotNumber, "styleId", cmd.StyleID, "totalQty", cmd.TotalQty)
	return ToLotDTO(lot), nil
}

// HoldLot places a lot on hold
func (s *TransitionService) HoldLot(ctx context.Context, cmd HoldLotCommand) (*LotDTO, error) {
	lot, entries, err := s.lots.Update(ctx, cmd.LotNumber, func(lot *domain.Lot) ([]*domain.Entry, error) {
		entry, err := lot.Hold(cmd.Reason, cmd.Actor, s.ids, s.now())
		if err != nil {
			return nil, err
		}
		return []*domain.Entry{entry}, nil
	})
	if err != nil {
		return nil, err
	}

	s.recordEntries(entries...)
	s.logger.Info("Held WIP lot", "lotNumber", cmd.LotNumber, "reason", cmd.Reason)
	return ToLotDTO(lot), nil
}

// ReleaseLot lifts a hold
func (s *TransitionService) ReleaseLot(ctx context.Context, cmd ReleaseLotCommand) (*LotDTO, error) {
	lot, entries, err := s.lots.Update(ctx, cmd.LotNumber, func(lot *domain.Lot) ([]*domain.Entry, error) {
		entry, err := lot.Release(cmd.Actor, s.ids, s.now())
		if err != nil {
			return nil, err
		}
		return []*domain.Entry{entry}, nil
	})
	if err != nil {
		return nil, err
	}

	s.recordEntries(entries...)
	s.logger.Info("Released WIP lot", "lotNumber", cmd.LotNumber)
	return ToLotDTO(lot), nil
}

// TransferLot moves quantity from the lot's current stage to a location
func (s *TransitionService) TransferLot(ctx context.Context, cmd TransferLotCommand) (*LotDTO, error) {
	lot, entries, err := s.lots.Update(ctx, cmd.LotNumber, func(lot *domain.Lot) ([]*domain.Entry, error) {
		entry, err := lot.Transfer(cmd.Destination, cmd.Qty, cmd.Reason, cmd.Actor, s.ids, s.now())
		if err != nil {
			return nil, err
		}
		return []*domain.Entry{entry}, nil
	})
	if err != nil {
		return nil, err
	}

	s.recordEntries(entries...)
	s.logger.Info("Transferred WIP quantity", "lotNumber", cmd.LotNumber, "destination", cmd.Destination, "qty", cmd.Qty)
	return ToLotDTO(lot), nil
}

// ReworkLot moves quantity from one stage to another within a lot
func (s *TransitionService) ReworkLot(ctx context.Context, cmd ReworkLotCommand) (*LotDTO, error) {
	lot, entries, err := s.lots.Update(ctx, cmd.LotNumber, func(lot *domain.Lot) ([]*domain.Entry, error) {
		entry, err := lot.Rework(cmd.FromProcess, cmd.ToProcess, cmd.Qty, cmd.Remarks, s.ids, s.now())
		if err != nil {
			return nil, err
		}
		return []*domain.Entry{entry}, nil
	})
	if err != nil {
		return nil, err
	}

	s.recordEntries(entries...)
	s.logger.Info("Reworked WIP quantity",
		"lotNumber", cmd.LotNumber,
		"fromProcess", cmd.FromProcess.String(),
		"toProcess", cmd.ToProcess.String(),
		"qty", cmd.Qty,
	)
	return ToLotDTO(lot), nil
}

// FinishLot subtracts finished output from the lot; a lot drained to zero
// auto-closes and its finished event is published
func (s *TransitionService) FinishLot(ctx context.Context, cmd FinishLotCommand) (*LotDTO, error) {
	lot, entries, err := s.lots.Update(ctx, cmd.LotNumber, func(lot *domain.Lot) ([]*domain.Entry, error) {
		return lot.Finish(cmd.FinishedQty, cmd.Actor, s.ids, s.now())
	})
	if err != nil {
		return nil, err
	}

	s.recordEntries(entries...)

	for _, event := range lot.PullEvents() {
		if finished, ok := event.(domain.LotFinishedEvent); ok {
			if s.metrics != nil {
				s.metrics.RecordLotClosed()
			}
			s.publish(ctx, events.TypeLotFinished, finished.LotNumber, finished)
		}
	}

	s.logger.Info("Finished WIP quantity",
		"lotNumber", cmd.LotNumber,
		"finishedQty", cmd.FinishedQty,
		"status", lot.Status.String(),
	)
	return ToLotDTO(lot), nil
}

// ConsumeMaterial records material consumption with variance against a lot
func (s *TransitionService) ConsumeMaterial(ctx context.Context, cmd ConsumeMaterialCommand) (*EntryDTO, error) {
	_, entries, err := s.lots.Update(ctx, cmd.LotNumber, func(lot *domain.Lot) ([]*domain.Entry, error) {
		entry, err := lot.ConsumeMaterial(cmd.MaterialID, cmd.PlannedQty, cmd.ConsumedQty, cmd.UOM, s.ids, s.now())
		if err != nil {
			return nil, err
		}
		return []*domain.Entry{entry}, nil
	})
	if err != nil {
		return nil, err
	}

	s.recordEntries(entries...)
	s.logger.Info("Recorded material consumption",
		"lotNumber", cmd.LotNumber,
		"materialId", cmd.MaterialID,
		"plannedQty", cmd.PlannedQty.String(),
		"consumedQty", cmd.ConsumedQty.String(),
	)
	return ToEntryDTO(entries[0]), nil
}

// GetLot retrieves a lot by number
func (s *TransitionService) GetLot(ctx context.Context, lotNumber string) (*LotDTO, error) {
	lot, err := s.lots.FindByNumber(ctx, lotNumber)
	if err != nil {
		return nil, err
	}
	return ToLotDTO(lot), nil
}

// ListLots lists all lots
func (s *TransitionService) ListLots(ctx context.Context) ([]*LotDTO, error) {
	lots, err := s.lots.List(ctx)
	if err != nil {
		return nil, err
	}
	return ToLotDTOs(lots), nil
}

// GetLedgerForLot lists the ledger entries of one lot, most recent first
func (s *TransitionService) GetLedgerForLot(ctx context.Context, lotNumber string) ([]*EntryDTO, error) {
	if _, err := s.lots.FindByNumber(ctx, lotNumber); err != nil {
		return nil, err
	}

	entries, err := s.lots.ListLedger(ctx, domain.LedgerFilter{SubjectKey: lotNumber})
	if err != nil {
		return nil, err
	}
	return ToEntryDTOs(entries), nil
}

// ListLedger lists WIP ledger entries, most recent first
func (s *TransitionService) ListLedger(ctx context.Context, filter domain.LedgerFilter) ([]*EntryDTO, error) {
	entries, err := s.lots.ListLedger(ctx, filter)
	if err != nil {
		return nil, err
	}
	return ToEntryDTOs(entries), nil
}

func (s *TransitionService) recordEntries(entries ...*domain.Entry) {
	if s.metrics == nil {
		return
	}
	for _, e := range entries {
		s.metrics.RecordLedgerEntry("wip", e.Action.String())
	}
}

func (s *TransitionService) publish(ctx context.Context, eventType, subject string, data any) {
	if s.publisher == nil {
		return
	}

	envelope := events.Envelope{
		ID:      s.ids.NewID(domain.PrefixEntry),
		Type:    eventType,
		Source:  "production-ledger",
		Subject: subject,
		Time:    s.now(),
		Data:    data,
	}
	if err := s.publisher.Publish(ctx, envelope); err != nil {
		s.logger.Warn("Failed to publish event", "eventType", eventType, "subject", subject, "error", err)
	}
}
