package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/garment-erp/production-ledger/internal/domain"
	"github.com/garment-erp/production-ledger/pkg/events"
	"github.com/garment-erp/production-ledger/pkg/logging"
	"github.com/garment-erp/production-ledger/pkg/metrics"
)

// FGService handles finished-goods use cases: packing-in, style blocking,
// dispatch lifecycle, return routing, repack deltas, and derived reports
type FGService struct {
	fg        domain.FGRepository
	wip       *TransitionService
	publisher events.Publisher
	metrics   *metrics.Metrics
	logger    *logging.Logger
	ids       domain.IDSource
	now       func() time.Time
}

// NewFGService creates a new FGService
func NewFGService(
	fg domain.FGRepository,
	wip *TransitionService,
	publisher events.Publisher,
	m *metrics.Metrics,
	logger *logging.Logger,
	ids domain.IDSource,
	now func() time.Time,
) *FGService {
	if now == nil {
		now = time.Now
	}
	return &FGService{
		fg:        fg,
		wip:       wip,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
		ids:       ids,
		now:       now,
	}
}

// RecordPackingClose posts packed cartons into finished-goods stock, creating
// the (style, color, warehouse) aggregate on first sight
func (s *FGService) RecordPackingClose(ctx context.Context, cmd RecordPackingCloseCommand) error {
	now := s.now()
	totals := make(map[string]int)

	for _, item := range cmd.Items {
		_, err := s.fg.Upsert(ctx, item.StyleID, item.Color, item.Warehouse, now, func(stock *domain.FGStockEntry) ([]*domain.Entry, error) {
			entry, err := stock.AddPacking(cmd.PackingNo, item.Size, item.Cartons, item.Pieces, cmd.Actor, s.ids, now)
			if err != nil {
				return nil, err
			}
			s.recordEntries(entry)
			return []*domain.Entry{entry}, nil
		})
		if err != nil {
			return fmt.Errorf("failed to post packing for style %s: %w", item.StyleID, err)
		}

		if s.metrics != nil {
			s.metrics.RecordPiecesPacked(item.Warehouse, item.Pieces)
		}
		totals[domain.FGKey(item.StyleID, item.Color, item.Warehouse)] += item.Pieces
	}

	for key, pieces := range totals {
		s.publish(ctx, events.TypePackingClose, key, map[string]any{
			"packingNo":   cmd.PackingNo,
			"stockKey":    key,
			"totalPieces": pieces,
		})
	}

	s.logger.Info("Recorded packing close", "packingNo", cmd.PackingNo, "items", len(cmd.Items))
	return nil
}

// BlockStyle gates a style out of dispatch eligibility
func (s *FGService) BlockStyle(ctx context.Context, cmd BlockStyleCommand) error {
	now := s.now()

	if err := s.fg.SaveBlock(ctx, &domain.BlockedStyle{
		StyleID:   cmd.StyleID,
		Reason:    cmd.Reason,
		BlockedBy: cmd.Actor,
		BlockedAt: now,
	}); err != nil {
		return err
	}

	entry := &domain.Entry{
		EntryID:    s.ids.NewID(domain.PrefixEntry),
		SubjectKey: cmd.StyleID,
		Action:     domain.ActionHold,
		Actor:      cmd.Actor,
		Reason:     cmd.Reason,
		RecordedAt: now,
	}
	if err := s.fg.AppendEntry(ctx, entry); err != nil {
		return err
	}

	s.recordEntries(entry)
	s.logger.Audit(ctx, "block", "style", cmd.StyleID, cmd.Actor, map[string]any{"reason": cmd.Reason})
	return nil
}

// UnblockStyle lifts a style's dispatch block
func (s *FGService) UnblockStyle(ctx context.Context, cmd UnblockStyleCommand) error {
	if err := s.fg.RemoveBlock(ctx, cmd.StyleID); err != nil {
		return err
	}

	entry := &domain.Entry{
		EntryID:    s.ids.NewID(domain.PrefixEntry),
		SubjectKey: cmd.StyleID,
		Action:     domain.ActionRelease,
		Actor:      cmd.Actor,
		RecordedAt: s.now(),
	}
	if err := s.fg.AppendEntry(ctx, entry); err != nil {
		return err
	}

	s.recordEntries(entry)
	s.logger.Audit(ctx, "unblock", "style", cmd.StyleID, cmd.Actor, nil)
	return nil
}

// CreateDispatch plans a dispatch without touching stock
func (s *FGService) CreateDispatch(ctx context.Context, cmd CreateDispatchCommand) (*domain.Dispatch, error) {
	dispatch, err := domain.NewDispatch(cmd.DispatchNo, cmd.CustomerID, cmd.Allocations, s.ids, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.fg.SaveDispatch(ctx, dispatch); err != nil {
		return nil, err
	}

	s.logger.Info("Created dispatch", "dispatchId", dispatch.DispatchID, "dispatchNo", cmd.DispatchNo, "allocations", len(cmd.Allocations))
	return dispatch, nil
}

// ConfirmDispatch debits every allocation from finished-goods stock and marks
// the dispatch as dispatched. Blocked styles and over-allocations are
// rejected before any stock is touched.
func (s *FGService) ConfirmDispatch(ctx context.Context, cmd ConfirmDispatchCommand) (*domain.Dispatch, error) {
	dispatch, err := s.fg.FindDispatch(ctx, cmd.DispatchID)
	if err != nil {
		return nil, err
	}
	if dispatch.Status != domain.DispatchStatusPlanned {
		return nil, domain.ErrDispatchNotPlanned
	}

	for _, alloc := range dispatch.Allocations {
		if _, blocked, err := s.fg.FindBlock(ctx, alloc.StyleID); err != nil {
			return nil, err
		} else if blocked {
			return nil, fmt.Errorf("style %s: %w", alloc.StyleID, domain.ErrStyleBlocked)
		}
	}

	// validate every allocation against scratch copies first, so a failing
	// line leaves no earlier allocation debited or journaled
	scratch := make(map[string]*domain.FGStockEntry)
	for _, alloc := range dispatch.Allocations {
		key := domain.FGKey(alloc.StyleID, alloc.Color, alloc.Warehouse)
		stock, ok := scratch[key]
		if !ok {
			var err error
			stock, err = s.fg.Find(ctx, alloc.StyleID, alloc.Color, alloc.Warehouse)
			if err != nil {
				return nil, fmt.Errorf("failed to validate allocation for style %s: %w", alloc.StyleID, err)
			}
			scratch[key] = stock
		}
		if err := stock.Deduct(alloc.Size, alloc.Cartons, alloc.Pieces); err != nil {
			return nil, fmt.Errorf("failed to validate allocation for style %s: %w", alloc.StyleID, err)
		}
	}

	now := s.now()
	for _, alloc := range dispatch.Allocations {
		_, err := s.fg.Update(ctx, alloc.StyleID, alloc.Color, alloc.Warehouse, func(stock *domain.FGStockEntry) ([]*domain.Entry, error) {
			entry, err := stock.DeductDispatch(dispatch.DispatchID, dispatch.DispatchNo, alloc.Size, alloc.Cartons, alloc.Pieces, cmd.Actor, s.ids, now)
			if err != nil {
				return nil, err
			}
			s.recordEntries(entry)
			return []*domain.Entry{entry}, nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to deduct allocation for style %s: %w", alloc.StyleID, err)
		}

		if s.metrics != nil {
			s.metrics.RecordPiecesDispatched(alloc.Warehouse, alloc.Pieces)
		}
	}

	confirmed, err := s.fg.UpdateDispatch(ctx, cmd.DispatchID, func(d *domain.Dispatch) error {
		return d.MarkDispatched(now)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.TypeDispatchConfirm, confirmed.DispatchNo, domain.DispatchConfirmedEvent{
		DispatchID:  confirmed.DispatchID,
		DispatchNo:  confirmed.DispatchNo,
		CustomerID:  confirmed.CustomerID,
		TotalPieces: confirmed.TotalPieces(),
		Timestamp:   now,
	})

	s.logger.Info("Confirmed dispatch", "dispatchId", confirmed.DispatchID, "totalPieces", confirmed.TotalPieces())
	return confirmed, nil
}

// ProcessReturn routes each returned line to finished goods, WIP rework, or
// scrap. A WIP route whose lot cannot be identified falls through to a
// scrap-routed exception entry rather than disappearing.
func (s *FGService) ProcessReturn(ctx context.Context, cmd ProcessReturnCommand) error {
	if !cmd.Route.IsValid() {
		return domain.ErrInvalidQuantity
	}

	now := s.now()
	totalPieces := 0

	for _, line := range cmd.Returns {
		var err error
		switch cmd.Route {
		case domain.ReturnRouteFG:
			err = s.returnToFG(ctx, cmd, line, now)
		case domain.ReturnRouteWIP:
			err = s.returnToWIP(ctx, cmd, line, now)
		case domain.ReturnRouteScrap:
			err = s.returnToScrap(ctx, cmd, line, "", now)
		}
		if err != nil {
			return fmt.Errorf("failed to route return for style %s: %w", line.StyleID, err)
		}
		totalPieces += line.Pieces
	}

	if s.metrics != nil {
		s.metrics.RecordReturnProcessed(cmd.Route.String())
	}
	s.publish(ctx, events.TypeReturnProcessed, cmd.DispatchNo, domain.ReturnProcessedEvent{
		DispatchNo: cmd.DispatchNo,
		RoutedTo:   cmd.Route,
		Quantity:   totalPieces,
		Timestamp:  now,
	})

	s.logger.Info("Processed return", "dispatchNo", cmd.DispatchNo, "route", cmd.Route.String(), "pieces", totalPieces)
	return nil
}

func (s *FGService) returnToFG(ctx context.Context, cmd ProcessReturnCommand, line ReturnLineCommand, now time.Time) error {
	_, err := s.fg.Upsert(ctx, line.StyleID, line.Color, line.Warehouse, now, func(stock *domain.FGStockEntry) ([]*domain.Entry, error) {
		entry, err := stock.CreditReturn(cmd.DispatchNo, line.Size, line.Cartons, line.Pieces, cmd.Actor, s.ids, now)
		if err != nil {
			return nil, err
		}
		s.recordEntries(entry)
		return []*domain.Entry{entry}, nil
	})
	return err
}

func (s *FGService) returnToWIP(ctx context.Context, cmd ProcessReturnCommand, line ReturnLineCommand, now time.Time) error {
	_, err := s.wip.ReworkLot(ctx, ReworkLotCommand{
		LotNumber:   line.LotNumber,
		FromProcess: line.FromProcess,
		ToProcess:   line.ToProcess,
		Qty:         line.Pieces,
		Remarks:     fmt.Sprintf("Return from dispatch %s: %s", cmd.DispatchNo, cmd.Reason),
	})
	if errors.Is(err, domain.ErrLotNotFound) {
		// the lot cannot be identified, keep an exception record instead
		s.logger.Warn("Return lot not found, routing to scrap",
			"dispatchNo", cmd.DispatchNo,
			"lotNumber", line.LotNumber,
		)
		return s.returnToScrap(ctx, cmd, line, line.LotNumber, now)
	}
	return err
}

func (s *FGService) returnToScrap(ctx context.Context, cmd ProcessReturnCommand, line ReturnLineCommand, lotNumber string, now time.Time) error {
	entry := &domain.Entry{
		EntryID:     s.ids.NewID(domain.PrefixEntry),
		SubjectKey:  domain.FGKey(line.StyleID, line.Color, line.Warehouse),
		Action:      domain.ActionScrap,
		QuantityOut: line.Pieces,
		Actor:       cmd.Actor,
		Reason:      cmd.Reason,
		Detail: &domain.ReturnDetail{
			DispatchNo: cmd.DispatchNo,
			RoutedTo:   domain.ReturnRouteScrap,
			LotNumber:  lotNumber,
			Size:       line.Size,
		},
		RecordedAt: now,
	}
	if err := s.fg.AppendEntry(ctx, entry); err != nil {
		return err
	}
	s.recordEntries(entry)
	return nil
}

// RepackCarton diffs original against new carton contents and applies the
// signed deltas as stock adjustments
func (s *FGService) RepackCarton(ctx context.Context, cmd RepackCartonCommand) error {
	deltas := domain.ComputeRepackDeltas(cmd.OriginalItems, cmd.NewItems)
	if len(deltas) == 0 {
		return nil
	}

	now := s.now()
	pieceDelta := 0

	for _, delta := range deltas {
		_, err := s.fg.Update(ctx, cmd.StyleID, delta.Color, cmd.Warehouse, func(stock *domain.FGStockEntry) ([]*domain.Entry, error) {
			entry, err := stock.ApplyRepackDelta(cmd.PackingNo, delta.CartonNo, delta.Size, delta.Delta, cmd.Actor, s.ids, now)
			if err != nil {
				return nil, err
			}
			s.recordEntries(entry)
			return []*domain.Entry{entry}, nil
		})
		if err != nil {
			return fmt.Errorf("failed to apply repack delta for carton %s: %w", delta.CartonNo, err)
		}
		pieceDelta += delta.Delta
	}

	s.publish(ctx, events.TypeRepack, cmd.PackingNo, domain.RepackedEvent{
		PackingNo:  cmd.PackingNo,
		StyleID:    cmd.StyleID,
		PieceDelta: pieceDelta,
		Timestamp:  now,
	})

	s.logger.Info("Repacked cartons", "packingNo", cmd.PackingNo, "deltas", len(deltas), "pieceDelta", pieceDelta)
	return nil
}

// ListStock lists all finished-goods aggregates
func (s *FGService) ListStock(ctx context.Context) ([]*domain.FGStockEntry, error) {
	return s.fg.List(ctx)
}

// ListLedger lists finished-goods ledger entries, most recent first
func (s *FGService) ListLedger(ctx context.Context, filter domain.LedgerFilter) ([]*EntryDTO, error) {
	entries, err := s.fg.ListLedger(ctx, filter)
	if err != nil {
		return nil, err
	}
	return ToEntryDTOs(entries), nil
}

// ListDispatches lists all dispatches
func (s *FGService) ListDispatches(ctx context.Context) ([]*domain.Dispatch, error) {
	return s.fg.ListDispatches(ctx)
}

// GetDispatch retrieves a dispatch by id
func (s *FGService) GetDispatch(ctx context.Context, dispatchID string) (*domain.Dispatch, error) {
	return s.fg.FindDispatch(ctx, dispatchID)
}

// ListBlocked lists all blocked styles
func (s *FGService) ListBlocked(ctx context.Context) ([]*domain.BlockedStyle, error) {
	return s.fg.ListBlocked(ctx)
}

// ListDeadStock lists aggregates packed more than 90 days before now
func (s *FGService) ListDeadStock(ctx context.Context) ([]*domain.FGStockEntry, error) {
	stock, err := s.fg.List(ctx)
	if err != nil {
		return nil, err
	}
	return domain.FilterDeadStock(stock, s.now()), nil
}

// ComputeAging buckets total pieces by packing age as of now
func (s *FGService) ComputeAging(ctx context.Context) (map[string]int, error) {
	stock, err := s.fg.List(ctx)
	if err != nil {
		return nil, err
	}
	return domain.ComputeAging(stock, s.now()), nil
}

// Valuation values the stock position under the given method and price map
func (s *FGService) Valuation(ctx context.Context, query ValuationQuery) (*domain.ValuationReport, error) {
	stock, err := s.fg.List(ctx)
	if err != nil {
		return nil, err
	}
	return domain.Valuation(stock, query.Method, query.PriceMap)
}

func (s *FGService) recordEntries(entries ...*domain.Entry) {
	if s.metrics == nil {
		return
	}
	for _, e := range entries {
		s.metrics.RecordLedgerEntry("fg", e.Action.String())
	}
}

func (s *FGService) publish(ctx context.Context, eventType, subject string, data any) {
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
