package application

import (
	"context"
	"time"

	"github.com/garment-erp/production-ledger/internal/domain"
	"github.com/garment-erp/production-ledger/pkg/logging"
	"github.com/garment-erp/production-ledger/pkg/metrics"
)

// StockService handles raw-material stock postings outside the issue/return
// cycle
type StockService struct {
	stock   domain.StockRepository
	metrics *metrics.Metrics
	logger  *logging.Logger
	ids     domain.IDSource
	now     func() time.Time
}

// NewStockService creates a new StockService
func NewStockService(
	stock domain.StockRepository,
	m *metrics.Metrics,
	logger *logging.Logger,
	ids domain.IDSource,
	now func() time.Time,
) *StockService {
	if now == nil {
		now = time.Now
	}
	return &StockService{
		stock:   stock,
		metrics: m,
		logger:  logger,
		ids:     ids,
		now:     now,
	}
}

// AddToRawStock merges a credit into the (itemId, lotNumber) aggregate
func (s *StockService) AddToRawStock(ctx context.Context, cmd AddRawStockCommand) (*domain.StockEntry, error) {
	stock, err := s.stock.Upsert(ctx, cmd.ItemID, cmd.LotNumber, cmd.UOM, func(entry *domain.StockEntry) (*domain.Entry, error) {
		ledgerEntry, err := entry.Credit(cmd.Qty, cmd.Reason, cmd.Actor, s.ids, s.now())
		if err != nil {
			return nil, err
		}
		if s.metrics != nil {
			s.metrics.RecordLedgerEntry("stock", ledgerEntry.Action.String())
		}
		return ledgerEntry, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Credited raw stock",
		"itemId", cmd.ItemID,
		"lotNumber", cmd.LotNumber,
		"qty", cmd.Qty,
		"balance", stock.Quantity,
	)
	return stock, nil
}

// AddToDamagedStock records a damage posting. Pure audit trail: no stock
// aggregate is touched.
func (s *StockService) AddToDamagedStock(ctx context.Context, cmd AddDamagedStockCommand) (*EntryDTO, error) {
	entry, err := domain.NewDamagedEntry(cmd.ItemID, cmd.LotNumber, cmd.UOM, cmd.Qty, cmd.Reason, cmd.Actor, s.ids, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.stock.AppendEntry(ctx, entry); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordLedgerEntry("stock", entry.Action.String())
	}
	s.logger.Info("Recorded damaged stock", "itemId", cmd.ItemID, "lotNumber", cmd.LotNumber, "qty", cmd.Qty)
	return ToEntryDTO(entry), nil
}

// ListStock lists all raw stock aggregates
func (s *StockService) ListStock(ctx context.Context) ([]*domain.StockEntry, error) {
	return s.stock.List(ctx)
}

// ListStockLedger lists stock ledger entries, most recent first
func (s *StockService) ListStockLedger(ctx context.Context, filter domain.LedgerFilter) ([]*EntryDTO, error) {
	entries, err := s.stock.ListLedger(ctx, filter)
	if err != nil {
		return nil, err
	}
	return ToEntryDTOs(entries), nil
}
