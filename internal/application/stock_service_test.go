package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garment-erp/production-ledger/internal/domain"
	"github.com/garment-erp/production-ledger/internal/infrastructure/memory"
)

func newStockFixture(t *testing.T) *StockService {
	t.Helper()
	return NewStockService(memory.NewStockStore(), nil, testLogger(), &seqIDs{}, testClock)
}

func TestStockService_AddToRawStock(t *testing.T) {
	service := newStockFixture(t)
	ctx := context.Background()

	stock, err := service.AddToRawStock(ctx, AddRawStockCommand{
		ItemID: "FAB-01", LotNumber: "RLOT-1", Qty: 100, UOM: "m", Reason: "grn", Actor: "storekeeper",
	})
	require.NoError(t, err)
	assert.Equal(t, 100, stock.Quantity)

	// a second credit merges into the same (itemId, lotNumber) aggregate
	stock, err = service.AddToRawStock(ctx, AddRawStockCommand{
		ItemID: "FAB-01", LotNumber: "RLOT-1", Qty: 40, UOM: "m", Reason: "grn", Actor: "storekeeper",
	})
	require.NoError(t, err)
	assert.Equal(t, 140, stock.Quantity)

	list, err := service.ListStock(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	entries, err := service.ListStockLedger(ctx, domain.LedgerFilter{SubjectKey: domain.StockKey("FAB-01", "RLOT-1")})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	// most recent first: 140 then 100
	assert.Equal(t, 140, entries[0].BalanceAfter)
	assert.Equal(t, 100, entries[1].BalanceAfter)

	_, err = service.AddToRawStock(ctx, AddRawStockCommand{
		ItemID: "FAB-01", LotNumber: "RLOT-1", Qty: 0, UOM: "m", Actor: "storekeeper",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestStockService_AddToDamagedStock(t *testing.T) {
	service := newStockFixture(t)
	ctx := context.Background()

	entry, err := service.AddToDamagedStock(ctx, AddDamagedStockCommand{
		ItemID: "FAB-01", LotNumber: "RLOT-1", Qty: 5, UOM: "m", Reason: "water damage", Actor: "storekeeper",
	})
	require.NoError(t, err)
	assert.Equal(t, "damaged", entry.Action)
	assert.Equal(t, 5, entry.QuantityOut)
	assert.Equal(t, 0, entry.BalanceAfter, "damage postings carry no running balance")

	// audit-only: no stock aggregate is created
	list, err := service.ListStock(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	entries, err := service.ListStockLedger(ctx, domain.LedgerFilter{Action: domain.ActionDamaged})
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
