package domain

import (
	"errors"
	"testing"
)

func newTestFGEntry(t *testing.T, pieces int) *FGStockEntry {
	t.Helper()
	entry := NewFGStockEntry("STY-200", "black", "WH-A", testTime)
	if pieces > 0 {
		if _, err := entry.AddPacking("PCK-001", "L", 5, pieces, "packer", &seqIDs{}, testTime); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	return entry
}

func TestFGStockEntry_AddPacking(t *testing.T) {
	entry := NewFGStockEntry("STY-200", "black", "WH-A", testTime)
	ids := &seqIDs{}

	first, err := entry.AddPacking("PCK-001", "L", 5, 50, "packer", ids, testTime)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.BalanceAfter != 50 {
		t.Errorf("expected BalanceAfter 50, got %d", first.BalanceAfter)
	}

	second, err := entry.AddPacking("PCK-002", "M", 3, 30, "packer", ids, testTime)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.BalanceAfter != 80 {
		t.Errorf("expected merged BalanceAfter 80, got %d", second.BalanceAfter)
	}
	if entry.CartonCount != 8 || entry.TotalPieces != 80 {
		t.Errorf("expected 8 cartons / 80 pieces, got %d/%d", entry.CartonCount, entry.TotalPieces)
	}
	if entry.SizeBreakdown["L"] != 50 || entry.SizeBreakdown["M"] != 30 {
		t.Errorf("size breakdown wrong: %v", entry.SizeBreakdown)
	}

	if _, err := entry.AddPacking("PCK-003", "L", 1, 0, "packer", ids, testTime); !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("expected ErrInvalidQuantity, got %v", err)
	}
}

func TestFGStockEntry_DeductDispatch(t *testing.T) {
	entry := newTestFGEntry(t, 50)
	ids := &seqIDs{}

	ledgerEntry, err := entry.DeductDispatch("DSP-1", "DN-1001", "L", 2, 20, "dispatcher", ids, testTime)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ledgerEntry.QuantityOut != 20 {
		t.Errorf("expected QuantityOut 20, got %d", ledgerEntry.QuantityOut)
	}
	if ledgerEntry.BalanceAfter != 30 {
		t.Errorf("expected BalanceAfter 30 after dispatching 20 of 50, got %d", ledgerEntry.BalanceAfter)
	}
	if entry.TotalPieces != 30 || entry.SizeBreakdown["L"] != 30 {
		t.Errorf("aggregate not debited: %d pieces, %v", entry.TotalPieces, entry.SizeBreakdown)
	}

	// over-dispatch must reject, not floor
	if _, err := entry.DeductDispatch("DSP-1", "DN-1001", "L", 1, 31, "dispatcher", ids, testTime); !errors.Is(err, ErrInsufficientBalance) {
		t.Errorf("expected ErrInsufficientBalance, got %v", err)
	}
	if entry.TotalPieces != 30 {
		t.Errorf("balance changed on rejected dispatch: %d", entry.TotalPieces)
	}

	// size-level shortage rejects even when the total would cover it
	if _, err := entry.AddPacking("PCK-009", "S", 1, 40, "packer", ids, testTime); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := entry.DeductDispatch("DSP-2", "DN-1002", "L", 1, 35, "dispatcher", ids, testTime); !errors.Is(err, ErrInsufficientBalance) {
		t.Errorf("expected ErrInsufficientBalance on size shortage, got %v", err)
	}
}

func TestFGStockEntry_CreditReturn(t *testing.T) {
	entry := newTestFGEntry(t, 50)

	ledgerEntry, err := entry.CreditReturn("DN-1001", "L", 1, 10, "warehouse", &seqIDs{}, testTime)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ledgerEntry.Action != ActionReturn {
		t.Errorf("expected return action, got %s", ledgerEntry.Action)
	}
	if ledgerEntry.BalanceAfter != 60 {
		t.Errorf("expected BalanceAfter 60, got %d", ledgerEntry.BalanceAfter)
	}
	detail := ledgerEntry.Detail.(*ReturnDetail)
	if detail.RoutedTo != ReturnRouteFG {
		t.Errorf("expected FG route, got %s", detail.RoutedTo)
	}
}

func TestFGStockEntry_ApplyRepackDelta(t *testing.T) {
	entry := newTestFGEntry(t, 50)
	ids := &seqIDs{}

	add, err := entry.ApplyRepackDelta("PCK-001", "CTN-3", "L", 4, "packer", ids, testTime)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if add.QuantityIn != 4 || add.Reason != "Repack add" {
		t.Errorf("unexpected add entry: in=%d reason=%q", add.QuantityIn, add.Reason)
	}

	remove, err := entry.ApplyRepackDelta("PCK-001", "CTN-1", "L", -14, "packer", ids, testTime)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if remove.QuantityOut != 14 || remove.Reason != "Repack remove" {
		t.Errorf("unexpected remove entry: out=%d reason=%q", remove.QuantityOut, remove.Reason)
	}
	if entry.TotalPieces != 40 {
		t.Errorf("expected 40 pieces after +4/-14, got %d", entry.TotalPieces)
	}

	if _, err := entry.ApplyRepackDelta("PCK-001", "CTN-1", "L", -41, "packer", ids, testTime); !errors.Is(err, ErrInsufficientBalance) {
		t.Errorf("expected ErrInsufficientBalance, got %v", err)
	}
	if _, err := entry.ApplyRepackDelta("PCK-001", "CTN-1", "L", 0, "packer", ids, testTime); !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("expected ErrInvalidQuantity for zero delta, got %v", err)
	}
}

func TestComputeRepackDeltas(t *testing.T) {
	original := []RepackItem{
		{CartonNo: "CTN-1", Size: "L", Color: "black", Pieces: 10},
		{CartonNo: "CTN-2", Size: "M", Color: "black", Pieces: 12},
		{CartonNo: "CTN-3", Size: "S", Color: "black", Pieces: 8},
	}
	updated := []RepackItem{
		{CartonNo: "CTN-1", Size: "L", Color: "black", Pieces: 6},  // -4
		{CartonNo: "CTN-2", Size: "M", Color: "black", Pieces: 12}, // unchanged
		{CartonNo: "CTN-4", Size: "XL", Color: "black", Pieces: 5}, // new line
	}

	deltas := ComputeRepackDeltas(original, updated)
	if len(deltas) != 3 {
		t.Fatalf("expected 3 deltas, got %d: %+v", len(deltas), deltas)
	}

	byCarton := make(map[string]RepackDelta)
	for _, d := range deltas {
		byCarton[d.CartonNo] = d
	}
	if byCarton["CTN-1"].Delta != -4 {
		t.Errorf("CTN-1: expected -4, got %d", byCarton["CTN-1"].Delta)
	}
	if byCarton["CTN-3"].Delta != -8 {
		t.Errorf("CTN-3 removed entirely: expected -8, got %d", byCarton["CTN-3"].Delta)
	}
	if byCarton["CTN-4"].Delta != 5 {
		t.Errorf("CTN-4 new: expected +5, got %d", byCarton["CTN-4"].Delta)
	}
	if _, found := byCarton["CTN-2"]; found {
		t.Errorf("unchanged line must produce no delta")
	}
}

func TestDispatchLifecycle(t *testing.T) {
	ids := &seqIDs{}
	allocations := []DispatchAllocation{
		{StyleID: "STY-200", Color: "black", Size: "L", Warehouse: "WH-A", Cartons: 2, Pieces: 20},
	}

	dispatch, err := NewDispatch("DN-1001", "CUST-9", allocations, ids, testTime)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dispatch.Status != DispatchStatusPlanned {
		t.Errorf("expected planned status, got %s", dispatch.Status)
	}
	if dispatch.TotalPieces() != 20 {
		t.Errorf("expected 20 pieces, got %d", dispatch.TotalPieces())
	}

	if err := dispatch.MarkDispatched(testTime); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dispatch.Status != DispatchStatusDispatched || dispatch.ConfirmedAt == nil {
		t.Errorf("confirmation not recorded")
	}
	if err := dispatch.MarkDispatched(testTime); !errors.Is(err, ErrDispatchNotPlanned) {
		t.Errorf("expected ErrDispatchNotPlanned on double confirm, got %v", err)
	}

	if _, err := NewDispatch("DN-1002", "CUST-9", nil, ids, testTime); !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("expected ErrInvalidQuantity for empty allocations, got %v", err)
	}
	bad := []DispatchAllocation{{StyleID: "STY-200", Pieces: 0}}
	if _, err := NewDispatch("DN-1003", "CUST-9", bad, ids, testTime); !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("expected ErrInvalidQuantity for zero-piece allocation, got %v", err)
	}
}
