package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestAgingBucket(t *testing.T) {
	tests := []struct {
		days int
		want string
	}{
		{0, AgingBucket0To30},
		{30, AgingBucket0To30},
		{31, AgingBucket31To60},
		{60, AgingBucket31To60},
		{61, AgingBucket61To90},
		{90, AgingBucket61To90},
		{91, AgingBucket90Plus},
		{365, AgingBucket90Plus},
	}

	for _, tt := range tests {
		if got := AgingBucket(tt.days); got != tt.want {
			t.Errorf("AgingBucket(%d) = %s, want %s", tt.days, got, tt.want)
		}
	}
}

func TestComputeAging(t *testing.T) {
	asOf := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	entries := []*FGStockEntry{
		{StyleID: "A", TotalPieces: 100, PackingDate: asOf.AddDate(0, 0, -10)},
		{StyleID: "B", TotalPieces: 40, PackingDate: asOf.AddDate(0, 0, -31)},
		{StyleID: "C", TotalPieces: 25, PackingDate: asOf.AddDate(0, 0, -90)},
		{StyleID: "D", TotalPieces: 5, PackingDate: asOf.AddDate(0, 0, -120)},
	}

	buckets := ComputeAging(entries, asOf)
	if buckets[AgingBucket0To30] != 100 {
		t.Errorf("0-30: expected 100, got %d", buckets[AgingBucket0To30])
	}
	if buckets[AgingBucket31To60] != 40 {
		t.Errorf("31-60: expected 40, got %d", buckets[AgingBucket31To60])
	}
	if buckets[AgingBucket61To90] != 25 {
		t.Errorf("61-90: expected 25, got %d", buckets[AgingBucket61To90])
	}
	if buckets[AgingBucket90Plus] != 5 {
		t.Errorf("90+: expected 5, got %d", buckets[AgingBucket90Plus])
	}
}

func TestFilterDeadStock(t *testing.T) {
	asOf := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	entries := []*FGStockEntry{
		{StyleID: "FRESH", PackingDate: asOf.AddDate(0, 0, -30)},
		{StyleID: "EDGE", PackingDate: asOf.AddDate(0, 0, -90)},
		{StyleID: "DEAD", PackingDate: asOf.AddDate(0, 0, -91)},
	}

	dead := FilterDeadStock(entries, asOf)
	if len(dead) != 1 {
		t.Fatalf("expected 1 dead entry, got %d", len(dead))
	}
	if dead[0].StyleID != "DEAD" {
		t.Errorf("expected DEAD, got %s", dead[0].StyleID)
	}
}

func TestValuation(t *testing.T) {
	entries := []*FGStockEntry{
		{StyleID: "STY-1", Color: "black", Warehouse: "WH-A", TotalPieces: 10},
		{StyleID: "STY-2", Color: "white", Warehouse: "WH-A", TotalPieces: 4},
	}
	priceMap := map[string]decimal.Decimal{
		"STY-1": decimal.NewFromInt(250),
	}

	report, err := Valuation(entries, ValuationWeightedAverage, priceMap)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(report.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(report.Lines))
	}
	if !report.Lines[0].Value.Equal(decimal.NewFromInt(2500)) {
		t.Errorf("STY-1: expected 2500, got %s", report.Lines[0].Value)
	}
	// unmapped style falls back to the default unit price
	if !report.Lines[1].UnitPrice.Equal(DefaultUnitPrice) {
		t.Errorf("STY-2: expected default price, got %s", report.Lines[1].UnitPrice)
	}
	if !report.Lines[1].Value.Equal(decimal.NewFromInt(2000)) {
		t.Errorf("STY-2: expected 2000, got %s", report.Lines[1].Value)
	}
	if !report.Total.Equal(decimal.NewFromInt(4500)) {
		t.Errorf("expected total 4500, got %s", report.Total)
	}

	if _, err := Valuation(entries, "LIFO", nil); !errors.Is(err, ErrInvalidValuationMethod) {
		t.Errorf("expected ErrInvalidValuationMethod, got %v", err)
	}
}
