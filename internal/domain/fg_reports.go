package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ValuationMethod labels the costing basis of a valuation report. All methods
// currently share the same arithmetic; the label is carried for reporting.
type ValuationMethod string

const (
	ValuationFIFO            ValuationMethod = "FIFO"
	ValuationWeightedAverage ValuationMethod = "WEIGHTED_AVERAGE"
	ValuationStandard        ValuationMethod = "STANDARD"
)

// IsValid checks if the valuation method is valid
func (m ValuationMethod) IsValid() bool {
	switch m {
	case ValuationFIFO, ValuationWeightedAverage, ValuationStandard:
		return true
	default:
		return false
	}
}

// String returns the string representation of the valuation method
func (m ValuationMethod) String() string {
	return string(m)
}

// DefaultUnitPrice values styles absent from the price map
var DefaultUnitPrice = decimal.NewFromInt(500)

// DeadStockThresholdDays is the age past which packed stock counts as dead
const DeadStockThresholdDays = 90

// Aging bucket labels
const (
	AgingBucket0To30  = "0-30"
	AgingBucket31To60 = "31-60"
	AgingBucket61To90 = "61-90"
	AgingBucket90Plus = "90+"
)

// AgingBucket returns the bucket label for an age in whole days
func AgingBucket(days int) string {
	switch {
	case days <= 30:
		return AgingBucket0To30
	case days <= 60:
		return AgingBucket31To60
	case days <= 90:
		return AgingBucket61To90
	default:
		return AgingBucket90Plus
	}
}

// AgeInDays returns whole elapsed days between packing and the as-of instant
func AgeInDays(packingDate, asOf time.Time) int {
	return int(asOf.Sub(packingDate).Hours() / 24)
}

// ComputeAging buckets total pieces by packing age as of the given instant
func ComputeAging(entries []*FGStockEntry, asOf time.Time) map[string]int {
	buckets := map[string]int{
		AgingBucket0To30:  0,
		AgingBucket31To60: 0,
		AgingBucket61To90: 0,
		AgingBucket90Plus: 0,
	}
	for _, e := range entries {
		buckets[AgingBucket(AgeInDays(e.PackingDate, asOf))] += e.TotalPieces
	}
	return buckets
}

// FilterDeadStock returns entries packed more than the dead-stock threshold ago
func FilterDeadStock(entries []*FGStockEntry, asOf time.Time) []*FGStockEntry {
	dead := make([]*FGStockEntry, 0)
	for _, e := range entries {
		if AgeInDays(e.PackingDate, asOf) > DeadStockThresholdDays {
			dead = append(dead, e)
		}
	}
	return dead
}

// ValuationLine is the valued position of one stock entry
type ValuationLine struct {
	StyleID   string          `json:"styleId"`
	Color     string          `json:"color"`
	Warehouse string          `json:"warehouse"`
	Pieces    int             `json:"pieces"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Value     decimal.Decimal `json:"value"`
}

// ValuationReport is the valued stock position under one method
type ValuationReport struct {
	Method ValuationMethod `json:"method"`
	Lines  []ValuationLine `json:"lines"`
	Total  decimal.Decimal `json:"total"`
}

// Valuation values every entry at priceMap[style], falling back to the
// default unit price for unmapped styles.
func Valuation(entries []*FGStockEntry, method ValuationMethod, priceMap map[string]decimal.Decimal) (*ValuationReport, error) {
	if !method.IsValid() {
		return nil, ErrInvalidValuationMethod
	}

	report := &ValuationReport{
		Method: method,
		Lines:  make([]ValuationLine, 0, len(entries)),
		Total:  decimal.Zero,
	}
	for _, e := range entries {
		price, ok := priceMap[e.StyleID]
		if !ok {
			price = DefaultUnitPrice
		}
		value := price.Mul(decimal.NewFromInt(int64(e.TotalPieces)))
		report.Lines = append(report.Lines, ValuationLine{
			StyleID:   e.StyleID,
			Color:     e.Color,
			Warehouse: e.Warehouse,
			Pieces:    e.TotalPieces,
			UnitPrice: price,
			Value:     value,
		})
		report.Total = report.Total.Add(value)
	}
	return report, nil
}
