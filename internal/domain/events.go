package domain

import "time"

// DomainEvent is the base interface for all domain events
type DomainEvent interface {
	EventType() string
	OccurredAt() time.Time
}

// LotFinishedEvent is raised when a finish posting drains a lot to zero and
// auto-closes it
type LotFinishedEvent struct {
	LotNumber   string
	StyleID     string
	FinishedQty int
	Timestamp   time.Time
}

func (e LotFinishedEvent) EventType() string     { return "production.lot.finished" }
func (e LotFinishedEvent) OccurredAt() time.Time { return e.Timestamp }

// PackingClosedEvent is raised when a packing list is closed into finished goods
type PackingClosedEvent struct {
	PackingNo   string
	StyleID     string
	Color       string
	Warehouse   string
	TotalPieces int
	Timestamp   time.Time
}

func (e PackingClosedEvent) EventType() string     { return "production.packing.closed" }
func (e PackingClosedEvent) OccurredAt() time.Time { return e.Timestamp }

// DispatchConfirmedEvent is raised when a planned dispatch is confirmed and
// stock is deducted
type DispatchConfirmedEvent struct {
	DispatchID  string
	DispatchNo  string
	CustomerID  string
	TotalPieces int
	Timestamp   time.Time
}

func (e DispatchConfirmedEvent) EventType() string     { return "production.dispatch.confirmed" }
func (e DispatchConfirmedEvent) OccurredAt() time.Time { return e.Timestamp }

// ReturnProcessedEvent is raised when a dispatch return is routed
type ReturnProcessedEvent struct {
	DispatchNo string
	RoutedTo   ReturnRoute
	Quantity   int
	Timestamp  time.Time
}

func (e ReturnProcessedEvent) EventType() string     { return "production.return.processed" }
func (e ReturnProcessedEvent) OccurredAt() time.Time { return e.Timestamp }

// RepackedEvent is raised when a repack adjusts carton contents
type RepackedEvent struct {
	PackingNo  string
	StyleID    string
	PieceDelta int
	Timestamp  time.Time
}

func (e RepackedEvent) EventType() string     { return "production.stock.repacked" }
func (e RepackedEvent) OccurredAt() time.Time { return e.Timestamp }
