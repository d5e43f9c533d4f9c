package events

import (
	"context"
	"sync"
	"time"
)

// Finance event types published by the ledger engine
const (
	TypePackingClose    = "packing_close"
	TypeDispatchConfirm = "dispatch_confirm"
	TypeReturnProcessed = "return_processed"
	TypeRepack          = "repack"
	TypeLotFinished     = "lot_finished"
)

// Envelope wraps a domain event for publishing
type Envelope struct {
	ID      string    `json:"id"`
	Type    string    `json:"type"`
	Source  string    `json:"source"`
	Subject string    `json:"subject"`
	Time    time.Time `json:"time"`
	Data    any       `json:"data"`
}

// Publisher is the seam through which downstream subsystems (finance,
// reporting) observe ledger events without the engine depending on them
type Publisher interface {
	Publish(ctx context.Context, envelope Envelope) error
}

// Handler consumes published envelopes
type Handler func(ctx context.Context, envelope Envelope)

// Bus is an in-process publisher delivering to a fixed set of subscribers
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
}

// NewBus creates an empty bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[string][]Handler),
	}
}

// Subscribe registers a handler for an event type. An empty type subscribes
// to everything.
func (b *Bus) Subscribe(eventType string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// Publish delivers the envelope synchronously to matching subscribers
func (b *Bus) Publish(ctx context.Context, envelope Envelope) error {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.handlers[envelope.Type])+len(b.handlers[""]))
	handlers = append(handlers, b.handlers[envelope.Type]...)
	handlers = append(handlers, b.handlers[""]...)
	b.mu.RUnlock()

	for _, handler := range handlers {
		handler(ctx, envelope)
	}
	return nil
}

// NopPublisher discards every envelope
type NopPublisher struct{}

// Publish implements Publisher
func (NopPublisher) Publish(ctx context.Context, envelope Envelope) error {
	return nil
}
