package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ID prefixes per record kind
const (
	PrefixEntry    = "LE"
	PrefixLot      = "LOT"
	PrefixIssue    = "ISS"
	PrefixDispatch = "DSP"
	PrefixTransfer = "TRF"
	PrefixRework   = "RWK"
)

// IDSource generates identifiers for ledger entries and documents.
// Injected so tests can produce deterministic ids.
type IDSource interface {
	NewID(prefix string) string
}

type uuidSource struct {
	now func() time.Time
}

// NewUUIDSource returns the default IDSource, producing ids of the form
// PREFIX-20060102150405-8hexchars.
func NewUUIDSource(now func() time.Time) IDSource {
	if now == nil {
		now = time.Now
	}
	return &uuidSource{now: now}
}

func (s *uuidSource) NewID(prefix string) string {
	timestamp := s.now().UTC().Format("20060102150405")
	return fmt.Sprintf("%s-%s-%s", prefix, timestamp, uuid.New().String()[:8])
}
