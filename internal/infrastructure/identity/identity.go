// Package identity provides the identifier and time sources injected into a
// reconciliation run.
//
// Production code uses UUIDSource and SystemClock. Tests use Sequence and
// FixedClock so that generated IDs and timestamps are reproducible:
//
//	ids := identity.NewSequence("id")
//	clock := identity.FixedClock{T: time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)}
package identity

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/eshaffer321/ledger-recon/internal/domain/ledger"
)

var (
	_ ledger.IDSource = UUIDSource{}
	_ ledger.IDSource = (*Sequence)(nil)
	_ ledger.Clock    = SystemClock{}
	_ ledger.Clock    = FixedClock{}
)

// UUIDSource generates random v4 UUIDs.
type UUIDSource struct{}

// NewID returns a new random UUID string.
func (UUIDSource) NewID() string {
	return uuid.NewString()
}

// Sequence generates "<prefix>-<n>" identifiers starting at 1.
type Sequence struct {
	mu     sync.Mutex
	prefix string
	next   int
}

// NewSequence creates a sequence with the given prefix.
func NewSequence(prefix string) *Sequence {
	return &Sequence{prefix: prefix, next: 1}
}

// NewID returns the next identifier in the sequence.
func (s *Sequence) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := fmt.Sprintf("%s-%d", s.prefix, s.next)
	s.next++
	return id
}

// SystemClock returns the wall-clock time.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time {
	return time.Now()
}

// FixedClock always returns T.
type FixedClock struct {
	T time.Time
}

// Now returns the fixed time.
func (c FixedClock) Now() time.Time {
	return c.T
}
