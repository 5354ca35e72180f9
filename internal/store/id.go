package store

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// IDGenerator produces stable entity ids at create time.
// Implemented by UUIDv7 (production) and FixedIDs (tests).
type IDGenerator interface {
	NewID() string
}

// UUIDv7 generates time-sortable UUIDv7 entity ids.
//
// UUIDv7 embeds a timestamp in the most significant bits, so ids created
// offline still sort by creation time once they reach the server - useful
// when reconciling batches pushed after a long offline stretch.
//
// Thread-safety: UUIDv7 is stateless and safe for concurrent use.
type UUIDv7 struct{}

// NewID returns a new hyphenated UUIDv7 string.
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7) NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedIDs returns predetermined ids for testing.
// Enables deterministic entity ids and golden comparisons.
//
// Thread-safety: safe for concurrent use via internal mutex.
type FixedIDs struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewFixedIDs creates a generator that returns ids in order.
//
// Example:
//
//	gen := NewFixedIDs("p-1", "p-2")
//	gen.NewID() // "p-1"
//	gen.NewID() // "p-2"
//	gen.NewID() // panic: ids exhausted
func NewFixedIDs(ids ...string) *FixedIDs {
	return &FixedIDs{ids: ids}
}

// NewID returns the next predetermined id.
func (g *FixedIDs) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.idx >= len(g.ids) {
		panic(fmt.Sprintf("FixedIDs: all %d ids exhausted", len(g.ids)))
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}
