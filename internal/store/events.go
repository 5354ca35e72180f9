package store

import (
	"log/slog"
	"sync"
)

// Op classifies a change event.
type Op string

const (
	// OpCreate marks a local entity creation.
	OpCreate Op = "create"
	// OpUpdate marks a local entity mutation.
	OpUpdate Op = "update"
	// OpPull marks a row written by sync reconciliation.
	OpPull Op = "pull"
)

// ChangeEvent describes one committed mutation. Emitted after the owning
// transaction commits, never before.
type ChangeEvent struct {
	Table string
	ID    string
	Op    Op
}

const defaultEventBuffer = 64

// notifier fans committed change events out to a single bounded channel.
//
// Delivery is lossy by design: when the subscriber falls behind, events are
// dropped (and counted) rather than blocking a write path. UI consumers
// treat events as invalidation hints and re-query, so a dropped event only
// delays a refresh.
type notifier struct {
	mu      sync.Mutex
	ch      chan ChangeEvent
	closed  bool
	dropped int64
}

func newNotifier(buffer int) *notifier {
	return &notifier{ch: make(chan ChangeEvent, buffer)}
}

// publish delivers an event without blocking.
func (n *notifier) publish(ev ChangeEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}
	select {
	case n.ch <- ev:
	default:
		n.dropped++
		slog.Warn("change event dropped, subscriber lagging",
			"table", ev.Table,
			"op", string(ev.Op),
			"dropped_total", n.dropped,
		)
	}
}

// Close closes the event channel. Further publishes are discarded.
func (n *notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.closed {
		n.closed = true
		close(n.ch)
	}
}

// Events returns the change event channel. The channel is closed when the
// store closes.
func (s *Store) Events() <-chan ChangeEvent {
	return s.events.ch
}

// DroppedEvents returns how many change events were dropped due to a
// lagging subscriber. Used for diagnostics and tests.
func (s *Store) DroppedEvents() int64 {
	s.events.mu.Lock()
	defer s.events.mu.Unlock()
	return s.events.dropped
}
