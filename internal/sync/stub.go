package sync

import (
	"context"
	"log/slog"
	"time"

	"github.com/Jitheswar/ruralAi/internal/store"
)

// StubTransport is the development transport: it returns empty change sets
// and acknowledges every push without sending anything anywhere.
//
// Production deployments replace this with a transport speaking to the
// backend. Running against the stub still exercises the full protocol -
// checkpoint advance, flag flips - which is what offline field testing
// needs before a server exists.
type StubTransport struct{}

// Pull returns an empty change set stamped with the current time.
func (StubTransport) Pull(ctx context.Context, since time.Time) (store.ChangeSet, time.Time, error) {
	slog.Debug("stub transport pull", "since", since)
	return store.ChangeSet{}, time.Now(), nil
}

// Push logs and acknowledges the batch.
func (StubTransport) Push(ctx context.Context, batch store.PushBatch) error {
	total := 0
	for _, rows := range batch {
		total += len(rows)
	}
	slog.Debug("stub transport push", "rows", total)
	return nil
}
