package sync

import (
	"context"
	"time"

	"github.com/Jitheswar/ruralAi/internal/store"
)

// Transport is the remote change channel (external collaborator).
//
// Both calls must be idempotent at the transport layer: a retried Pull with
// the same since timestamp returns a superset-safe result, and a retried
// Push of already-accepted rows is absorbed server-side. Timeouts and
// transport security are the transport's concern; the engine treats every
// failure uniformly as pull failed or push failed.
type Transport interface {
	// Pull returns all changes with server timestamp strictly greater than
	// since, plus the new server checkpoint timestamp. A zero since means
	// "everything" (first run).
	Pull(ctx context.Context, since time.Time) (store.ChangeSet, time.Time, error)

	// Push sends locally changed rows as one batch. Returning nil is the
	// acknowledgement that every row in the batch was accepted.
	Push(ctx context.Context, batch store.PushBatch) error
}
