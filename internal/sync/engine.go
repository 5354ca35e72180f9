package sync

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/Jitheswar/ruralAi/internal/store"
)

// Engine drives the pull-then-push protocol between the local store and a
// remote transport.
//
// Thread-safety model:
//   - Synchronize(): safe to call from any goroutine, but only one
//     invocation runs at a time; concurrent calls get ErrSyncInProgress.
//   - All store writes inside a run go through the store's transactions,
//     serializing against UI-triggered writes.
type Engine struct {
	store     *store.Store
	transport Transport

	// minSchemaVersion is the lowest local schema version the server
	// protocol accepts. Checked (and migrated) before any network exchange.
	minSchemaVersion int

	inFlight atomic.Bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithMinSchemaVersion overrides the minimum schema version asserted
// before synchronizing. Defaults to store.CurrentSchemaVersion.
func WithMinSchemaVersion(v int) Option {
	return func(e *Engine) { e.minSchemaVersion = v }
}

// New creates a sync Engine over the given store and transport.
func New(s *store.Store, t Transport, opts ...Option) *Engine {
	e := &Engine{
		store:            s,
		transport:        t,
		minSchemaVersion: store.CurrentSchemaVersion,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Synchronize runs one pull-then-push round. Idempotent and safe to invoke
// repeatedly, including after partial prior failure.
//
// Failure semantics:
//   - Pull failure: checkpoint not advanced, push skipped entirely;
//     a later call resumes from the old checkpoint with no data loss.
//   - Push failure after a successful pull: the checkpoint keeps its new
//     value (pulled data is safe) but local rows stay unsynced and are
//     retried next call. Push failure is never treated as pull failure.
//   - Cancellation (ctx) behaves like the corresponding transport failure:
//     a cancelled pull does not advance the checkpoint, a cancelled push
//     leaves every is_synced flag untouched.
func (e *Engine) Synchronize(ctx context.Context) error {
	if !e.inFlight.CompareAndSwap(false, true) {
		return ErrSyncInProgress
	}
	defer e.inFlight.Store(false)

	if err := e.ensureSchema(ctx); err != nil {
		return err
	}

	if err := e.pull(ctx); err != nil {
		slog.Warn("sync pull failed, push skipped", "error", err)
		return err
	}

	if err := e.push(ctx); err != nil {
		slog.Warn("sync push failed, rows remain pending", "error", err)
		return err
	}

	return nil
}

// ensureSchema asserts the local schema meets the server's minimum,
// migrating first if it does not. No network exchange happens before this.
func (e *Engine) ensureSchema(ctx context.Context) error {
	version, err := e.store.SchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("check schema version: %w", err)
	}
	if version >= e.minSchemaVersion {
		return nil
	}

	slog.Info("local schema below protocol minimum, migrating",
		"local", version,
		"required", e.minSchemaVersion,
	)
	if err := e.store.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}

	version, err = e.store.SchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("check schema version: %w", err)
	}
	if version < e.minSchemaVersion {
		return &SchemaVersionError{Local: version, Required: e.minSchemaVersion}
	}
	return nil
}

// pull fetches remote deltas since the checkpoint, applies them (server
// wins over local unsynced state), then advances the checkpoint. The
// checkpoint moves only after every pulled change has committed.
func (e *Engine) pull(ctx context.Context) error {
	since, err := e.store.Checkpoint(ctx)
	if err != nil {
		return err
	}

	changes, serverTS, err := e.transport.Pull(ctx, since)
	if err != nil {
		return &TransportError{Phase: PhasePull, Err: err}
	}

	if err := e.store.ApplyPull(ctx, changes); err != nil {
		return fmt.Errorf("apply pulled changes: %w", err)
	}

	if err := e.store.SetCheckpoint(ctx, serverTS); err != nil {
		return err
	}

	slog.Info("pull applied",
		"since", since,
		"server_ts", serverTS,
		"tables", len(changes),
	)
	return nil
}

// push sends every unsynced row as one batch and, only on transport
// acknowledgement, flips their sync flags in a single transaction.
func (e *Engine) push(ctx context.Context) error {
	batch, err := e.store.Unsynced(ctx)
	if err != nil {
		return err
	}
	if batch.Empty() {
		slog.Debug("push skipped, nothing unsynced")
		return nil
	}

	if err := e.transport.Push(ctx, batch); err != nil {
		return &TransportError{Phase: PhasePush, Err: err}
	}

	if err := e.store.MarkSynced(ctx, batch); err != nil {
		return err
	}

	total := 0
	for _, rows := range batch {
		total += len(rows)
	}
	slog.Info("push acknowledged", "rows", total, "tables", len(batch))
	return nil
}
