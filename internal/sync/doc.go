// Package sync reconciles the local entity store against a remote source
// of truth with a pull-then-push, checkpointed protocol.
//
// Pull always precedes push within one Synchronize call, so a device never
// pushes stale data over a row it has not yet seen updated remotely. Pulled
// rows win over conflicting unsynced local state (row-level last-writer-wins
// with the server as baseline). The checkpoint advances only after a pull
// is fully applied; push failure never loses local rows - they stay flagged
// unsynced and are retried on the next call.
//
// Synchronize is idempotent and safe to re-invoke after partial failure.
// Transport failures are surfaced to callers as "sync pending", never as a
// blocking error: offline is a first-class mode, not a failure state.
package sync
