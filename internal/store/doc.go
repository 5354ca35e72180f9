// Package store provides the durable on-device entity store backing
// offline-first operation.
//
// Four entity kinds are persisted: users, patients, health logs and
// medicines. Every row carries an is_synced flag: local creates and edits
// set it false; only the sync engine (via MarkSynced or ApplyPull) sets it
// true. Uses SQLite with WAL mode; mutations run inside transactions that
// either fully commit or fully roll back.
//
// The store is the single writer on a device. Mutations emit change events
// on a bounded channel that UI code can subscribe to.
package store
