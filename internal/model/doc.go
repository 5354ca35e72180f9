// Package model defines the persisted entity types of the offline core:
// User, Patient, HealthLog, and Medicine, along with field validation.
//
// Entities are plain structs with no behavior beyond validation. Persistence
// lives in internal/store; these types are shared between the store, the
// sync engine, and the CLI.
package model
