package sync

import (
	"errors"
	"fmt"
)

// Phase identifies which half of the protocol an error belongs to.
type Phase string

const (
	PhasePull Phase = "pull"
	PhasePush Phase = "push"
)

// ErrSyncInProgress is returned when Synchronize is invoked while another
// invocation is still in flight. The second call is rejected, never run
// concurrently, to avoid duplicate checkpoint races.
var ErrSyncInProgress = errors.New("synchronization already in progress")

// TransportError wraps a pull or push failure. Callers surface it as a
// non-blocking "sync pending" state: the checkpoint design makes a later
// retry safe, so transport failure is never fatal.
type TransportError struct {
	Phase Phase
	Err   error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Phase, e.Err)
}

// Unwrap returns the underlying transport failure.
func (e *TransportError) Unwrap() error { return e.Err }

// IsTransportError returns true if the error is a TransportError.
// Uses errors.As to handle wrapped errors.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsPullError returns true for a pull-phase transport failure.
func IsPullError(err error) bool {
	var te *TransportError
	return errors.As(err, &te) && te.Phase == PhasePull
}

// IsPushError returns true for a push-phase transport failure.
func IsPushError(err error) bool {
	var te *TransportError
	return errors.As(err, &te) && te.Phase == PhasePush
}

// SchemaVersionError reports a local schema below the minimum version the
// server protocol expects. Fatal until migration succeeds: Synchronize
// aborts cleanly with no partial pull or push.
type SchemaVersionError struct {
	Local    int
	Required int
}

// Error implements the error interface.
func (e *SchemaVersionError) Error() string {
	return fmt.Sprintf("local schema version %d below required %d", e.Local, e.Required)
}

// IsSchemaVersionError returns true if the error is a SchemaVersionError.
func IsSchemaVersionError(err error) bool {
	var se *SchemaVersionError
	return errors.As(err, &se)
}
