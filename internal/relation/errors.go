package relation

import (
	"errors"
	"fmt"
)

// ErrUnresolvedHandle is returned by Link and Unlink when a supplied
// handle is nil. It is the only failure mode of the synchronizer itself;
// everything else surfaces from the persistence context.
var ErrUnresolvedHandle = errors.New("unresolved entity handle")

// errNoLoader reports a read against an unloaded collection that was
// constructed without a loader.
var errNoLoader = errors.New("collection has no loader")

// MaterializationError wraps a persistence-context load failure raised
// at the point of the triggering read.
type MaterializationError struct {
	Owner *Handle
	Field string
	Err   error
}

func (e *MaterializationError) Error() string {
	return fmt.Sprintf("materialize %s.%s: %v", e.Owner, e.Field, e.Err)
}

func (e *MaterializationError) Unwrap() error {
	return e.Err
}

// ReconciliationError wraps a flush-time durable write failure. The
// pending-mutation log of the failed collection is left intact so the
// flush can be retried without redoing domain logic.
type ReconciliationError struct {
	Owner *Handle
	Field string
	Err   error
}

func (e *ReconciliationError) Error() string {
	return fmt.Sprintf("reconcile %s.%s: %v", e.Owner, e.Field, e.Err)
}

func (e *ReconciliationError) Unwrap() error {
	return e.Err
}
