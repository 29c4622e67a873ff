package parfor

import (
	"errors"
	"fmt"
)

// Fault wraps the error raised by a single iteration's work unit together
// with the iteration that produced it, so callers can attribute failures
// to specific inputs.
type Fault struct {
	// Index is the iteration's position in the logical sequence: the
	// progression index in [For] and [ForEach], the pull sequence number
	// in [While].
	Index int

	// Value is the iteration input the work unit was bound to.
	Value any

	// Err is the error returned by the work unit, or a [*PanicError] if
	// the unit panicked.
	Err error
}

func (f *Fault) Error() string {
	return fmt.Sprintf("iteration %d (input %v) failed: %v", f.Index, f.Value, f.Err)
}

func (f *Fault) Unwrap() error {
	return f.Err
}

// AggregateError is the single error surfaced after a whole call
// completes when at least one work unit faulted. It carries every fault
// collected across all partitions, in the order they were recorded.
//
// It is never raised mid-run: one failing iteration does not stop or
// cancel its siblings.
type AggregateError struct {
	// Op names the entry point that produced the error ("For",
	// "ForEach", or "While").
	Op string

	// Faults lists every per-iteration fault, in insertion order.
	Faults []*Fault
}

func (e *AggregateError) Error() string {
	if len(e.Faults) == 1 {
		return fmt.Sprintf("parfor: %s: 1 iteration failed: %v", e.Op, e.Faults[0].Err)
	}
	return fmt.Sprintf("parfor: %s: %d iterations failed (first: %v)", e.Op, len(e.Faults), e.Faults[0].Err)
}

// Unwrap exposes every fault, making the aggregate compatible with
// [errors.Is] and [errors.As] against individual causes.
func (e *AggregateError) Unwrap() []error {
	out := make([]error, len(e.Faults))
	for i, f := range e.Faults {
		out[i] = f
	}
	return out
}

// IsAggregate reports whether err (or any error in its chain) is an
// [*AggregateError].
func IsAggregate(err error) bool {
	if err == nil {
		return false
	}
	var ae *AggregateError
	return errors.As(err, &ae)
}

// FaultsOf recursively collects every [*Fault] from err's chain,
// including faults reachable through multi-error wrappers. Returns nil
// if none are found.
func FaultsOf(err error) []*Fault {
	if err == nil {
		return nil
	}

	var out []*Fault
	collectFaults(err, &out)
	return out
}

func collectFaults(err error, out *[]*Fault) {
	switch e := err.(type) {
	case *Fault:
		*out = append(*out, e)

	case interface{ Unwrap() []error }:
		for _, sub := range e.Unwrap() {
			collectFaults(sub, out)
		}

	case interface{ Unwrap() error }:
		collectFaults(e.Unwrap(), out)
	}
}

// CauseOf unwraps the first [*Fault] in err's chain and returns its
// underlying cause. If err carries no fault, it is returned as-is.
// Returns nil if err is nil.
func CauseOf(err error) error {
	if err == nil {
		return nil
	}

	if faults := FaultsOf(err); len(faults) > 0 {
		return faults[0].Err
	}
	return err
}
