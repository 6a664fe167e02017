package lifecycle

import (
	"fmt"
	"strings"
)

// ResourceError records one stop function that failed during shutdown.
type ResourceError struct {
	Resource string
	Err      error
}

// Error implements the error interface for ResourceError.
func (e ResourceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Resource, e.Err)
}

// Unwrap exposes the underlying stop failure.
func (e ResourceError) Unwrap() error {
	return e.Err
}

// ShutdownError aggregates every stop function that failed during one
// shutdown, so an operator sees the complete picture instead of only the
// first failure.
type ShutdownError struct {
	Failures []ResourceError
}

// Error implements the error interface for ShutdownError.
func (e *ShutdownError) Error() string {
	parts := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		parts[i] = f.Error()
	}
	return fmt.Sprintf("shutdown failed for %d resource(s): %s", len(e.Failures), strings.Join(parts, "; "))
}

// Unwrap lets errors.Is and errors.As reach the individual failures.
func (e *ShutdownError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i := range e.Failures {
		errs[i] = e.Failures[i]
	}
	return errs
}
