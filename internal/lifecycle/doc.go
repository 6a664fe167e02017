// Package lifecycle tracks the resources a runtime starts and guarantees
// they are stopped in reverse registration order, exactly once, bounded by
// an overall shutdown timeout.
package lifecycle
