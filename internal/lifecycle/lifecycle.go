package lifecycle

import (
	"context"
	"fmt"
	"time"
)

// State describes where a runtime is in its life.
type State int32

const (
	// Building covers module contribution and container assembly.
	Building State = iota
	// Running is entered once assembly completes, whether or not any
	// background resource was started. The caller may still be using
	// resolved services, so the runtime stays Running until shut down.
	Running
	// Stopping means a shutdown is in flight.
	Stopping
	// Stopped is terminal.
	Stopped
)

// String implements fmt.Stringer for State.
func (s State) String() string {
	switch s {
	case Building:
		return "building"
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	case Stopped:
		return "stopped"
	}
	return fmt.Sprintf("state(%d)", int32(s))
}

// StopFunc tears down one started resource. It receives a context carrying
// the remaining shutdown budget.
type StopFunc func(ctx context.Context) error

// entry is one (resource, stop-function) pair. Entries form a stack:
// shutdown pops them in reverse registration order.
type entry struct {
	name string
	stop StopFunc
}

// DefaultShutdownTimeout bounds a whole Shutdown call when the caller does
// not configure its own budget.
const DefaultShutdownTimeout = 10 * time.Second
