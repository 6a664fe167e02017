package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Manager tracks every resource a runtime starts and stops them all, in
// reverse registration order, exactly once. It is safe for Shutdown to race
// with Register and with concurrent Shutdown calls: the first call performs
// the teardown, every other call blocks until it finishes and observes the
// same result.
type Manager struct {
	mu      sync.Mutex
	state   State
	entries []entry
	timeout time.Duration
	logger  *slog.Logger

	// done is closed once the winning Shutdown call has finished; result
	// holds its outcome for the losers to return.
	done   chan struct{}
	result error
}

// New returns a Manager in the Building state.
func New(logger *slog.Logger, timeout time.Duration) *Manager {
	if timeout <= 0 {
		timeout = DefaultShutdownTimeout
	}
	return &Manager{
		state:   Building,
		timeout: timeout,
		logger:  logger,
		done:    make(chan struct{}),
	}
}

// State reports the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// StartRunning transitions Building -> Running. Called by the assembler once
// the container has been built successfully.
func (m *Manager) StartRunning() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Building {
		return fmt.Errorf("lifecycle: cannot start running from state %q", m.state)
	}
	m.state = Running
	return nil
}

// Register records a started resource and its stop function. Registration is
// legal while Building or Running; once a shutdown has begun the resource
// would never be stopped, so the call is rejected instead.
func (m *Manager) Register(name string, stop StopFunc) error {
	if stop == nil {
		return fmt.Errorf("lifecycle: nil stop function for %q", name)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == Stopping || m.state == Stopped {
		return fmt.Errorf("lifecycle: cannot register %q in state %q", name, m.state)
	}
	m.logger.Debug("Lifecycle resource registered.", "resource", name, "position", len(m.entries))
	m.entries = append(m.entries, entry{name: name, stop: stop})
	return nil
}

// Active returns how many stop functions are currently registered.
func (m *Manager) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == Stopped {
		return 0
	}
	return len(m.entries)
}

// Shutdown stops every registered resource in reverse registration order.
// Each stop function runs at most once across all Shutdown calls. Failures
// are collected rather than short-circuiting, so one broken resource does
// not leave the others running; they are reported together as a
// *ShutdownError after every stop function has had its chance.
//
// The whole call is bounded by the manager's timeout. A stop function that
// hangs forfeits the remainder of the budget but the entries queued behind
// it are still attempted (with an already-expired context).
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	switch m.state {
	case Stopped:
		result := m.result
		m.mu.Unlock()
		return result
	case Stopping:
		m.mu.Unlock()
		<-m.done
		m.mu.Lock()
		result := m.result
		m.mu.Unlock()
		return result
	}
	m.state = Stopping
	entries := m.entries
	m.mu.Unlock()

	result := m.stopAll(ctx, entries)

	m.mu.Lock()
	m.state = Stopped
	m.result = result
	m.mu.Unlock()
	close(m.done)
	return result
}

// stopAll runs the registered stop functions newest-first under a shared
// deadline derived from the manager's timeout.
func (m *Manager) stopAll(ctx context.Context, entries []entry) error {
	if len(entries) == 0 {
		return nil
	}

	sctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	var failures []ResourceError
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		m.logger.Debug("Stopping resource.", "resource", e.name)
		if err := m.stopOne(sctx, e); err != nil {
			m.logger.Error("Resource failed to stop.", "resource", e.name, "error", err)
			failures = append(failures, ResourceError{Resource: e.name, Err: err})
			continue
		}
		m.logger.Debug("Resource stopped.", "resource", e.name)
	}

	if len(failures) > 0 {
		return &ShutdownError{Failures: failures}
	}
	return nil
}

// stopOne invokes a single stop function on its own goroutine so a hung
// function cannot block the queue past the shared deadline.
func (m *Manager) stopOne(ctx context.Context, e entry) error {
	errCh := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				errCh <- fmt.Errorf("stop panicked: %v", r)
			}
		}()
		errCh <- e.stop(ctx)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return fmt.Errorf("stop abandoned: %w", ctx.Err())
	}
}
