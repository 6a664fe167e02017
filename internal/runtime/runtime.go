// Package runtime holds the assembled, immutable service container for one
// application instance. A Runtime is created once per assembly, never
// mutated afterwards, and stopped exactly once through its lifecycle
// manager.
package runtime

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/vk/loom/internal/command"
	"github.com/vk/loom/internal/config"
	"github.com/vk/loom/internal/lifecycle"
	"github.com/vk/loom/internal/registry"
)

// binding is one named service slot. Factories run at most once; the
// result (value or error) is memoized.
type binding struct {
	factory registry.FactoryFunc
	once    sync.Once
	value   any
	err     error
}

// Params carries everything the assembler hands to a new Runtime.
type Params struct {
	Bindings  map[string]registry.FactoryFunc
	View      *config.View
	Commands  *command.Set
	Lifecycle *lifecycle.Manager
	Logger    *slog.Logger
	Stdout    io.Writer
	Stderr    io.Writer
}

// Runtime is the immutable container produced by assembly.
type Runtime struct {
	id        string
	bindings  map[string]*binding
	view      *config.View
	commands  *command.Set
	lifecycle *lifecycle.Manager
	logger    *slog.Logger
	stdout    io.Writer
	stderr    io.Writer
}

// New builds a Runtime from assembled parts. Only the assembler calls it.
func New(p Params) *Runtime {
	bindings := make(map[string]*binding, len(p.Bindings))
	for name, factory := range p.Bindings {
		bindings[name] = &binding{factory: factory}
	}
	return &Runtime{
		id:        uuid.NewString(),
		bindings:  bindings,
		view:      p.View,
		commands:  p.Commands,
		lifecycle: p.Lifecycle,
		logger:    p.Logger,
		stdout:    p.Stdout,
		stderr:    p.Stderr,
	}
}

// ID is the unique identity of this runtime instance.
func (r *Runtime) ID() string { return r.id }

// Resolve returns the service bound under name, invoking its factory on
// first use. The factory result is memoized: assembling twice with the
// same inputs yields containers that resolve equivalent services.
func (r *Runtime) Resolve(name string) (any, error) {
	b, ok := r.bindings[name]
	if !ok {
		return nil, fmt.Errorf("runtime: no service bound under %q", name)
	}
	b.once.Do(func() {
		b.value, b.err = b.factory(r)
		if b.err != nil {
			b.err = fmt.Errorf("runtime: building service %q: %w", name, b.err)
		}
	})
	return b.value, b.err
}

// Lookup is Resolve without the error, for callers that only care whether
// the capability exists and builds cleanly.
func (r *Runtime) Lookup(name string) (any, bool) {
	v, err := r.Resolve(name)
	if err != nil {
		return nil, false
	}
	return v, true
}

// ServiceNames returns every bound service name, sorted.
func (r *Runtime) ServiceNames() []string {
	names := make([]string, 0, len(r.bindings))
	for name := range r.bindings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MustLookup is Resolve for capabilities the caller knows are bound, such
// as a module resolving a service it bound itself. It panics on failure.
func (r *Runtime) MustLookup(name string) any {
	v, err := r.Resolve(name)
	if err != nil {
		panic(err)
	}
	return v
}

// Config returns the merged configuration view.
func (r *Runtime) Config() *config.View { return r.view }

// Commands returns the command set contributed by modules.
func (r *Runtime) Commands() *command.Set { return r.commands }

// Lifecycle returns the manager owning this runtime's started resources.
func (r *Runtime) Lifecycle() *lifecycle.Manager { return r.lifecycle }

// Logger returns this runtime's isolated logger.
func (r *Runtime) Logger() *slog.Logger { return r.logger }

// Stdout returns the runtime's standard output sink.
func (r *Runtime) Stdout() io.Writer { return r.stdout }

// Stderr returns the runtime's standard error sink.
func (r *Runtime) Stderr() io.Writer { return r.stderr }

// Shutdown stops every resource this runtime started. Calling it again is
// a no-op returning the first result.
func (r *Runtime) Shutdown(ctx context.Context) error {
	return r.lifecycle.Shutdown(ctx)
}

var _ command.Runtime = (*Runtime)(nil)
var _ registry.Container = (*Runtime)(nil)
