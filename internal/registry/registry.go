// Package registry holds the module set for a single runtime build: module
// descriptors added explicitly or autoloaded from a discovery source, with
// explicit registration always winning over an autoloaded module of the
// same identity.
package registry

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/vk/loom/internal/command"
	"github.com/vk/loom/internal/discovery"
	"github.com/zclconf/go-cty/cty"
)

// Container is the read side of an assembled runtime, as seen by service
// factories.
type Container interface {
	Resolve(name string) (any, error)
}

// FactoryFunc builds a service on first lookup. The container memoizes the
// result.
type FactoryFunc func(c Container) (any, error)

// Binder is the contribution surface a module sees during assembly. It is
// the single entry point through which the engine learns about a module's
// internals.
type Binder interface {
	// Bind registers a lazily built service under name.
	Bind(name string, factory FactoryFunc)
	// BindInstance registers an already built value under name.
	BindInstance(name string, value any)
	// Default declares a configuration default, sitting below every
	// override source.
	Default(key string, value cty.Value)
	// Command contributes a CLI command to the runtime.
	Command(cmd command.Command)
}

// Descriptor identifies a module and carries its contribution function.
// Descriptors are immutable once registered.
type Descriptor struct {
	// Name is the module identity used for de-duplication and dependency
	// declarations.
	Name string
	// DependsOn names modules whose contributions must run first.
	DependsOn []string
	// Contribute is invoked exactly once during assembly.
	Contribute func(b Binder) error
}

// Registry accumulates the module set for one runtime build. It must not
// be shared across concurrent builds; each build gets its own.
type Registry struct {
	mu       sync.Mutex
	entries  []regEntry
	byName   map[string]int
	consumed bool
}

type regEntry struct {
	desc       *Descriptor
	autoloaded bool
}

// ErrConsumed is returned by mutations after the registry has been handed
// to assembly.
var ErrConsumed = fmt.Errorf("registry: module set already consumed by assembly")

// New creates an empty Registry.
func New() *Registry {
	return &Registry{byName: make(map[string]int)}
}

// Register adds an explicit module. An explicit module replaces an
// autoloaded one of the same name no matter which arrived first; two
// explicit modules with the same name are a wiring bug.
func (r *Registry) Register(d *Descriptor) error {
	if d == nil || d.Name == "" {
		return fmt.Errorf("registry: descriptor must have a name")
	}
	if d.Contribute == nil {
		return fmt.Errorf("registry: module %q has no contribution function", d.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.consumed {
		return ErrConsumed
	}

	if idx, exists := r.byName[d.Name]; exists {
		if !r.entries[idx].autoloaded {
			return fmt.Errorf("registry: module %q already registered", d.Name)
		}
		// Explicit wins; keep the original position so ordering stays
		// deterministic.
		slog.Debug("Explicit module replaces autoloaded module.", "module", d.Name)
		r.entries[idx] = regEntry{desc: d}
		return nil
	}

	r.entries = append(r.entries, regEntry{desc: d})
	r.byName[d.Name] = len(r.entries) - 1
	return nil
}

// add inserts an autoloaded descriptor unless the name is already present.
func (r *Registry) addAutoloaded(d *Descriptor) {
	if _, exists := r.byName[d.Name]; exists {
		return
	}
	r.entries = append(r.entries, regEntry{desc: d, autoloaded: true})
	r.byName[d.Name] = len(r.entries) - 1
}

// AutoLoad scans the discovery source and registers every record that
// resolves through the factory table and is not already present. A record
// naming an implementation the table cannot resolve is fatal and reported
// as a *discovery.Error.
func (r *Registry) AutoLoad(src discovery.Source, table *Table) error {
	records, err := src.Records()
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.consumed {
		return ErrConsumed
	}

	for _, rec := range records {
		desc, err := table.resolve(src, rec)
		if err != nil {
			return err
		}
		slog.Debug("Autoloaded module record.", "provider", rec.Provider, "impl", rec.Impl, "module", desc.Name)
		r.addAutoloaded(desc)
	}
	return nil
}

// Consume hands the ordered module set to the assembler and freezes the
// registry: later Register/AutoLoad calls fail with ErrConsumed.
func (r *Registry) Consume() ([]*Descriptor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.consumed {
		return nil, ErrConsumed
	}
	r.consumed = true

	descs := make([]*Descriptor, len(r.entries))
	for i, e := range r.entries {
		descs[i] = e.desc
	}
	return descs, nil
}

// Names returns the registered module names in registration order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, len(r.entries))
	for i, e := range r.entries {
		names[i] = e.desc.Name
	}
	return names
}

// Len returns the number of registered modules.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
