package registry

import (
	"fmt"
	"sync"

	"github.com/vk/loom/internal/discovery"
)

// Factory instantiates the descriptor for one discoverable module
// implementation.
type Factory func() *Descriptor

// Table maps implementation names from the discovery index to descriptor
// factories. It replaces reflection-based provider lookup with an explicit
// constructor table populated at process start.
type Table struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewTable creates an empty factory table.
func NewTable() *Table {
	return &Table{factories: make(map[string]Factory)}
}

// RegisterFactory binds an implementation name to its factory.
func (t *Table) RegisterFactory(impl string, f Factory) error {
	if impl == "" || f == nil {
		return fmt.Errorf("registry: factory registration needs a name and a function")
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.factories[impl]; exists {
		return fmt.Errorf("registry: factory %q already registered", impl)
	}
	t.factories[impl] = f
	return nil
}

// Lookup returns the factory for an implementation name.
func (t *Table) Lookup(impl string) (Factory, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	f, ok := t.factories[impl]
	return f, ok
}

// Reset clears the table. Tests use it to keep parallel runs from seeing
// each other's registrations in the default table.
func (t *Table) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.factories = make(map[string]Factory)
}

// resolve turns one discovery record into a descriptor, or a
// *discovery.Error naming the offending record.
func (t *Table) resolve(src discovery.Source, rec discovery.Record) (*Descriptor, error) {
	f, ok := t.Lookup(rec.Impl)
	if !ok {
		return nil, &discovery.Error{
			Provider: rec.Provider,
			Impl:     rec.Impl,
			Source:   src.Label,
			Reason:   "no factory registered for implementation",
		}
	}
	desc := f()
	if desc == nil || desc.Name == "" || desc.Contribute == nil {
		return nil, &discovery.Error{
			Provider: rec.Provider,
			Impl:     rec.Impl,
			Source:   src.Label,
			Reason:   "factory produced an unusable descriptor",
		}
	}
	return desc, nil
}

// defaultTable is the process-wide table with an explicit init/reset
// lifecycle, guarded so parallel builds only ever read it.
var (
	defaultTableMu sync.Mutex
	defaultTable   *Table
)

// DefaultTable returns the process-wide factory table, creating it on
// first use.
func DefaultTable() *Table {
	defaultTableMu.Lock()
	defer defaultTableMu.Unlock()
	if defaultTable == nil {
		defaultTable = NewTable()
	}
	return defaultTable
}

// ResetDefaultTable discards the process-wide table. Intended for tests.
func ResetDefaultTable() {
	defaultTableMu.Lock()
	defer defaultTableMu.Unlock()
	defaultTable = nil
}
