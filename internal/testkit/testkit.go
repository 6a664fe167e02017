// Package testkit creates and tears down isolated runtimes inside one test
// process. Each builder produces a runtime with its own registry, override
// set, and captured stdout/stderr; shutdown is tied to the enclosing
// test's cleanup, so it happens on every exit path. Nothing is shared
// between runtimes except whatever read-only discovery source the test
// supplies.
package testkit

import (
	"context"
	"testing"
	"time"

	"github.com/vk/loom/internal/app"
	"github.com/vk/loom/internal/assemble"
	"github.com/vk/loom/internal/command"
	"github.com/vk/loom/internal/config"
	"github.com/vk/loom/internal/ctxlog"
	"github.com/vk/loom/internal/discovery"
	"github.com/vk/loom/internal/registry"
	"github.com/vk/loom/internal/runtime"
	"github.com/zclconf/go-cty/cty"
)

// Handle wraps a built runtime together with its captured output streams.
type Handle struct {
	Runtime *runtime.Runtime
	Stdout  *SafeBuffer
	Stderr  *SafeBuffer
}

// Builder is a fluent configuration for a to-be-created test runtime.
type Builder struct {
	t        *testing.T
	argv     []string
	mods     []*registry.Descriptor
	overlays []config.Source
	static   map[string]cty.Value
	src      *discovery.Source
	table    *registry.Table
	logLevel string
	timeout  time.Duration
}

// App begins building a runtime for the given argv. The runtime created
// from the builder is shut down automatically when t ends, whatever the
// test outcome.
func App(t *testing.T, argv ...string) *Builder {
	t.Helper()
	return &Builder{
		t:        t,
		argv:     argv,
		static:   make(map[string]cty.Value),
		logLevel: "debug",
	}
}

// Module adds an explicit module.
func (b *Builder) Module(d *registry.Descriptor) *Builder {
	b.mods = append(b.mods, d)
	return b
}

// Override appends a configuration overlay source. Later sources win
// key-by-key.
func (b *Builder) Override(src config.Source) *Builder {
	b.overlays = append(b.overlays, src)
	return b
}

// Set adds an ad-hoc binding for a single configuration key. Ad-hoc
// bindings are applied after every overlay, so they win.
func (b *Builder) Set(key string, value any) *Builder {
	val, err := config.GoValue(value)
	if err != nil {
		b.t.Fatalf("testkit: cannot convert value for %q: %v", key, err)
	}
	b.static[key] = val
	return b
}

// AutoLoad enables discovery against the given source and factory table.
func (b *Builder) AutoLoad(src discovery.Source, table *registry.Table) *Builder {
	b.src = &src
	b.table = table
	return b
}

// LogLevel overrides the captured logger's level (default: debug).
func (b *Builder) LogLevel(level string) *Builder {
	b.logLevel = level
	return b
}

// ShutdownTimeout overrides the runtime's shutdown budget.
func (b *Builder) ShutdownTimeout(d time.Duration) *Builder {
	b.timeout = d
	return b
}

// CreateRuntime performs registry -> resolver -> assembler and binds the
// resulting runtime's shutdown to the test's cleanup.
func (b *Builder) CreateRuntime() (*Handle, error) {
	b.t.Helper()

	handle := &Handle{Stdout: &SafeBuffer{}, Stderr: &SafeBuffer{}}
	logger := app.NewLogger(b.logLevel, "text", handle.Stderr)
	ctx := ctxlog.WithLogger(context.Background(), logger)

	reg := registry.New()
	for _, mod := range b.mods {
		if err := reg.Register(mod); err != nil {
			return handle, err
		}
	}
	if b.src != nil {
		table := b.table
		if table == nil {
			table = registry.DefaultTable()
		}
		if err := reg.AutoLoad(*b.src, table); err != nil {
			return handle, err
		}
	}

	sources := b.overlays
	if len(b.static) > 0 {
		sources = append(sources[:len(sources):len(sources)], config.Static("ad-hoc", b.static))
	}
	view, err := config.Resolve(ctx, sources...)
	if err != nil {
		return handle, err
	}

	rt, err := assemble.Assemble(ctx, reg, view, assemble.Options{
		Logger:          logger,
		Stdout:          handle.Stdout,
		Stderr:          handle.Stderr,
		ShutdownTimeout: b.timeout,
	})
	if err != nil {
		return handle, err
	}
	handle.Runtime = rt

	b.t.Cleanup(func() {
		sctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := rt.Shutdown(sctx); err != nil {
			b.t.Logf("testkit: shutdown of runtime %s reported: %v", rt.ID(), err)
		}
	})

	return handle, nil
}

// Run is CreateRuntime followed immediately by resolving and executing the
// selected (or default) command. Construction failures are normalized
// into the outcome, so tests assert on exit codes throughout.
func (b *Builder) Run() (command.Outcome, *Handle) {
	b.t.Helper()

	handle, err := b.CreateRuntime()
	if err != nil {
		return command.Failed(err), handle
	}

	rt := handle.Runtime
	logger := rt.Logger()
	ctx := ctxlog.WithLogger(context.Background(), logger)

	cmd, rest, err := rt.Commands().Resolve(b.argv)
	if err != nil {
		return command.Failed(err), handle
	}
	return command.Execute(ctx, cmd, rt, rest), handle
}
