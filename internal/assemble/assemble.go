// Package assemble turns a consumed module set plus a resolved override
// view into an immutable runtime. Assembly is all-or-nothing: the first
// failing module contribution aborts the build and no partially assembled
// container is ever exposed.
package assemble

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/vk/loom/internal/command"
	"github.com/vk/loom/internal/config"
	"github.com/vk/loom/internal/ctxlog"
	"github.com/vk/loom/internal/lifecycle"
	"github.com/vk/loom/internal/registry"
	"github.com/vk/loom/internal/runtime"
	"github.com/zclconf/go-cty/cty"
)

// Error wraps the first module contribution failure.
type Error struct {
	Module string
	Err    error
}

// Error implements the error interface for Error.
func (e *Error) Error() string {
	return fmt.Sprintf("assembly: module %q: %v", e.Module, e.Err)
}

// Unwrap exposes the underlying contribution failure.
func (e *Error) Unwrap() error {
	return e.Err
}

// Options configures one assembly.
type Options struct {
	Logger          *slog.Logger
	Stdout          io.Writer
	Stderr          io.Writer
	ShutdownTimeout time.Duration
}

// assembler collects the contributions of all modules. It implements
// registry.Binder. The first contribution error is latched in err; later
// calls on a failed assembler are no-ops so one broken module cannot
// half-apply.
type assembler struct {
	bindings map[string]registry.FactoryFunc
	defaults map[string]cty.Value
	commands *command.Set
	err      error
}

func (a *assembler) Bind(name string, factory registry.FactoryFunc) {
	if a.err != nil {
		return
	}
	if _, exists := a.bindings[name]; exists {
		a.err = fmt.Errorf("service %q already bound", name)
		return
	}
	a.bindings[name] = factory
}

func (a *assembler) BindInstance(name string, value any) {
	a.Bind(name, func(registry.Container) (any, error) { return value, nil })
}

func (a *assembler) Default(key string, value cty.Value) {
	if a.err != nil {
		return
	}
	a.defaults[key] = value
}

func (a *assembler) Command(cmd command.Command) {
	if a.err != nil {
		return
	}
	if err := a.commands.Add(cmd); err != nil {
		a.err = err
	}
}

// Assemble consumes the registry, invokes every module's contribution
// function exactly once in dependency order, and returns the finished
// runtime in the Running state.
func Assemble(ctx context.Context, reg *registry.Registry, view *config.View, opts Options) (*runtime.Runtime, error) {
	logger := opts.Logger
	if logger == nil {
		logger = ctxlog.FromContext(ctx)
	}

	mods, err := reg.Consume()
	if err != nil {
		return nil, err
	}

	ordered, err := Order(mods)
	if err != nil {
		return nil, err
	}

	asm := &assembler{
		bindings: make(map[string]registry.FactoryFunc),
		defaults: make(map[string]cty.Value),
		commands: command.NewSet(),
	}

	for _, mod := range ordered {
		logger.Debug("Invoking module contribution.", "module", mod.Name)
		if err := mod.Contribute(asm); err != nil {
			return nil, &Error{Module: mod.Name, Err: err}
		}
		if asm.err != nil {
			return nil, &Error{Module: mod.Name, Err: asm.err}
		}
	}
	logger.Debug("All module contributions applied.", "modules", len(ordered), "services", len(asm.bindings))

	// The help command is both a regular selector (--help) and the fallback
	// when argv names no command. A module contributing its own "help"
	// takes over both roles.
	if _, exists := asm.commands.Get("help"); !exists {
		if err := asm.commands.Add(command.NewHelp(asm.commands)); err != nil {
			return nil, err
		}
	}
	helpCmd, _ := asm.commands.Get("help")
	asm.commands.SetFallback(helpCmd)

	lm := lifecycle.New(logger, opts.ShutdownTimeout)
	rt := runtime.New(runtime.Params{
		Bindings:  asm.bindings,
		View:      view.MergeUnder(asm.defaults),
		Commands:  asm.commands,
		Lifecycle: lm,
		Logger:    logger,
		Stdout:    opts.Stdout,
		Stderr:    opts.Stderr,
	})

	if err := lm.StartRunning(); err != nil {
		return nil, err
	}
	logger.Debug("Runtime assembled.", "runtime_id", rt.ID())
	return rt, nil
}
