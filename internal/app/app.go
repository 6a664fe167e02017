package app

import (
	"context"
	"io"
	"log/slog"

	"github.com/vk/loom/internal/assemble"
	"github.com/vk/loom/internal/command"
	"github.com/vk/loom/internal/config"
	"github.com/vk/loom/internal/ctxlog"
	"github.com/vk/loom/internal/discovery"
	"github.com/vk/loom/internal/registry"
	"github.com/vk/loom/internal/runtime"
)

// App encapsulates one application instance: its configuration, isolated
// logger, module set, and — once built — its runtime.
type App struct {
	stdout io.Writer
	stderr io.Writer
	logger *slog.Logger
	cfg    *Config
	mods   []*registry.Descriptor
	table  *registry.Table

	rt *runtime.Runtime
}

// New is the constructor for the main application. The returned App has
// its own isolated logger writing to stderr. When no modules are given
// the compiled-in core set is used; passing modules replaces it entirely,
// which is what the test harness relies on for isolation.
func New(stdout, stderr io.Writer, cfg *Config, mods ...*registry.Descriptor) *App {
	if len(mods) == 0 {
		mods = CoreModules()
	}
	return &App{
		stdout: stdout,
		stderr: stderr,
		logger: NewLogger(cfg.LogLevel, cfg.LogFormat, stderr),
		cfg:    cfg,
		mods:   mods,
		table:  registry.DefaultTable(),
	}
}

// WithTable overrides the factory table used for autoloading. Tests inject
// their own table so parallel runs stay isolated.
func (a *App) WithTable(table *registry.Table) *App {
	a.table = table
	return a
}

// Logger returns the application's isolated logger.
func (a *App) Logger() *slog.Logger { return a.logger }

// Runtime returns the built runtime, or nil before BuildRuntime succeeds.
func (a *App) Runtime() *runtime.Runtime { return a.rt }

// BuildRuntime performs registry -> resolver -> assembler and keeps the
// resulting runtime on the App. Discovery, parse, and assembly failures
// are fatal: no partial runtime is ever stored or returned.
func (a *App) BuildRuntime(ctx context.Context) (*runtime.Runtime, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	reg := registry.New()
	for _, mod := range a.mods {
		if err := reg.Register(mod); err != nil {
			return nil, err
		}
	}
	if a.cfg.AutoLoad && a.cfg.Providers != "" {
		if err := reg.AutoLoad(discovery.Dir(a.cfg.Providers), a.table); err != nil {
			return nil, err
		}
	}
	a.logger.Debug("Module set registered.", "modules", reg.Len())

	sources := make([]config.Source, 0, len(a.cfg.Overlays))
	for _, path := range a.cfg.Overlays {
		sources = append(sources, config.File(path))
	}
	view, err := config.Resolve(ctx, sources...)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("Override sources resolved.", "keys", view.Len())

	rt, err := assemble.Assemble(ctx, reg, view, assemble.Options{
		Logger:          a.logger,
		Stdout:          a.stdout,
		Stderr:          a.stderr,
		ShutdownTimeout: a.cfg.ShutdownTimeout,
	})
	if err != nil {
		return nil, err
	}

	a.rt = rt
	return rt, nil
}

// Run builds the runtime (if not already built), resolves argv to a
// command, and executes it. Construction failures become a nonzero
// Outcome carrying the diagnostic, so callers assert on exit codes
// without exception-style handling.
func (a *App) Run(ctx context.Context, argv []string) command.Outcome {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	rt := a.rt
	if rt == nil {
		var err error
		rt, err = a.BuildRuntime(ctx)
		if err != nil {
			a.logger.Error("Runtime construction failed.", "error", err)
			return command.Failed(err)
		}
	}

	cmd, rest, err := rt.Commands().Resolve(argv)
	if err != nil {
		a.logger.Error("Command resolution failed.", "error", err)
		return command.Failed(err)
	}

	return command.Execute(ctx, cmd, rt, rest)
}

// Shutdown stops the built runtime, if any. A shutdown failure is
// reported here but never changes an exit code already established by the
// command.
func (a *App) Shutdown(ctx context.Context) error {
	if a.rt == nil {
		return nil
	}
	err := a.rt.Shutdown(ctx)
	if err != nil {
		a.logger.Error("Shutdown reported failures.", "error", err)
	}
	return err
}
