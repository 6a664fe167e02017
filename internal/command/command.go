// Package command defines the invokable units a runtime exposes, resolves
// argv tokens to one of them, and executes it with a captured outcome.
package command

import (
	"context"
	"flag"
	"io"

	"github.com/vk/loom/internal/config"
	"github.com/vk/loom/internal/lifecycle"
)

// Runtime is the surface a command sees of its assembled runtime. The
// concrete container in internal/runtime satisfies it.
type Runtime interface {
	// Resolve returns the service bound under name, building it on first
	// use. An unbound name or a failing factory returns an error.
	Resolve(name string) (any, error)
	// Config is the merged configuration view.
	Config() *config.View
	// Lifecycle is where a command registers any background resource it
	// starts, so shutdown can stop it.
	Lifecycle() *lifecycle.Manager
	// Stdout and Stderr are the runtime's output sinks. Tests substitute
	// capture buffers here; commands must not write to os.Stdout directly.
	Stdout() io.Writer
	Stderr() io.Writer
}

// Command is a named, invokable unit of application behavior. Commands are
// stateless across invocations. A command may start a background service:
// it registers the service with rt.Lifecycle() and returns once the
// service is launched.
type Command interface {
	// Name is the CLI selector token, without dashes.
	Name() string
	// Synopsis is a one-line description for help output.
	Synopsis() string
	// Flags declares the flags this command accepts.
	Flags(fs *flag.FlagSet)
	// Run executes the command body. Remaining non-flag arguments are
	// passed through.
	Run(ctx context.Context, rt Runtime, args []string) error
}
