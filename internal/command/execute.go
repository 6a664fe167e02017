package command

import (
	"context"
	"flag"
	"fmt"

	"github.com/vk/loom/internal/ctxlog"
)

// Execute runs cmd against rt and normalizes every failure mode into an
// Outcome. This is the single place command failures are converted: a
// returned error, a flag parse error, and a panic all become a nonzero
// Outcome with the captured cause. Execute itself never propagates a
// fault.
//
// Execution is synchronous from the caller's perspective even when the
// command starts a background service: the call returns once the command
// body does, and the service it registered with the lifecycle manager
// keeps running independently.
func Execute(ctx context.Context, cmd Command, rt Runtime, args []string) (outcome Outcome) {
	logger := ctxlog.FromContext(ctx)

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("command %q panicked: %v", cmd.Name(), r)
			logger.Error("Command panicked.", "command", cmd.Name(), "panic", r)
			outcome = Failed(err)
		}
	}()

	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(rt.Stderr())
	cmd.Flags(fs)
	if err := fs.Parse(args); err != nil {
		return FailedCode(2, fmt.Errorf("command %q: %w", cmd.Name(), err))
	}

	logger.Debug("Executing command.", "command", cmd.Name(), "args", fs.Args())
	if err := cmd.Run(ctx, rt, fs.Args()); err != nil {
		logger.Debug("Command returned an error.", "command", cmd.Name(), "error", err)
		return Failed(fmt.Errorf("command %q: %w", cmd.Name(), err))
	}
	return OK()
}
