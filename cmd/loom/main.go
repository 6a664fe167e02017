package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/vk/loom/internal/app"
	"github.com/vk/loom/internal/cli"
)

// main is the entrypoint for the loom binary.
func main() {
	// Use a minimal logger until the per-runtime one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	os.Exit(run(os.Stdout, os.Stderr, os.Args[1:]))
}

// run encapsulates the main application logic for easier testing. The
// returned code becomes the process exit code.
func run(stdout, stderr io.Writer, args []string) int {
	cfg, argv, shouldExit, err := cli.Parse(args, stdout)
	if err != nil {
		if exitErr, ok := err.(*cli.ExitError); ok {
			fmt.Fprintln(stderr, exitErr.Message)
			return exitErr.Code
		}
		fmt.Fprintln(stderr, err)
		return 1
	}
	if shouldExit {
		return 0
	}

	ctx := context.Background()
	loomApp := app.New(stdout, stderr, cfg)

	outcome := loomApp.Run(ctx, argv)
	if outcome.Message != "" && !outcome.Success() {
		fmt.Fprintln(stderr, outcome.Message)
	}

	// A command that launched a background service returns immediately;
	// keep the process alive until a signal asks for shutdown.
	if rt := loomApp.Runtime(); outcome.Success() && rt != nil && rt.Lifecycle().Active() > 0 {
		waitForSignal(ctx, loomApp)
	}

	// Shutdown failures are reported but never change the exit code the
	// command already established.
	if err := loomApp.Shutdown(ctx); err != nil {
		fmt.Fprintln(stderr, err)
	}
	return outcome.ExitCode
}

func waitForSignal(ctx context.Context, loomApp *app.App) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		loomApp.Logger().Info("Signal received, shutting down.", "signal", sig.String())
	case <-ctx.Done():
	}
}
