package command

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/loom/internal/config"
	"github.com/vk/loom/internal/lifecycle"
)

// fakeRuntime is a minimal Runtime for executor tests.
type fakeRuntime struct {
	stdout bytes.Buffer
	stderr bytes.Buffer
	lm     *lifecycle.Manager
}

func newFakeRuntime() *fakeRuntime {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	lm := lifecycle.New(logger, 0)
	_ = lm.StartRunning()
	return &fakeRuntime{lm: lm}
}

func (f *fakeRuntime) Resolve(name string) (any, error) {
	return nil, fmt.Errorf("no service %q", name)
}
func (f *fakeRuntime) Config() *config.View          { return config.NewView(nil) }
func (f *fakeRuntime) Lifecycle() *lifecycle.Manager { return f.lm }
func (f *fakeRuntime) Stdout() io.Writer             { return &f.stdout }
func (f *fakeRuntime) Stderr() io.Writer             { return &f.stderr }

// stubCommand is a configurable test command.
type stubCommand struct {
	name string
	run  func(ctx context.Context, rt Runtime, args []string) error
	loud bool
}

func (c *stubCommand) Name() string     { return c.name }
func (c *stubCommand) Synopsis() string { return "A stub." }
func (c *stubCommand) Flags(fs *flag.FlagSet) {
	if c.loud {
		fs.Bool("loud", false, "Shout.")
	}
}
func (c *stubCommand) Run(ctx context.Context, rt Runtime, args []string) error {
	if c.run == nil {
		return nil
	}
	return c.run(ctx, rt, args)
}

func newSet(t *testing.T, names ...string) *Set {
	t.Helper()
	s := NewSet()
	for _, name := range names {
		require.NoError(t, s.Add(&stubCommand{name: name}))
	}
	s.SetFallback(NewHelp(s))
	return s
}

func TestResolve_DoubleDashToken(t *testing.T) {
	s := newSet(t, "greet", "serve")

	cmd, rest, err := s.Resolve([]string{"--greet", "--loud"})
	require.NoError(t, err)
	require.Equal(t, "greet", cmd.Name())
	require.Equal(t, []string{"--loud"}, rest)
}

func TestResolve_BareToken(t *testing.T) {
	s := newSet(t, "greet")

	cmd, rest, err := s.Resolve([]string{"greet", "world"})
	require.NoError(t, err)
	require.Equal(t, "greet", cmd.Name())
	require.Equal(t, []string{"world"}, rest)
}

func TestResolve_UnknownSelectorIsAnError(t *testing.T) {
	s := newSet(t, "greet")

	_, _, err := s.Resolve([]string{"--nonexistent"})
	var ue *UnknownError
	require.ErrorAs(t, err, &ue)
	require.Equal(t, "--nonexistent", ue.Token)
}

func TestResolve_NoSelectorFallsBackToHelp(t *testing.T) {
	s := newSet(t, "greet")

	cmd, _, err := s.Resolve(nil)
	require.NoError(t, err)
	require.Equal(t, "help", cmd.Name())

	// Value-carrying and single-dash tokens are flags, not selectors.
	cmd, rest, err := s.Resolve([]string{"-v", "--k=v"})
	require.NoError(t, err)
	require.Equal(t, "help", cmd.Name())
	require.Equal(t, []string{"-v", "--k=v"}, rest)
}

func TestResolve_StopsAtDoubleDash(t *testing.T) {
	s := newSet(t, "greet")

	cmd, _, err := s.Resolve([]string{"--", "greet"})
	require.NoError(t, err)
	require.Equal(t, "help", cmd.Name())
}

func TestSet_AddRejectsDuplicates(t *testing.T) {
	s := NewSet()
	require.NoError(t, s.Add(&stubCommand{name: "x"}))
	require.Error(t, s.Add(&stubCommand{name: "x"}))
	require.Error(t, s.Add(&stubCommand{name: ""}))
}

func TestExecute_Success(t *testing.T) {
	rt := newFakeRuntime()
	cmd := &stubCommand{name: "greet", run: func(_ context.Context, rt Runtime, _ []string) error {
		fmt.Fprintln(rt.Stdout(), "hello")
		return nil
	}}

	outcome := Execute(context.Background(), cmd, rt, nil)
	require.True(t, outcome.Success())
	require.Equal(t, 0, outcome.ExitCode)
	require.Contains(t, rt.stdout.String(), "hello")
}

func TestExecute_ErrorBecomesOutcome(t *testing.T) {
	rt := newFakeRuntime()
	boom := errors.New("boom")
	cmd := &stubCommand{name: "bad", run: func(context.Context, Runtime, []string) error {
		return boom
	}}

	outcome := Execute(context.Background(), cmd, rt, nil)
	require.Equal(t, 1, outcome.ExitCode)
	require.Contains(t, outcome.Message, "boom")
	require.ErrorIs(t, outcome.Cause, boom)
}

func TestExecute_PanicBecomesOutcome(t *testing.T) {
	rt := newFakeRuntime()
	cmd := &stubCommand{name: "explode", run: func(context.Context, Runtime, []string) error {
		panic("kaboom")
	}}

	outcome := Execute(context.Background(), cmd, rt, nil)
	require.Equal(t, 1, outcome.ExitCode)
	require.Contains(t, outcome.Message, "kaboom")
}

func TestExecute_FlagParseFailure(t *testing.T) {
	rt := newFakeRuntime()
	cmd := &stubCommand{name: "strict"}

	outcome := Execute(context.Background(), cmd, rt, []string{"--no-such-flag"})
	require.Equal(t, 2, outcome.ExitCode)
}

func TestExecute_ParsesDeclaredFlags(t *testing.T) {
	rt := newFakeRuntime()
	var sawArgs []string
	cmd := &stubCommand{name: "loudly", loud: true, run: func(_ context.Context, _ Runtime, args []string) error {
		sawArgs = args
		return nil
	}}

	outcome := Execute(context.Background(), cmd, rt, []string{"--loud", "extra"})
	require.True(t, outcome.Success())
	require.Equal(t, []string{"extra"}, sawArgs)
}

func TestHelp_ListsCommands(t *testing.T) {
	s := newSet(t, "serve", "greet")
	rt := newFakeRuntime()

	outcome := Execute(context.Background(), NewHelp(s), rt, nil)
	require.True(t, outcome.Success())

	out := rt.stdout.String()
	require.Contains(t, out, "--greet")
	require.Contains(t, out, "--serve")
}

func TestOutcomeHelpers(t *testing.T) {
	require.True(t, OK().Success())
	failed := Failed(errors.New("x"))
	require.False(t, failed.Success())
	require.Equal(t, 1, failed.ExitCode)
	require.Equal(t, 3, FailedCode(3, errors.New("x")).ExitCode)
}
