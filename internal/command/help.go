package command

import (
	"context"
	"flag"
	"fmt"
	"text/tabwriter"
)

// helpCommand lists the commands registered with a set. It doubles as the
// fallback selected when argv names no command.
type helpCommand struct {
	set *Set
}

// NewHelp returns the built-in help command for set.
func NewHelp(set *Set) Command {
	return &helpCommand{set: set}
}

func (h *helpCommand) Name() string     { return "help" }
func (h *helpCommand) Synopsis() string { return "List available commands." }

func (h *helpCommand) Flags(*flag.FlagSet) {}

func (h *helpCommand) Run(_ context.Context, rt Runtime, _ []string) error {
	out := rt.Stdout()
	fmt.Fprintln(out, "Available commands:")

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, name := range h.set.Names() {
		cmd, _ := h.set.Get(name)
		fmt.Fprintf(tw, "  --%s\t%s\n", name, cmd.Synopsis())
	}
	return tw.Flush()
}
