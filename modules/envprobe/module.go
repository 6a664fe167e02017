// Package envprobe is the built-in module contributing the "env" command,
// which prints the runtime's fully resolved configuration view. It is the
// quickest way to see what the overlay merge actually produced.
package envprobe

import (
	"context"
	"flag"
	"fmt"

	"github.com/vk/loom/internal/command"
	"github.com/vk/loom/internal/registry"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// Module returns the envprobe module descriptor.
func Module() *registry.Descriptor {
	return &registry.Descriptor{
		Name: "envprobe",
		Contribute: func(b registry.Binder) error {
			b.Command(&envCommand{})
			return nil
		},
	}
}

type envCommand struct{}

func (c *envCommand) Name() string     { return "env" }
func (c *envCommand) Synopsis() string { return "Print the resolved configuration." }

func (c *envCommand) Flags(*flag.FlagSet) {}

func (c *envCommand) Run(_ context.Context, rt command.Runtime, _ []string) error {
	view := rt.Config()
	for _, key := range view.Keys() {
		val, _ := view.Value(key)
		fmt.Fprintf(rt.Stdout(), "%s=%s\n", key, renderValue(val))
	}
	return nil
}

// renderValue formats a cty value for display, falling back to the
// go-cty debug form for aggregates.
func renderValue(val cty.Value) string {
	if conv, err := convert.Convert(val, cty.String); err == nil && !conv.IsNull() {
		return conv.AsString()
	}
	return val.GoString()
}
