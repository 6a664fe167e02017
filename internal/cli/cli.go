// Package cli separates the global flags of the loom binary from the argv
// that selects and configures a command. Global flags cannot go through a
// stock flag.FlagSet: command selectors look like flags themselves
// (--serve), so parsing is a manual scan that consumes only the flags it
// recognizes and passes everything else through untouched.
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/vk/loom/internal/app"
)

// EnvProviders names the environment variable consulted for the discovery
// index directory when --providers is not given.
const EnvProviders = "LOOM_PROVIDERS"

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usage(output io.Writer) {
	fmt.Fprint(output, `Loom - a module composition and runtime lifecycle engine.

Usage:
  loom [global options] [--COMMAND] [command flags]

Global options:
  --config PATH             Configuration overlay file (.hcl or .toml).
                            Repeatable; later files win key-by-key.
  --providers PATH          Directory holding the module discovery index.
                            Defaults to $LOOM_PROVIDERS.
  --no-autoload             Skip discovery; use only compiled-in modules.
  --log-level LEVEL         debug, info, warn, or error. Default: info.
  --log-format FORMAT       text or json. Default: text.
  --shutdown-timeout DUR    Overall shutdown budget, e.g. 15s. Default: 10s.
  --help, -h                Show this help.

Run loom without a command to list the available commands.
`)
}

// Parse processes command-line arguments. It returns a populated Config
// and the remaining argv for command resolution, a boolean indicating the
// program should exit cleanly, or an ExitError for malformed global flags.
func Parse(args []string, output io.Writer) (*app.Config, []string, bool, error) {
	cfg := app.Config{
		LogLevel:  "info",
		LogFormat: "text",
		AutoLoad:  true,
	}
	var rest []string

	// takeValue reads the flag's value either from the same token
	// (--flag=v) or from the next one.
	i := 0
	takeValue := func(tok, name string) (string, error) {
		if eq := strings.IndexByte(tok, '='); eq >= 0 {
			return tok[eq+1:], nil
		}
		if i+1 >= len(args) {
			return "", &ExitError{Code: 2, Message: fmt.Sprintf("flag --%s requires a value", name)}
		}
		i++
		return args[i], nil
	}

	for ; i < len(args); i++ {
		tok := args[i]
		name := tok
		if eq := strings.IndexByte(name, '='); eq >= 0 {
			name = name[:eq]
		}
		switch name {
		case "--config":
			v, err := takeValue(tok, "config")
			if err != nil {
				return nil, nil, false, err
			}
			cfg.Overlays = append(cfg.Overlays, v)
		case "--providers":
			v, err := takeValue(tok, "providers")
			if err != nil {
				return nil, nil, false, err
			}
			cfg.Providers = v
		case "--no-autoload":
			cfg.AutoLoad = false
		case "--log-level":
			v, err := takeValue(tok, "log-level")
			if err != nil {
				return nil, nil, false, err
			}
			cfg.LogLevel = strings.ToLower(v)
		case "--log-format":
			v, err := takeValue(tok, "log-format")
			if err != nil {
				return nil, nil, false, err
			}
			cfg.LogFormat = strings.ToLower(v)
		case "--shutdown-timeout":
			v, err := takeValue(tok, "shutdown-timeout")
			if err != nil {
				return nil, nil, false, err
			}
			d, err := time.ParseDuration(v)
			if err != nil {
				return nil, nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("invalid --shutdown-timeout: %v", err)}
			}
			cfg.ShutdownTimeout = d
		case "--help", "-h":
			usage(output)
			return nil, nil, true, nil
		default:
			rest = append(rest, tok)
		}
	}

	if cfg.Providers == "" {
		cfg.Providers = os.Getenv(EnvProviders)
	}

	validated, err := app.NewConfig(cfg)
	if err != nil {
		return nil, nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	return validated, rest, false, nil
}
