package command

import (
	"fmt"
	"sort"
	"strings"
)

// Set holds the commands contributed during assembly and resolves argv
// tokens to one of them. It is populated single-threaded during assembly
// and read-only afterwards.
type Set struct {
	byName   map[string]Command
	fallback Command
}

// NewSet returns an empty command set.
func NewSet() *Set {
	return &Set{byName: make(map[string]Command)}
}

// Add registers a command under its name. Two modules contributing the
// same command name is a wiring bug, reported as an error so assembly can
// fail all-or-nothing.
func (s *Set) Add(cmd Command) error {
	name := cmd.Name()
	if name == "" {
		return fmt.Errorf("command with empty name")
	}
	if _, exists := s.byName[name]; exists {
		return fmt.Errorf("command %q already registered", name)
	}
	s.byName[name] = cmd
	return nil
}

// SetFallback sets the command selected when argv names no command at all.
func (s *Set) SetFallback(cmd Command) {
	s.fallback = cmd
}

// Get returns the command registered under name.
func (s *Set) Get(name string) (Command, bool) {
	cmd, ok := s.byName[name]
	return cmd, ok
}

// Names returns all registered command names, sorted.
func (s *Set) Names() []string {
	names := make([]string, 0, len(s.byName))
	for name := range s.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// UnknownError reports an argv token that selects no registered command.
type UnknownError struct {
	Token string
}

// Error implements the error interface for UnknownError.
func (e *UnknownError) Error() string {
	return fmt.Sprintf("unknown command %q", e.Token)
}

// Resolve maps argv to a command. The first token that looks like a
// command selector — a bare word, or a --word with no '=' — picks the
// command; the rest of argv becomes that command's flags. A selector that
// matches nothing is an *UnknownError, never a silent default. With no
// selecting token at all the fallback command is chosen.
func (s *Set) Resolve(argv []string) (Command, []string, error) {
	for i, tok := range argv {
		if tok == "--" {
			break
		}
		name, selector := selectorName(tok)
		if !selector {
			continue
		}
		if cmd, ok := s.byName[name]; ok {
			rest := make([]string, 0, len(argv)-1)
			rest = append(rest, argv[:i]...)
			rest = append(rest, argv[i+1:]...)
			return cmd, rest, nil
		}
		return nil, nil, &UnknownError{Token: tok}
	}
	if s.fallback == nil {
		return nil, nil, &UnknownError{Token: ""}
	}
	return s.fallback, argv, nil
}

// selectorName extracts the candidate command name from a token. Tokens
// carrying values (--k=v) and single-dash flags are flags, not selectors.
func selectorName(tok string) (string, bool) {
	if strings.HasPrefix(tok, "--") {
		name := tok[2:]
		if name == "" || strings.Contains(name, "=") {
			return "", false
		}
		return name, true
	}
	if strings.HasPrefix(tok, "-") {
		return "", false
	}
	return tok, tok != ""
}
