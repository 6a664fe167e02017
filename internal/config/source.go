package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/zclconf/go-cty/cty"
)

// Source is an ordered, named origin of configuration overrides. Sources
// are loaded in call order by Resolve; later sources win key-by-key.
type Source interface {
	// Name identifies the source in diagnostics (a file path, "static", ...).
	Name() string
	// Load produces the flattened key/value overrides this source carries.
	Load(ctx context.Context) (map[string]cty.Value, error)
}

// ParseError reports a malformed override source, identifying the source
// and, where the format allows, the offending location.
type ParseError struct {
	Source string
	Detail string
	Err    error
}

// Error implements the error interface for ParseError.
func (e *ParseError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("config: %s: %s", e.Source, e.Detail)
	}
	return fmt.Sprintf("config: %s: %v", e.Source, e.Err)
}

// Unwrap exposes the underlying parser error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// File returns a Source backed by an overlay file. The format is chosen by
// extension: .hcl is parsed with the HCL toolchain, .toml with the TOML
// decoder. Anything else fails at load time with a ParseError.
func File(path string) Source {
	return fileSource{path: path}
}

type fileSource struct {
	path string
}

func (s fileSource) Name() string { return s.path }

func (s fileSource) Load(ctx context.Context) (map[string]cty.Value, error) {
	switch filepath.Ext(s.path) {
	case ".hcl":
		return loadHCL(s.path)
	case ".toml":
		return loadTOML(s.path)
	}
	return nil, &ParseError{
		Source: s.path,
		Detail: fmt.Sprintf("unsupported overlay format %q (want .hcl or .toml)", filepath.Ext(s.path)),
	}
}

// Static returns an in-memory Source for ad-hoc programmatic bindings.
func Static(name string, values map[string]cty.Value) Source {
	return staticSource{name: name, values: values}
}

type staticSource struct {
	name   string
	values map[string]cty.Value
}

func (s staticSource) Name() string { return s.name }

func (s staticSource) Load(context.Context) (map[string]cty.Value, error) {
	out := make(map[string]cty.Value, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out, nil
}
