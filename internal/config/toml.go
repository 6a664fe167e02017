package config

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// loadTOML decodes a TOML overlay file and flattens its tables into the
// same dotted-key form the HCL loader produces, so precedence works
// identically across formats.
func loadTOML(path string) (map[string]cty.Value, error) {
	var raw map[string]any
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		var pe toml.ParseError
		if errors.As(err, &pe) {
			return nil, &ParseError{Source: path, Detail: pe.ErrorWithPosition(), Err: err}
		}
		return nil, &ParseError{Source: path, Err: err}
	}

	out := make(map[string]cty.Value)
	if err := flattenGoValue(path, raw, "", out); err != nil {
		return nil, err
	}
	return out, nil
}

// flattenGoValue converts decoded Go values into cty values keyed by dotted
// paths. Nested maps become key prefixes; leaves go through gocty type
// inference.
func flattenGoValue(source string, m map[string]any, prefix string, out map[string]cty.Value) error {
	for k, child := range m {
		key := joinKey(prefix, k)
		if nested, ok := child.(map[string]any); ok {
			if err := flattenGoValue(source, nested, key, out); err != nil {
				return err
			}
			continue
		}
		val, err := GoValue(child)
		if err != nil {
			return &ParseError{
				Source: source,
				Detail: fmt.Sprintf("key %q: %v", key, err),
				Err:    err,
			}
		}
		out[key] = val
	}
	return nil
}

// GoValue converts a native Go value into its cty equivalent via implied
// typing. It is the bridge modules and tests use to feed programmatic
// values into the override pipeline.
func GoValue(v any) (cty.Value, error) {
	ty, err := gocty.ImpliedType(v)
	if err != nil {
		return cty.NilVal, err
	}
	return gocty.ToCtyValue(v, ty)
}
