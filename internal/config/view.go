package config

import (
	"sort"
	"time"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// View is an immutable merged configuration. Typed getters convert values
// on read, so a TOML integer and an HCL number answer Int identically.
type View struct {
	values map[string]cty.Value
}

// NewView wraps the given key/value map. The map is copied; the caller may
// keep mutating its own copy.
func NewView(values map[string]cty.Value) *View {
	copied := make(map[string]cty.Value, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return &View{values: copied}
}

// MergeUnder returns a new View with this view's values layered on top of
// the given defaults: every key present here wins, keys only in defaults
// show through.
func (v *View) MergeUnder(defaults map[string]cty.Value) *View {
	merged := make(map[string]cty.Value, len(defaults)+len(v.values))
	for k, val := range defaults {
		merged[k] = val
	}
	for k, val := range v.values {
		merged[k] = val
	}
	return &View{values: merged}
}

// Value returns the raw cty value for key.
func (v *View) Value(key string) (cty.Value, bool) {
	val, ok := v.values[key]
	return val, ok
}

// Has reports whether key is set.
func (v *View) Has(key string) bool {
	_, ok := v.values[key]
	return ok
}

// Keys returns all set keys in sorted order.
func (v *View) Keys() []string {
	keys := make([]string, 0, len(v.values))
	for k := range v.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of set keys.
func (v *View) Len() int {
	return len(v.values)
}

// String returns the string value of key, or fallback when the key is
// unset or not convertible.
func (v *View) String(key, fallback string) string {
	val, ok := v.values[key]
	if !ok {
		return fallback
	}
	conv, err := convert.Convert(val, cty.String)
	if err != nil || conv.IsNull() {
		return fallback
	}
	return conv.AsString()
}

// Int returns the integer value of key, or fallback.
func (v *View) Int(key string, fallback int) int {
	val, ok := v.values[key]
	if !ok {
		return fallback
	}
	var out int
	if err := gocty.FromCtyValue(val, &out); err != nil {
		return fallback
	}
	return out
}

// Bool returns the boolean value of key, or fallback.
func (v *View) Bool(key string, fallback bool) bool {
	val, ok := v.values[key]
	if !ok {
		return fallback
	}
	conv, err := convert.Convert(val, cty.Bool)
	if err != nil || conv.IsNull() {
		return fallback
	}
	return conv.True()
}

// Duration parses the value of key with time.ParseDuration, or returns
// fallback.
func (v *View) Duration(key string, fallback time.Duration) time.Duration {
	s := v.String(key, "")
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
