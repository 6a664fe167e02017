package config

import (
	"context"

	"github.com/vk/loom/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

// Resolve loads the given sources in call order and merges them into one
// View. Merging is at the granularity of individual keys: a later source
// shadows an earlier one only for the keys it sets, and keys absent from
// later sources keep their earlier values. Unknown keys pass through
// unvalidated; whether a key means anything is a module concern.
func Resolve(ctx context.Context, sources ...Source) (*View, error) {
	logger := ctxlog.FromContext(ctx)
	merged := make(map[string]cty.Value)

	for _, src := range sources {
		vals, err := src.Load(ctx)
		if err != nil {
			return nil, err
		}
		for k, v := range vals {
			if _, shadowed := merged[k]; shadowed {
				logger.Debug("Override key shadowed by later source.", "key", k, "source", src.Name())
			}
			merged[k] = v
		}
		logger.Debug("Override source resolved.", "source", src.Name(), "keys", len(vals))
	}

	return NewView(merged), nil
}
