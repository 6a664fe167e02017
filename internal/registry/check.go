package registry

import (
	"github.com/vk/loom/internal/discovery"
)

// CheckAutoLoadable re-runs discovery resolution for a single provider
// entry and verifies it is present in the index and resolves through the
// table. It returns an error instead of panicking so it can sit directly
// inside a test assertion.
func CheckAutoLoadable(src discovery.Source, table *Table, provider, impl string) error {
	records, err := src.RecordsFor(provider)
	if err != nil {
		return err
	}

	for _, rec := range records {
		if rec.Impl != impl {
			continue
		}
		_, err := table.resolve(src, rec)
		return err
	}

	return &discovery.Error{
		Provider: provider,
		Impl:     impl,
		Source:   src.Label,
		Reason:   "implementation not listed in provider index",
	}
}
