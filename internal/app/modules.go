package app

import (
	"github.com/vk/loom/internal/registry"
	"github.com/vk/loom/modules/envprobe"
	"github.com/vk/loom/modules/heartbeat"
)

// CoreModules returns the definitive list of modules compiled into the
// loom binary. A fresh slice is returned so callers can append without
// affecting each other.
func CoreModules() []*registry.Descriptor {
	return []*registry.Descriptor{
		heartbeat.Module(),
		envprobe.Module(),
	}
}
