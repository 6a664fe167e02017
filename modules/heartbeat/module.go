// Package heartbeat is the built-in module contributing the "serve"
// command: a background HTTP server exposing liveness and Prometheus
// metrics endpoints. It exists both as a useful default and as the
// reference for how a command starts a long-running service: the server is
// registered with the lifecycle manager as a first-class resource with a
// stop handle, never as a fire-and-forget goroutine.
package heartbeat

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/vk/loom/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// ServiceMetrics is the capability name of the module's metrics registry.
const ServiceMetrics = "heartbeat.metrics"

// Module returns the heartbeat module descriptor.
func Module() *registry.Descriptor {
	return &registry.Descriptor{
		Name: "heartbeat",
		Contribute: func(b registry.Binder) error {
			b.Default("heartbeat.addr", cty.StringVal("127.0.0.1:9090"))
			b.Default("heartbeat.path", cty.StringVal("/health"))
			b.Bind(ServiceMetrics, newMetrics)
			b.Command(&serveCommand{})
			return nil
		},
	}
}

// Metrics bundles the module's Prometheus registry with its own
// collectors, so each runtime scrapes only its own counters.
type Metrics struct {
	Registry *prometheus.Registry
	Requests *prometheus.CounterVec
}

func newMetrics(registry.Container) (any, error) {
	reg := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "heartbeat_requests_total",
		Help: "HTTP requests served by the heartbeat server.",
	}, []string{"path"})

	reg.MustRegister(requests)
	reg.MustRegister(collectors.NewGoCollector())

	return &Metrics{Registry: reg, Requests: requests}, nil
}
