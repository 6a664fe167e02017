package heartbeat

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vk/loom/internal/command"
	"github.com/vk/loom/internal/ctxlog"
	"golang.org/x/sync/errgroup"
)

// serveCommand launches the heartbeat HTTP server. The command returns as
// soon as the listener is bound and the server is registered with the
// lifecycle manager; the server itself runs until shutdown.
type serveCommand struct {
	addr string
}

func (c *serveCommand) Name() string     { return "serve" }
func (c *serveCommand) Synopsis() string { return "Start the heartbeat HTTP server." }

func (c *serveCommand) Flags(fs *flag.FlagSet) {
	fs.StringVar(&c.addr, "addr", "", "Listen address; overrides heartbeat.addr.")
}

func (c *serveCommand) Run(ctx context.Context, rt command.Runtime, _ []string) error {
	logger := ctxlog.FromContext(ctx)

	addr := c.addr
	if addr == "" {
		addr = rt.Config().String("heartbeat.addr", "127.0.0.1:9090")
	}
	path := rt.Config().String("heartbeat.path", "/health")

	svc, err := rt.Resolve(ServiceMetrics)
	if err != nil {
		return err
	}
	metrics := svc.(*Metrics)

	mux := http.NewServeMux()
	mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		metrics.Requests.WithLabelValues(path).Inc()
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "OK")
	})
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// Bind before returning so a bad address fails the command instead of
	// surfacing later from a goroutine.
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("heartbeat: listen on %q: %w", addr, err)
	}

	srv := &http.Server{Handler: mux}
	var group errgroup.Group
	group.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	stop := func(sctx context.Context) error {
		if err := srv.Shutdown(sctx); err != nil {
			return err
		}
		return group.Wait()
	}
	if err := rt.Lifecycle().Register("heartbeat.server", stop); err != nil {
		// The runtime is already stopping; do not leak the listener.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return err
	}

	logger.Info("Heartbeat server started.", "address", ln.Addr().String(), "path", path)
	fmt.Fprintf(rt.Stdout(), "heartbeat listening on %s\n", ln.Addr().String())
	return nil
}
