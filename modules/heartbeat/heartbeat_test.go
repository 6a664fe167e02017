package heartbeat_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vk/loom/internal/testkit"
	"github.com/vk/loom/modules/heartbeat"
)

// boundAddr extracts the listen address the serve command printed.
func boundAddr(t *testing.T, stdout fmt.Stringer) string {
	t.Helper()
	out := stdout.String()
	const marker = "heartbeat listening on "
	i := strings.Index(out, marker)
	require.GreaterOrEqual(t, i, 0, "serve did not announce its address, stdout: %q", out)
	line := out[i+len(marker):]
	if j := strings.IndexByte(line, '\n'); j >= 0 {
		line = line[:j]
	}
	return line
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestServe_HealthAndMetrics(t *testing.T) {
	outcome, handle := testkit.App(t, "--serve").
		Module(heartbeat.Module()).
		Set("heartbeat.addr", "127.0.0.1:0").
		Run()

	require.True(t, outcome.Success(), "outcome: %+v", outcome)
	addr := boundAddr(t, handle.Stdout)

	status, body := get(t, "http://"+addr+"/health")
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "OK\n", body)

	status, body = get(t, "http://"+addr+"/metrics")
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, body, "heartbeat_requests_total")
}

func TestServe_AddrFlagOverridesConfig(t *testing.T) {
	outcome, handle := testkit.App(t, "--serve", "-addr", "127.0.0.1:0").
		Module(heartbeat.Module()).
		Set("heartbeat.addr", "this-would-fail:notaport").
		Run()

	require.True(t, outcome.Success(), "outcome: %+v", outcome)
	addr := boundAddr(t, handle.Stdout)
	status, _ := get(t, "http://"+addr+"/health")
	require.Equal(t, http.StatusOK, status)
}

func TestServe_BadAddressFailsCommand(t *testing.T) {
	outcome, _ := testkit.App(t, "--serve").
		Module(heartbeat.Module()).
		Set("heartbeat.addr", "256.0.0.1:notaport").
		Run()

	require.False(t, outcome.Success())
	require.Contains(t, outcome.Message, "listen")
}

func TestServe_RegistersWithLifecycle(t *testing.T) {
	outcome, handle := testkit.App(t, "--serve").
		Module(heartbeat.Module()).
		Set("heartbeat.addr", "127.0.0.1:0").
		Run()

	require.True(t, outcome.Success())
	require.Equal(t, 1, handle.Runtime.Lifecycle().Active())
}

func TestServe_ShutdownStopsServer(t *testing.T) {
	outcome, handle := testkit.App(t, "--serve").
		Module(heartbeat.Module()).
		Set("heartbeat.addr", "127.0.0.1:0").
		Run()

	require.True(t, outcome.Success())
	addr := boundAddr(t, handle.Stdout)

	status, _ := get(t, "http://"+addr+"/health")
	require.Equal(t, http.StatusOK, status)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, handle.Runtime.Shutdown(ctx))

	_, err := http.Get("http://" + addr + "/health")
	require.Error(t, err)
}

func TestServe_CustomHealthPath(t *testing.T) {
	outcome, handle := testkit.App(t, "--serve").
		Module(heartbeat.Module()).
		Set("heartbeat.addr", "127.0.0.1:0").
		Set("heartbeat.path", "/livez").
		Run()

	require.True(t, outcome.Success())
	addr := boundAddr(t, handle.Stdout)

	status, _ := get(t, "http://"+addr+"/livez")
	require.Equal(t, http.StatusOK, status)
}
