package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	var out bytes.Buffer
	cfg, rest, exit, err := Parse(nil, &out)
	require.NoError(t, err)
	require.False(t, exit)
	require.Empty(t, rest)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, "text", cfg.LogFormat)
	require.True(t, cfg.AutoLoad)
}

func TestParse_GlobalFlagsExtracted(t *testing.T) {
	var out bytes.Buffer
	args := []string{
		"--log-level", "debug",
		"--config", "base.toml",
		"--config=override.hcl",
		"--providers", "providers.d",
		"--shutdown-timeout", "15s",
		"--serve", "-addr", "127.0.0.1:0",
	}
	cfg, rest, exit, err := Parse(args, &out)
	require.NoError(t, err)
	require.False(t, exit)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, []string{"base.toml", "override.hcl"}, cfg.Overlays)
	require.Equal(t, "providers.d", cfg.Providers)
	require.Equal(t, 15*time.Second, cfg.ShutdownTimeout)
	require.Equal(t, []string{"--serve", "-addr", "127.0.0.1:0"}, rest)
}

func TestParse_NoAutoload(t *testing.T) {
	var out bytes.Buffer
	cfg, _, _, err := Parse([]string{"--no-autoload"}, &out)
	require.NoError(t, err)
	require.False(t, cfg.AutoLoad)
}

func TestParse_MissingValue(t *testing.T) {
	var out bytes.Buffer
	_, _, _, err := Parse([]string{"--config"}, &out)
	var ee *ExitError
	require.ErrorAs(t, err, &ee)
	require.Equal(t, 2, ee.Code)
	require.Contains(t, ee.Message, "--config")
}

func TestParse_BadDuration(t *testing.T) {
	var out bytes.Buffer
	_, _, _, err := Parse([]string{"--shutdown-timeout", "soon"}, &out)
	var ee *ExitError
	require.ErrorAs(t, err, &ee)
	require.Equal(t, 2, ee.Code)
}

func TestParse_BadLogLevel(t *testing.T) {
	var out bytes.Buffer
	_, _, _, err := Parse([]string{"--log-level", "chatty"}, &out)
	var ee *ExitError
	require.ErrorAs(t, err, &ee)
	require.Equal(t, 2, ee.Code)
	require.Contains(t, ee.Message, "chatty")
}

func TestParse_HelpPrintsUsageAndExits(t *testing.T) {
	for _, tok := range []string{"--help", "-h"} {
		var out bytes.Buffer
		cfg, rest, exit, err := Parse([]string{tok}, &out)
		require.NoError(t, err)
		require.True(t, exit)
		require.Nil(t, cfg)
		require.Nil(t, rest)
		require.Contains(t, out.String(), "Global options:")
	}
}

func TestParse_ProvidersFromEnvironment(t *testing.T) {
	t.Setenv(EnvProviders, "env-providers.d")

	var out bytes.Buffer
	cfg, _, _, err := Parse(nil, &out)
	require.NoError(t, err)
	require.Equal(t, "env-providers.d", cfg.Providers)

	// The flag wins over the environment.
	cfg, _, _, err = Parse([]string{"--providers", "flag-providers.d"}, &out)
	require.NoError(t, err)
	require.Equal(t, "flag-providers.d", cfg.Providers)
}

func TestParse_LevelAndFormatLowercased(t *testing.T) {
	var out bytes.Buffer
	cfg, _, _, err := Parse([]string{"--log-level=DEBUG", "--log-format=JSON"}, &out)
	require.NoError(t, err)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, "json", cfg.LogFormat)
}
