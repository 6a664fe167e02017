package envprobe_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/loom/internal/testkit"
	"github.com/vk/loom/modules/envprobe"
)

func TestEnv_PrintsResolvedKeysSorted(t *testing.T) {
	outcome, handle := testkit.App(t, "--env").
		Module(envprobe.Module()).
		Set("zeta.flag", true).
		Set("alpha.name", "probe").
		Set("alpha.count", 3).
		Run()

	require.True(t, outcome.Success(), "outcome: %+v", outcome)
	require.Equal(t, "alpha.count=3\nalpha.name=probe\nzeta.flag=true\n", handle.Stdout.String())
}

func TestEnv_EmptyConfiguration(t *testing.T) {
	outcome, handle := testkit.App(t, "--env").
		Module(envprobe.Module()).
		Run()

	require.True(t, outcome.Success())
	require.Empty(t, handle.Stdout.String())
}
