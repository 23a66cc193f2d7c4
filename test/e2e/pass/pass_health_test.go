package pass_test

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHealthChecks(t *testing.T) {
	e := setupPass(t)

	live, err := e.Client.GetLiveness(t.Context())
	require.NoError(t, err)
	require.Equal(t, "ok", live.Status)
	require.NotEmpty(t, live.Uptime)

	ready, err := e.Client.GetReadiness(t.Context())
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Status)
	require.Equal(t, "ok", ready.Checks.Database)
	require.Equal(t, "ok", ready.Checks.Vault, "a configured master key is not ephemeral")
}
