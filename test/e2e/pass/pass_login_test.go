package pass_test

import (
	"sync"
	"testing"
	"time"

	"github.com/bensonnlee/SRCode/pkg/fusionauth"
	"github.com/bensonnlee/SRCode/pkg/fusionauth/fusiontest"
	"github.com/bensonnlee/SRCode/pkg/passsdk"
	"github.com/stretchr/testify/require"
)

// TestLoginFlow walks the full CAS flow through the local API and checks
// what ends up in the status report.
func TestLoginFlow(t *testing.T) {
	e := setupPass(t)

	resp, err := e.Client.Login(t.Context(), e.Fusion.Username, e.Fusion.Password, false)
	require.NoError(t, err)
	require.True(t, resp.Success)
	require.Equal(t, e.Fusion.Token, resp.FusionToken)

	// One pass through each hop of the walk
	require.Equal(t, 1, e.Fusion.Calls(fusiontest.PathLoginStart))
	require.Equal(t, 1, e.Fusion.Calls(fusiontest.PathLoginFinish))
	require.Equal(t, e.Fusion.Execution, e.Fusion.LastSubmit().Get("execution"))

	status, err := e.Client.Status(t.Context(), e.Fusion.Username)
	require.NoError(t, err)
	require.True(t, status.HasToken)
	require.False(t, status.Remembered)
	require.Equal(t, e.Fusion.Username, status.Username)
	require.NotEmpty(t, status.TokenFingerprint)
	require.NotNil(t, status.TokenExpiresAt)
}

// TestLoginUsernameIsNormalised checks that surrounding whitespace does not
// create a separate entry.
func TestLoginUsernameIsNormalised(t *testing.T) {
	e := setupPass(t)
	e.login(t, false)

	status, err := e.Client.Status(t.Context(), "  student1 ")
	require.NoError(t, err)
	require.True(t, status.HasToken)
}

func TestLoginInvalidCredentials(t *testing.T) {
	e := setupPass(t)

	resp, err := e.Client.Login(t.Context(), e.Fusion.Username, "wrong", true)
	require.NoError(t, err, "auth failures are results, not transport errors")
	require.False(t, resp.Success)
	require.Equal(t, fusionauth.MsgInvalidCredentials, resp.Error)
	require.Equal(t, fusionauth.KindInvalidCredentials.String(), resp.Kind)

	status, err := e.Client.Status(t.Context(), e.Fusion.Username)
	require.NoError(t, err)
	require.False(t, status.HasToken)
	require.False(t, status.Remembered, "rejected passwords are never saved")
}

// TestConcurrentLoginsShareOneWalk fires several identical logins at once.
// They must collapse into a single trip through CAS.
func TestConcurrentLoginsShareOneWalk(t *testing.T) {
	e := setupPass(t)
	e.Fusion.LoginDelay = 200 * time.Millisecond

	const n = 4
	var wg sync.WaitGroup
	results := make([]*passsdk.AuthResponse, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := e.Client.Login(t.Context(), e.Fusion.Username, e.Fusion.Password, false)
			if err == nil {
				results[i] = resp
			}
		}()
	}
	wg.Wait()

	for _, r := range results {
		require.NotNil(t, r)
		require.True(t, r.Success)
		require.Equal(t, e.Fusion.Token, r.FusionToken)
	}
	require.Equal(t, 1, e.Fusion.Calls(fusiontest.PathLoginStart))
}

func TestAPITokenRequired(t *testing.T) {
	e := setupPass(t)

	anon := passsdk.NewClient(e.Client.BaseURL)
	_, err := anon.Status(t.Context(), "student1")

	var apiErr *passsdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, 401, apiErr.StatusCode)
	require.Equal(t, passsdk.ErrorCodeInvalidToken, apiErr.Code)
}

func TestDemoAccount(t *testing.T) {
	e := setupPass(t)

	resp, err := e.Client.Login(t.Context(), "demo", "anything", false)
	require.NoError(t, err)
	require.True(t, resp.Success)
	require.Equal(t, fusionauth.DemoToken, resp.FusionToken)
	require.Zero(t, e.Fusion.LoginCalls())

	code, err := e.Client.Barcode(t.Context(), "demo")
	require.NoError(t, err)
	require.True(t, code.Success)
	require.Contains(t, fusionauth.DemoBarcodeIDs, code.BarcodeID)
	require.Zero(t, e.Fusion.Calls(fusiontest.PathBarcode), "demo token never reaches the barcode endpoint")
}
