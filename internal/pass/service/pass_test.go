package service_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/bensonnlee/SRCode/internal/pass/service"
	"github.com/bensonnlee/SRCode/internal/pass/store"
	"github.com/bensonnlee/SRCode/internal/pass/store/drivers/sqlite"
	"github.com/bensonnlee/SRCode/pkg/cryptox"
	"github.com/bensonnlee/SRCode/pkg/fusionauth"
	"github.com/bensonnlee/SRCode/pkg/fusionauth/fusiontest"
	"github.com/bensonnlee/SRCode/pkg/obs"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

type harness struct {
	fusion *fusiontest.Server
	store  *sqlite.Store
	svc    *service.PassService
	now    time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	f := fusiontest.New(t)

	st, err := sqlite.NewStore(filepath.Join(t.TempDir(), "pass.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	vault, err := cryptox.NewVault([]byte("service-test-key"))
	require.NoError(t, err)

	h := &harness{fusion: f, store: st, now: time.Unix(1_700_000_000, 0)}
	h.svc = service.NewPassService(f.Client(), st, vault, obs.New(), time.Hour)
	h.svc.Now = func() time.Time { return h.now }
	return h
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("success caches the token", func(t *testing.T) {
		h := newHarness(t)

		res := h.svc.Login(ctx, " "+h.fusion.Username+" ", h.fusion.Password, false)
		require.True(t, res.Success, res.Error)
		require.Equal(t, h.fusion.Token, res.FusionToken)

		status, err := h.svc.Status(ctx, h.fusion.Username)
		require.NoError(t, err)
		require.True(t, status.HasToken)
		require.False(t, status.Remembered)
		require.Equal(t, cryptox.FingerprintToken(h.fusion.Token), status.TokenFingerprint)
		require.True(t, h.now.Add(time.Hour).Equal(*status.TokenExpiresAt))
	})

	t.Run("remember stores sealed credentials", func(t *testing.T) {
		h := newHarness(t)

		res := h.svc.Login(ctx, h.fusion.Username, h.fusion.Password, true)
		require.True(t, res.Success)

		cred, err := h.store.Credentials().GetCredential(ctx, h.fusion.Username)
		require.NoError(t, err)
		require.NotContains(t, string(cred.PasswordEncrypted), h.fusion.Password)
		require.NotNil(t, cred.LastLoginAt)
	})

	t.Run("failure is not cached", func(t *testing.T) {
		h := newHarness(t)

		res := h.svc.Login(ctx, "baduser", "wrongpass", true)
		require.False(t, res.Success)
		require.Equal(t, fusionauth.MsgInvalidCredentials, res.Error)

		_, err := h.store.Tokens().GetToken(ctx, "baduser")
		require.ErrorIs(t, err, store.ErrNotFound)
		_, err = h.store.Credentials().GetCredential(ctx, "baduser")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("concurrent logins share one walk", func(t *testing.T) {
		h := newHarness(t)
		h.fusion.LoginDelay = 200 * time.Millisecond

		var wg sync.WaitGroup
		results := make([]fusionauth.AuthResult, 5)
		for i := range results {
			wg.Add(1)
			go func() {
				defer wg.Done()
				results[i] = h.svc.Login(ctx, h.fusion.Username, h.fusion.Password, false)
			}()
		}
		wg.Wait()

		for _, res := range results {
			require.True(t, res.Success)
			require.Equal(t, h.fusion.Token, res.FusionToken)
		}
		require.Equal(t, 1, h.fusion.Calls(fusiontest.PathLoginStart))
	})
}

func TestBarcode(t *testing.T) {
	ctx := context.Background()

	t.Run("not signed in", func(t *testing.T) {
		h := newHarness(t)

		res := h.svc.Barcode(ctx, "nobody")
		require.False(t, res.Success)
		require.Equal(t, service.MsgNotSignedIn, res.Error)
		require.Zero(t, h.fusion.LoginCalls())
		require.Zero(t, h.fusion.Calls(fusiontest.PathBarcode))
	})

	t.Run("cached token is used", func(t *testing.T) {
		h := newHarness(t)
		require.True(t, h.svc.Login(ctx, h.fusion.Username, h.fusion.Password, false).Success)

		res := h.svc.Barcode(ctx, h.fusion.Username)
		require.True(t, res.Success, res.Error)
		require.Equal(t, h.fusion.BarcodeID, res.BarcodeID)
		require.Equal(t, 1, h.fusion.Calls(fusiontest.PathLoginStart), "no second login")
	})

	t.Run("jwt exp in the past does not force a login", func(t *testing.T) {
		h := newHarness(t)
		tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"exp":  h.now.Add(-time.Minute).Unix(),
			"name": "Student One",
		}).SignedString([]byte("upstream"))
		require.NoError(t, err)
		h.fusion.Token = tok

		require.True(t, h.svc.Login(ctx, h.fusion.Username, h.fusion.Password, false).Success)
		for range 3 {
			res := h.svc.Barcode(ctx, h.fusion.Username)
			require.True(t, res.Success, res.Error)
		}
		require.Equal(t, 1, h.fusion.Calls(fusiontest.PathLoginStart))

		status, err := h.svc.Status(ctx, h.fusion.Username)
		require.NoError(t, err)
		require.True(t, h.now.Add(time.Hour).Equal(*status.TokenExpiresAt))
		require.True(t, h.now.Add(-time.Minute).Equal(*status.ClaimedExpiry))
		require.Equal(t, "Student One", status.DisplayName)
	})

	t.Run("expired token with remembered credentials logs in once", func(t *testing.T) {
		h := newHarness(t)
		require.True(t, h.svc.Login(ctx, h.fusion.Username, h.fusion.Password, true).Success)

		h.now = h.now.Add(time.Hour)
		res := h.svc.Barcode(ctx, h.fusion.Username)
		require.True(t, res.Success, res.Error)
		require.Equal(t, 2, h.fusion.Calls(fusiontest.PathLoginStart))
		require.Equal(t, 1, h.fusion.Calls(fusiontest.PathBarcode), "expired token is never sent")

		status, err := h.svc.Status(ctx, h.fusion.Username)
		require.NoError(t, err)
		require.True(t, status.HasToken, "fresh token was cached")
	})

	t.Run("rejected token without credentials is dropped", func(t *testing.T) {
		h := newHarness(t)
		require.True(t, h.svc.Login(ctx, h.fusion.Username, h.fusion.Password, false).Success)
		h.fusion.Token = "rotated-upstream"

		res := h.svc.Barcode(ctx, h.fusion.Username)
		require.False(t, res.Success)
		require.Equal(t, fusionauth.MsgBarcodeRetry, res.Error)

		_, err := h.store.Tokens().GetToken(ctx, h.fusion.Username)
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("password changed upstream", func(t *testing.T) {
		h := newHarness(t)
		require.True(t, h.svc.Login(ctx, h.fusion.Username, h.fusion.Password, true).Success)
		h.fusion.Token = "rotated-upstream"
		h.fusion.Password = "changed"

		res := h.svc.Barcode(ctx, h.fusion.Username)
		require.False(t, res.Success)
		require.Equal(t, fusionauth.KindInvalidCredentials, res.Kind)
		require.Equal(t, fusionauth.MsgInvalidCredentials, res.Error)
	})
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()

	t.Run("requires remembered credentials", func(t *testing.T) {
		h := newHarness(t)

		res := h.svc.Refresh(ctx, h.fusion.Username)
		require.False(t, res.Success)
		require.Equal(t, service.MsgNotRemembered, res.Error)
		require.ErrorIs(t, res.Err, service.ErrNotRemembered)
		require.Zero(t, h.fusion.LoginCalls())
	})

	t.Run("reruns the login", func(t *testing.T) {
		h := newHarness(t)
		require.True(t, h.svc.Login(ctx, h.fusion.Username, h.fusion.Password, true).Success)

		h.fusion.Token = "second-token-abcdef"
		res := h.svc.Refresh(ctx, h.fusion.Username)
		require.True(t, res.Success, res.Error)
		require.Equal(t, "second-token-abcdef", res.FusionToken)
		require.Equal(t, 2, h.fusion.Calls(fusiontest.PathLoginStart))

		status, err := h.svc.Status(ctx, h.fusion.Username)
		require.NoError(t, err)
		require.Equal(t, cryptox.FingerprintToken("second-token-abcdef"), status.TokenFingerprint)
	})
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	require.True(t, h.svc.Login(ctx, h.fusion.Username, h.fusion.Password, true).Success)

	require.NoError(t, h.svc.Logout(ctx, h.fusion.Username))

	status, err := h.svc.Status(ctx, h.fusion.Username)
	require.NoError(t, err)
	require.False(t, status.HasToken)
	require.False(t, status.Remembered)

	require.NoError(t, h.svc.Logout(ctx, h.fusion.Username), "logout is idempotent")
}

func TestDemoUser(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.svc.Client.Demo = true

	res := h.svc.Login(ctx, "demo", "x", false)
	require.True(t, res.Success)
	require.Equal(t, fusionauth.DemoToken, res.FusionToken)

	seen := map[string]bool{}
	for range len(fusionauth.DemoBarcodeIDs) {
		bc := h.svc.Barcode(ctx, "demo")
		require.True(t, bc.Success)
		require.Contains(t, fusionauth.DemoBarcodeIDs, bc.BarcodeID)
		seen[bc.BarcodeID] = true
	}
	require.Greater(t, len(seen), 1, "demo barcodes rotate")

	status, err := h.svc.Status(ctx, "demo")
	require.NoError(t, err)
	require.True(t, status.Demo)
	require.Equal(t, fusionauth.DemoDisplayName, status.DisplayName)
	require.Zero(t, h.fusion.LoginCalls())
}
