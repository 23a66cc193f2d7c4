package pass_test

import (
	"io"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/bensonnlee/SRCode/internal/pass/app"
	"github.com/bensonnlee/SRCode/pkg/fusionauth/fusiontest"
	"github.com/bensonnlee/SRCode/pkg/passsdk"
	"github.com/stretchr/testify/require"
)

/*
 * End-to-end helpers. The whole application (sqlite store, vault, pass
 * service, router) runs in-process behind httptest, and Fusion plus CAS are
 * emulated by fusiontest. Tests talk to it only through passsdk.
 */

const (
	apiToken  = "e2e-api-token"
	masterKey = "e2e-master-key"
)

type env struct {
	Fusion *fusiontest.Server
	Client *passsdk.Client
	Config app.Config
}

// setupPass starts the application against a fresh database.
func setupPass(t *testing.T) *env {
	t.Helper()
	return setupPassWithDB(t, filepath.Join(t.TempDir(), "srcode.db"), nil)
}

// setupPassWithDB starts the application on dbFile, reusing fusion when
// non-nil so that a restart can be simulated.
func setupPassWithDB(t *testing.T, dbFile string, fusion *fusiontest.Server) *env {
	t.Helper()

	if fusion == nil {
		fusion = fusiontest.New(t)
	}
	ep := fusion.Endpoints()

	cfg := app.Config{
		LoginStartURL:        ep.LoginStart,
		CASLoginURL:          ep.CASLogin,
		LoginFinishURL:       ep.LoginFinish,
		BarcodeURL:           ep.Barcode,
		TokenHeader:          ep.TokenHeader,
		HTTPTimeout:          5 * time.Second,
		DemoMode:             true,
		TokenTTL:             time.Hour,
		BarcodeRefresh:       50 * time.Millisecond,
		DatabaseFile:         dbFile,
		MasterKey:            masterKey,
		APIToken:             apiToken,
		Env:                  "test",
		LogLevel:             "error",
		LogFormat:            "json",
		ShutdownGracePeriod:  time.Second,
		HousekeepingInterval: time.Minute,
		LogOutput:            io.Discard,
	}

	application, err := app.New(cfg)
	require.NoError(t, err)

	srv := httptest.NewServer(application.Handler())
	t.Cleanup(func() {
		srv.Close()
		_ = application.Close()
	})

	client := passsdk.NewClient(srv.URL)
	client.APIToken = apiToken

	return &env{Fusion: fusion, Client: client, Config: cfg}
}

// login signs in as the fusiontest user and fails the test otherwise.
func (e *env) login(t *testing.T, remember bool) {
	t.Helper()
	resp, err := e.Client.Login(t.Context(), e.Fusion.Username, e.Fusion.Password, remember)
	require.NoError(t, err)
	require.True(t, resp.Success, "login failed: %s", resp.Error)
}
