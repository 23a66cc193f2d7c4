package fusionauth_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/bensonnlee/SRCode/pkg/fusionauth"
	"github.com/bensonnlee/SRCode/pkg/fusionauth/fusiontest"
	"github.com/stretchr/testify/require"
)

func TestGenerateBarcode(t *testing.T) {
	t.Parallel()

	t.Run("returns the first barcode id", func(t *testing.T) {
		f := fusiontest.New(t)
		f.BarcodeBody = `[{"AppBarcodeIdNumber": "1234567890"}, {"AppBarcodeIdNumber": "999"}]`

		res := f.Client().GenerateBarcode(context.Background(), f.Token)
		require.True(t, res.Success)
		require.Equal(t, "1234567890", res.BarcodeID)
		require.Empty(t, res.Error)

		require.Equal(t, "Bearer "+f.Token, f.LastBarcodeAuth())
	})

	t.Run("unauthorized asks for a refresh", func(t *testing.T) {
		f := fusiontest.New(t)
		f.BarcodeStatus = http.StatusUnauthorized

		res := f.Client().GenerateBarcode(context.Background(), f.Token)
		require.False(t, res.Success)
		require.Equal(t, "Unable to load barcode. Tap refresh to try again.", res.Error)
		require.ErrorIs(t, res.Err, fusionauth.ErrTokenExpiredOrInvalid)
		require.Zero(t, f.LoginCalls(), "barcode failures never trigger a login")
	})

	t.Run("server error collapses to the same message", func(t *testing.T) {
		f := fusiontest.New(t)
		f.BarcodeStatus = http.StatusBadGateway

		res := f.Client().GenerateBarcode(context.Background(), f.Token)
		require.Equal(t, fusionauth.MsgBarcodeRetry, res.Error)
	})

	shapes := map[string]string{
		"not json":      `<html>oops</html>`,
		"object":        `{"AppBarcodeIdNumber": "1"}`,
		"empty array":   `[]`,
		"missing field": `[{"Other": "1"}]`,
		"empty field":   `[{"AppBarcodeIdNumber": ""}]`,
		"null first":    `[null]`,
	}
	for name, body := range shapes {
		t.Run("invalid shape: "+name, func(t *testing.T) {
			f := fusiontest.New(t)
			f.BarcodeBody = body

			res := f.Client().GenerateBarcode(context.Background(), f.Token)
			require.False(t, res.Success)
			require.Equal(t, fusionauth.KindInvalidResponse, res.Kind)
			require.Equal(t, fusionauth.MsgBarcodeRetry, res.Error)
		})
	}

	t.Run("network failure is distinct", func(t *testing.T) {
		f := fusiontest.New(t)
		client := f.Client()
		f.Close()

		res := client.GenerateBarcode(context.Background(), "tok")
		require.Equal(t, fusionauth.KindNetwork, res.Kind)
		require.Equal(t, fusionauth.MsgNetwork, res.Error)
	})

	t.Run("empty token is rejected locally", func(t *testing.T) {
		f := fusiontest.New(t)

		res := f.Client().GenerateBarcode(context.Background(), "")
		require.Equal(t, fusionauth.KindTokenExpiredOrInvalid, res.Kind)
		require.Zero(t, f.Calls(fusiontest.PathBarcode))
	})
}

func TestFullAuthAndBarcode(t *testing.T) {
	t.Parallel()

	t.Run("valid cached token skips login", func(t *testing.T) {
		f := fusiontest.New(t)
		creds := fusionauth.Credentials{Username: f.Username, Password: f.Password}

		pass, err := f.Client().FullAuthAndBarcode(context.Background(), creds, f.Token)
		require.NoError(t, err)
		require.Equal(t, f.Token, pass.FusionToken)
		require.Equal(t, f.BarcodeID, pass.BarcodeID)
		require.False(t, pass.Reauthenticated)

		require.Zero(t, f.LoginCalls())
		require.Equal(t, 1, f.Calls(fusiontest.PathBarcode))
	})

	t.Run("stale cached token falls back to one full login", func(t *testing.T) {
		f := fusiontest.New(t)
		creds := fusionauth.Credentials{Username: f.Username, Password: f.Password}

		pass, err := f.Client().FullAuthAndBarcode(context.Background(), creds, "stale-token")
		require.NoError(t, err)
		require.Equal(t, f.Token, pass.FusionToken)
		require.Equal(t, f.BarcodeID, pass.BarcodeID)
		require.True(t, pass.Reauthenticated)

		require.Equal(t, 1, f.Calls(fusiontest.PathLoginStart))
		require.Equal(t, 1, f.Calls(fusiontest.PathLoginFinish))
		require.Equal(t, 2, f.Calls(fusiontest.PathBarcode))
	})

	t.Run("no cached token goes straight to login", func(t *testing.T) {
		f := fusiontest.New(t)
		creds := fusionauth.Credentials{Username: f.Username, Password: f.Password}

		pass, err := f.Client().FullAuthAndBarcode(context.Background(), creds, "")
		require.NoError(t, err)
		require.True(t, pass.Reauthenticated)
		require.Equal(t, 1, f.Calls(fusiontest.PathBarcode))
	})

	t.Run("failed login is returned", func(t *testing.T) {
		f := fusiontest.New(t)
		creds := fusionauth.Credentials{Username: "baduser", Password: "wrongpass"}

		_, err := f.Client().FullAuthAndBarcode(context.Background(), creds, "stale-token")
		require.ErrorIs(t, err, fusionauth.ErrInvalidCredentials)
		require.Equal(t, 1, f.Calls(fusiontest.PathLoginStart))
	})

	t.Run("failed final mint keeps the fresh token", func(t *testing.T) {
		f := fusiontest.New(t)
		f.BarcodeStatus = http.StatusInternalServerError
		creds := fusionauth.Credentials{Username: f.Username, Password: f.Password}

		pass, err := f.Client().FullAuthAndBarcode(context.Background(), creds, "stale-token")
		require.Error(t, err)
		require.Equal(t, f.Token, pass.FusionToken)
		require.Empty(t, pass.BarcodeID)
		require.Equal(t, 1, f.Calls(fusiontest.PathLoginStart), "fallback runs exactly once")
	})
}
