package main

import (
	"context"
	"os"

	"github.com/bensonnlee/SRCode/internal/pass/app"
	"github.com/bensonnlee/SRCode/internal/pass/domain"
	"github.com/bensonnlee/SRCode/pkg/fusionauth"
	"github.com/bensonnlee/SRCode/pkg/passsdk"
)

// backend is what the commands need: either the in-process pass service or
// a remote one reached through passsdk.
type backend interface {
	Login(ctx context.Context, username, password string, remember bool) (*passsdk.AuthResponse, error)
	Refresh(ctx context.Context, username string) (*passsdk.AuthResponse, error)
	Barcode(ctx context.Context, username string) (*passsdk.BarcodeResponse, error)
	Logout(ctx context.Context, username string) error
	Status(ctx context.Context, username string) (*passsdk.StatusResponse, error)
	Close() error
}

func openBackend() (backend, error) {
	if url := getServerURL(); url != "" {
		client := passsdk.NewClient(url)
		client.APIToken = getAPIToken()
		return remoteBackend{client}, nil
	}

	cfg, err := loadCLIConfig()
	if err != nil {
		return nil, err
	}
	application, err := app.New(cfg)
	if err != nil {
		return nil, err
	}
	return &localBackend{app: application}, nil
}

// loadCLIConfig is app.LoadConfig with quieter logging on stderr, so that
// stdout carries only command output.
func loadCLIConfig() (app.Config, error) {
	cfg, err := app.LoadConfig()
	if err != nil {
		return cfg, err
	}
	cfg.LogOutput = os.Stderr
	if os.Getenv("LOG_LEVEL") == "" {
		cfg.LogLevel = "warn"
	}
	if os.Getenv("LOG_FORMAT") == "" {
		cfg.LogFormat = "text"
	}
	return cfg, nil
}

type remoteBackend struct {
	*passsdk.Client
}

func (remoteBackend) Close() error { return nil }

type localBackend struct {
	app *app.Application
}

func (b *localBackend) Login(ctx context.Context, username, password string, remember bool) (*passsdk.AuthResponse, error) {
	return authResponse(b.app.Service().Login(ctx, username, password, remember)), nil
}

func (b *localBackend) Refresh(ctx context.Context, username string) (*passsdk.AuthResponse, error) {
	return authResponse(b.app.Service().Refresh(ctx, username)), nil
}

func (b *localBackend) Barcode(ctx context.Context, username string) (*passsdk.BarcodeResponse, error) {
	res := b.app.Service().Barcode(ctx, username)
	return &passsdk.BarcodeResponse{
		Success:   res.Success,
		BarcodeID: res.BarcodeID,
		Error:     res.Error,
		Kind:      res.Kind.Label(),
	}, nil
}

func (b *localBackend) Logout(ctx context.Context, username string) error {
	return b.app.Service().Logout(ctx, username)
}

func (b *localBackend) Status(ctx context.Context, username string) (*passsdk.StatusResponse, error) {
	st, err := b.app.Service().Status(ctx, username)
	if err != nil {
		return nil, err
	}
	return statusResponse(st), nil
}

func (b *localBackend) Close() error { return b.app.Close() }

func authResponse(res fusionauth.AuthResult) *passsdk.AuthResponse {
	return &passsdk.AuthResponse{
		Success:     res.Success,
		FusionToken: res.FusionToken,
		Error:       res.Error,
		Kind:        res.Kind.Label(),
	}
}

func statusResponse(st domain.Status) *passsdk.StatusResponse {
	return &passsdk.StatusResponse{
		Username:         st.Username,
		Remembered:       st.Remembered,
		HasToken:         st.HasToken,
		TokenExpiresAt:   st.TokenExpiresAt,
		TokenFingerprint: st.TokenFingerprint,
		LastLoginAt:      st.LastLoginAt,
		Subject:          st.Subject,
		DisplayName:      st.DisplayName,
		ClaimedExpiry:    st.ClaimedExpiry,
		Demo:             st.Demo,
	}
}

// barcodeSource lets service.BarcodeRefresher drive any backend.
type barcodeSource struct {
	backend backend
}

func (s barcodeSource) Barcode(ctx context.Context, username string) fusionauth.BarcodeResult {
	resp, err := s.backend.Barcode(ctx, username)
	if err != nil {
		return fusionauth.BarcodeResult{
			Error: fusionauth.MsgNetwork,
			Kind:  fusionauth.KindNetwork,
			Err:   err,
		}
	}
	return fusionauth.BarcodeResult{
		Success:   resp.Success,
		BarcodeID: resp.BarcodeID,
		Error:     resp.Error,
		Kind:      fusionauth.ParseKind(resp.Kind),
	}
}
