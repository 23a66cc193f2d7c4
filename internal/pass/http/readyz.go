package http

import (
	"net/http"
	"time"

	"github.com/bensonnlee/SRCode/internal/pass/store"
	"github.com/bensonnlee/SRCode/pkg/cryptox"
	"github.com/bensonnlee/SRCode/pkg/httpx"
	"github.com/bensonnlee/SRCode/pkg/passsdk"
)

// ReadyzHandler godoc
//
//	@Summary		Readiness Check Endpoint
//	@Description	Readiness probe checking the token database. An ephemeral vault is reported but does not fail readiness.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	passsdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	passsdk.HealthResponse	"database unreachable"
//	@Router			/readyz [get].
func ReadyzHandler(startTime time.Time, version string, st store.Store, vault *cryptox.Vault) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &passsdk.HealthChecks{Database: "ok", Vault: "ok"}
		status := "ok"
		code := http.StatusOK

		if err := st.Ping(r.Context()); err != nil {
			checks.Database = "error: " + err.Error()
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
		if vault.Ephemeral() {
			checks.Vault = "ephemeral"
		}

		httpx.WriteJSON(w, code, passsdk.HealthResponse{
			Status:  status,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
