package http

import (
	"net/http"
	"time"

	"github.com/bensonnlee/SRCode/pkg/httpx"
	"github.com/bensonnlee/SRCode/pkg/passsdk"
)

// LivezHandler godoc
//
//	@Summary		Health Check Endpoint
//	@Description	Liveness probe. Always 200 while the process is running.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	passsdk.HealthResponse	"status, uptime, version"
//	@Router			/livez [get].
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, passsdk.HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).String(),
			Version: version,
		})
	}
}
