package http

import (
	"net/http"

	"github.com/bensonnlee/SRCode/internal/pass/service"
	"github.com/bensonnlee/SRCode/pkg/httpx"
	"github.com/bensonnlee/SRCode/pkg/passsdk"
	"github.com/bensonnlee/SRCode/pkg/slogx"
)

// StatusHandler serves GET /v1/status.
type StatusHandler struct {
	PassService *service.PassService
}

// ServeHTTP godoc
//
//	@Summary		Local sign-in status
//	@Description	Reports whether a token is cached and credentials are remembered. Never contacts the upstream service.
//	@Tags			Pass
//	@Produce		json
//	@Param			username	query		string	true	"Campus username"
//	@Success		200			{object}	passsdk.StatusResponse
//	@Security		BearerAuth
//	@Router			/v1/status [get].
func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	username := requireUsername(w, r.URL.Query().Get("username"))
	if username == "" {
		return
	}

	st, err := h.PassService.Status(r.Context(), username)
	if err != nil {
		slogx.FromContext(r.Context()).Error("status lookup failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, passsdk.ErrorCodeServerError, "failed to read saved data")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, passsdk.StatusResponse{
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
	})
}
