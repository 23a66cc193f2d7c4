package http

import (
	"net/http"

	"github.com/bensonnlee/SRCode/internal/pass/service"
	"github.com/bensonnlee/SRCode/pkg/httpx"
	"github.com/bensonnlee/SRCode/pkg/passsdk"
	"github.com/bensonnlee/SRCode/pkg/slogx"
)

// LogoutHandler serves POST /v1/logout.
type LogoutHandler struct {
	PassService *service.PassService
}

// ServeHTTP godoc
//
//	@Summary		Sign out
//	@Description	Deletes the cached token and any remembered credentials. Idempotent.
//	@Tags			Pass
//	@Accept			application/x-www-form-urlencoded
//	@Param			username	formData	string	true	"Campus username"
//	@Success		204
//	@Failure		500	{object}	passsdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/logout [post].
func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	username := requireUsername(w, r.PostForm.Get("username"))
	if username == "" {
		return
	}

	if err := h.PassService.Logout(r.Context(), username); err != nil {
		slogx.FromContext(r.Context()).Error("logout failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, passsdk.ErrorCodeServerError, "failed to clear saved data")
		return
	}

	httpx.NoCache(w)
	w.WriteHeader(http.StatusNoContent)
}
