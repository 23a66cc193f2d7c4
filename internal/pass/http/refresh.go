package http

import (
	"net/http"

	"github.com/bensonnlee/SRCode/internal/pass/service"
)

// RefreshHandler serves POST /v1/refresh.
type RefreshHandler struct {
	PassService *service.PassService
}

// ServeHTTP godoc
//
//	@Summary		Refresh the fusion token
//	@Description	Re-runs the full login with remembered credentials. There is no refresh grant upstream.
//	@Tags			Pass
//	@Accept			application/x-www-form-urlencoded
//	@Produce		json
//	@Param			username	formData	string	true	"Campus username"
//	@Success		200			{object}	passsdk.AuthResponse
//	@Failure		401			{object}	passsdk.AuthResponse	"not remembered or credentials rejected"
//	@Security		BearerAuth
//	@Router			/v1/refresh [post].
func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	username := requireUsername(w, r.PostForm.Get("username"))
	if username == "" {
		return
	}

	writeAuthResult(w, h.PassService.Refresh(r.Context(), username))
}
