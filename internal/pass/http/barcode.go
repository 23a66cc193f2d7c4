package http

import (
	"net/http"

	"github.com/bensonnlee/SRCode/internal/pass/service"
)

// BarcodeHandler serves GET /v1/barcode.
type BarcodeHandler struct {
	PassService *service.PassService
}

// ServeHTTP godoc
//
//	@Summary		Mint a barcode
//	@Description	Returns a fresh AppBarcodeIdNumber. Uses the cached token and falls back to one full sign-in when the user is remembered.
//	@Tags			Pass
//	@Produce		json
//	@Param			username	query		string	true	"Campus username"
//	@Success		200			{object}	passsdk.BarcodeResponse
//	@Failure		401			{object}	passsdk.BarcodeResponse	"not signed in"
//	@Failure		502			{object}	passsdk.BarcodeResponse	"unexpected upstream response"
//	@Security		BearerAuth
//	@Router			/v1/barcode [get].
func (h *BarcodeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	username := requireUsername(w, r.URL.Query().Get("username"))
	if username == "" {
		return
	}

	writeBarcodeResult(w, h.PassService.Barcode(r.Context(), username))
}
