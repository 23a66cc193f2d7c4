package http

import (
	"net/http"
	"strconv"

	"github.com/bensonnlee/SRCode/internal/pass/service"
)

// LoginHandler serves POST /v1/login.
type LoginHandler struct {
	PassService *service.PassService
}

// ServeHTTP godoc
//
//	@Summary		Sign in
//	@Description	Runs the CAS login walk and caches the resulting fusion token.
//	@Description	With remember=true the password is sealed locally so that refresh and barcode can sign in again unattended.
//	@Tags			Pass
//	@Accept			application/x-www-form-urlencoded
//	@Produce		json
//	@Param			username	formData	string	true	"Campus username"
//	@Param			password	formData	string	true	"Campus password"
//	@Param			remember	formData	bool	false	"Keep credentials for unattended refresh"
//	@Success		200			{object}	passsdk.AuthResponse
//	@Failure		400			{object}	passsdk.AuthResponse	"blank username or password"
//	@Failure		401			{object}	passsdk.AuthResponse	"invalid credentials"
//	@Failure		429			{object}	passsdk.ErrorResponse
//	@Failure		503			{object}	passsdk.AuthResponse	"CAS or Fusion unavailable"
//	@Security		BearerAuth
//	@Router			/v1/login [post].
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}

	remember, _ := strconv.ParseBool(r.PostForm.Get("remember"))
	res := h.PassService.Login(r.Context(), r.PostForm.Get("username"), r.PostForm.Get("password"), remember)
	writeAuthResult(w, res)
}
