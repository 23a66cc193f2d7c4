package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/bensonnlee/SRCode/pkg/fusionauth"
	"github.com/bensonnlee/SRCode/pkg/httpx"
	"github.com/bensonnlee/SRCode/pkg/passsdk"
)

// statusFor maps a failure kind onto an HTTP status. The body always carries
// the user-facing message, so clients may ignore the code.
func statusFor(err error, kind fusionauth.Kind) int {
	var fe *fusionauth.Error
	if errors.As(err, &fe) && fe.Step == fusionauth.StepValidate {
		return http.StatusBadRequest
	}

	switch kind {
	case fusionauth.KindNone:
		return http.StatusOK
	case fusionauth.KindInvalidCredentials, fusionauth.KindTokenExpiredOrInvalid:
		return http.StatusUnauthorized
	case fusionauth.KindNetwork:
		return http.StatusGatewayTimeout
	case fusionauth.KindServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

func writeAuthResult(w http.ResponseWriter, res fusionauth.AuthResult) {
	code := http.StatusOK
	if !res.Success {
		code = statusFor(res.Err, res.Kind)
	}
	httpx.WriteJSON(w, code, passsdk.AuthResponse{
		Success:     res.Success,
		FusionToken: res.FusionToken,
		Error:       res.Error,
		Kind:        res.Kind.Label(),
	})
}

func writeBarcodeResult(w http.ResponseWriter, res fusionauth.BarcodeResult) {
	code := http.StatusOK
	if !res.Success {
		code = statusFor(res.Err, res.Kind)
	}
	httpx.WriteJSON(w, code, passsdk.BarcodeResponse{
		Success:   res.Success,
		BarcodeID: res.BarcodeID,
		Error:     res.Error,
		Kind:      res.Kind.Label(),
	})
}

// parseForm rejects bodies that are not urlencoded forms.
func parseForm(w http.ResponseWriter, r *http.Request) bool {
	if ct := r.Header.Get("Content-Type"); ct != "" &&
		!strings.HasPrefix(ct, "application/x-www-form-urlencoded") {
		httpx.WriteError(w, http.StatusUnsupportedMediaType, passsdk.ErrorCodeInvalidRequest,
			"Content-Type must be application/x-www-form-urlencoded")
		return false
	}
	if err := r.ParseForm(); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, passsdk.ErrorCodeInvalidRequest, "malformed form body")
		return false
	}
	return true
}

// requireUsername writes a 400 and returns "" when username is blank.
func requireUsername(w http.ResponseWriter, username string) string {
	username = strings.TrimSpace(username)
	if username == "" {
		httpx.WriteError(w, http.StatusBadRequest, passsdk.ErrorCodeInvalidRequest, fusionauth.MsgUsernameRequired)
	}
	return username
}
