package httpx

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/bensonnlee/SRCode/pkg/slogx"
)

// Middleware wraps an http.Handler.
type Middleware func(http.Handler) http.Handler

// Chain wraps h so that the first middleware is the outermost.
func Chain(h http.Handler, m ...Middleware) http.Handler {
	for i := len(m) - 1; i >= 0; i-- {
		h = m[i](h)
	}
	return h
}

// RequireAPIToken demands "Authorization: Bearer <token>". An empty token
// disables the check.
func RequireAPIToken(token string) Middleware {
	return func(next http.Handler) http.Handler {
		if token == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authz := r.Header.Get("Authorization")
			if !strings.HasPrefix(authz, "Bearer ") {
				writeBearerError(w, "missing bearer token")
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))

			if subtle.ConstantTimeCompare([]byte(raw), []byte(token)) != 1 {
				slogx.FromContext(r.Context()).Warn("api token rejected")
				writeBearerError(w, "invalid api token")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RFC 6750 style error for bearer auth.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	WriteError(w, http.StatusUnauthorized, "invalid_token", desc)
}
