package domain

import "time"

// StoredToken is a persisted fusion token. The token itself is sealed by the
// credential vault before it reaches the store.
type StoredToken struct {
	Username       string
	TokenEncrypted []byte
	Fingerprint    string // base64url SHA-256 of the clear token
	ExpiresAt      time.Time
	CreatedAt      time.Time
}

// Expired reports whether the token is unusable at now. A token is expired
// at exactly its expiry instant.
func (t StoredToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
