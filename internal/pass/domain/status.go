package domain

import "time"

// Status summarises what is held locally for one user.
type Status struct {
	Username         string     `json:"username"`
	Remembered       bool       `json:"remembered"`
	HasToken         bool       `json:"hasToken"`
	TokenExpiresAt   *time.Time `json:"tokenExpiresAt,omitempty"`
	TokenFingerprint string     `json:"tokenFingerprint,omitempty"`
	LastLoginAt      *time.Time `json:"lastLoginAt,omitempty"`

	// Claims read from the token when it is a JWT. Unverified.
	Subject       string     `json:"subject,omitempty"`
	DisplayName   string     `json:"displayName,omitempty"`
	ClaimedExpiry *time.Time `json:"claimedExpiry,omitempty"`
	Demo          bool       `json:"demo,omitempty"`
}
