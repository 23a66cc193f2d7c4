package passsdk

import "time"

// AuthResponse is returned by /v1/login and /v1/refresh.
type AuthResponse struct {
	Success     bool   `json:"success"`
	FusionToken string `json:"fusionToken,omitempty"`
	Error       string `json:"error,omitempty"`

	// Kind classifies a failure, e.g. "invalid_credentials" or "network".
	Kind string `json:"kind,omitempty"`
}

// BarcodeResponse is returned by /v1/barcode.
type BarcodeResponse struct {
	Success   bool   `json:"success"`
	BarcodeID string `json:"barcodeId,omitempty"`
	Error     string `json:"error,omitempty"`
	Kind      string `json:"kind,omitempty"`
}

// StatusResponse is returned by /v1/status.
type StatusResponse struct {
	Username         string     `json:"username"`
	Remembered       bool       `json:"remembered"`
	HasToken         bool       `json:"hasToken"`
	TokenExpiresAt   *time.Time `json:"tokenExpiresAt,omitempty"`
	TokenFingerprint string     `json:"tokenFingerprint,omitempty"`
	LastLoginAt      *time.Time `json:"lastLoginAt,omitempty"`
	Subject          string     `json:"subject,omitempty"`
	DisplayName      string     `json:"displayName,omitempty"`
	ClaimedExpiry    *time.Time `json:"claimedExpiry,omitempty"`
	Demo             bool       `json:"demo,omitempty"`
}

// HealthResponse is returned by /livez and /readyz (readyz adds Checks).
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime,omitempty"`
	Version string        `json:"version,omitempty"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports the status of each dependency.
type HealthChecks struct {
	Database string `json:"database"`

	// Vault is "ok", or "ephemeral" when remembered credentials will not
	// survive a restart.
	Vault string `json:"vault"`
}

// ErrorResponse is the body of protocol-level failures (bad request, rate
// limiting, missing API token).
type ErrorResponse struct {
	Success          bool   `json:"success"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}
