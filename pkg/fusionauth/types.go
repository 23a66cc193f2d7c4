package fusionauth

import "time"

const (
	// DefaultTimeout bounds every request issued by the client.
	DefaultTimeout = 30 * time.Second

	// DefaultTokenTTL is the client-side lifetime assigned to a fusion token.
	// The real server-side lifetime is unknown.
	DefaultTokenTTL = time.Hour

	// DefaultBarcodeRefresh is how long a minted barcode is shown before a new
	// one should be requested.
	DefaultBarcodeRefresh = 12 * time.Second

	// DefaultTokenHeader is the response header login-finish uses to hand
	// back the fusion token.
	DefaultTokenHeader = "X-Fusion-Token"

	// DefaultUserAgent impersonates Mobile Safari on iOS 17.
	DefaultUserAgent = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1"

	defaultAccept         = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	defaultAcceptLanguage = "en-us"
)

// Endpoints are the third-party URLs the login walk talks to.
type Endpoints struct {
	// LoginStart begins the Fusion SSO flow and redirects to CAS.
	LoginStart string

	// CASLogin is the CAS login form, without query parameters.
	CASLogin string

	// ServiceURL is the CAS service callback. When empty it is taken from the
	// redirect issued by LoginStart.
	ServiceURL string

	// LoginFinish converts a ticket URL into a fusion token.
	LoginFinish string

	// Barcode mints barcode ids for a fusion token.
	Barcode string

	// TokenHeader names the LoginFinish response header carrying the token.
	TokenHeader string
}

// DefaultEndpoints returns the production UCR / Innosoft Fusion endpoints.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		LoginStart:  "https://innosoftfusiongo.com/sso/login/login-start.php?id=124",
		CASLogin:    "https://auth.ucr.edu/cas/login",
		LoginFinish: "https://innosoftfusiongo.com/sso/login/login-finish.php",
		Barcode:     "https://innosoftfusiongo.com/sso/api/barcode.php?id=124",
		TokenHeader: DefaultTokenHeader,
	}
}

// Credentials is a username/password pair. It is never logged.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResult is the outcome of an authentication attempt.
type AuthResult struct {
	Success     bool   `json:"success"`
	FusionToken string `json:"fusionToken,omitempty"`
	Error       string `json:"error,omitempty"`

	// Kind classifies the failure. KindNone on success.
	Kind Kind `json:"-"`
	// Err is the underlying error, nil on success.
	Err error `json:"-"`
}

// BarcodeResult is the outcome of a barcode request.
type BarcodeResult struct {
	Success   bool   `json:"success"`
	BarcodeID string `json:"barcodeId,omitempty"`
	Error     string `json:"error,omitempty"`

	Kind Kind  `json:"-"`
	Err  error `json:"-"`
}

// Pass is a fusion token together with a barcode minted from it.
type Pass struct {
	FusionToken string `json:"fusionToken"`
	BarcodeID   string `json:"barcodeId"`

	// Reauthenticated is true when the cached token was not used.
	Reauthenticated bool `json:"reauthenticated"`
}

// barcodeEntry is one element of the barcode endpoint's JSON array.
type barcodeEntry struct {
	AppBarcodeIDNumber string `json:"AppBarcodeIdNumber"`
}
