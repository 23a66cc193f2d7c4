package fusionauth

import (
	"log/slog"
	"net/http"
	"time"
)

// Client walks the Fusion / CAS login flow and mints barcodes. A Client holds
// no per-login state and is safe for concurrent use; every login runs in its
// own Session.
type Client struct {
	Endpoints Endpoints

	// Timeout bounds each request. Zero means DefaultTimeout.
	Timeout time.Duration

	// UserAgent is sent on every request. Empty means DefaultUserAgent.
	UserAgent string

	// Transport is used for all requests. Nil means http.DefaultTransport.
	Transport http.RoundTripper

	// Logger receives step-level logs. Nil means slog.Default().
	Logger *slog.Logger

	// Demo enables the offline demo account.
	Demo bool
}

// NewClient returns a client for the given endpoints with default timeout and
// headers.
func NewClient(endpoints Endpoints) *Client {
	if endpoints.TokenHeader == "" {
		endpoints.TokenHeader = DefaultTokenHeader
	}
	return &Client{
		Endpoints: endpoints,
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
	}
}

func (c *Client) timeout() time.Duration {
	if c.Timeout <= 0 {
		return DefaultTimeout
	}
	return c.Timeout
}

func (c *Client) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

func (c *Client) tokenHeader() string {
	if c.Endpoints.TokenHeader == "" {
		return DefaultTokenHeader
	}
	return c.Endpoints.TokenHeader
}

// setBrowserHeaders applies the impersonation headers shared by every request.
func (c *Client) setBrowserHeaders(req *http.Request) {
	ua := c.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	req.Header.Set("User-Agent", ua)
	req.Header.Set("Accept", defaultAccept)
	req.Header.Set("Accept-Language", defaultAcceptLanguage)
}

// plainHTTPClient is used for requests that need no cookies, such as barcode
// minting.
func (c *Client) plainHTTPClient() *http.Client {
	return &http.Client{
		Transport: c.Transport,
		Timeout:   c.timeout(),
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}
