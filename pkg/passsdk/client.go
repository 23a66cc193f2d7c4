// Package passsdk is a Go client for the local srcode HTTP API.
package passsdk

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client talks to a running `srcode serve`.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	// APIToken is sent as a bearer token when set.
	APIToken string
}

// NewClient returns a client for baseURL. The timeout covers a full CAS
// login walk on the server side.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 90 * time.Second,
		},
	}
}

// Login signs in. With remember the server keeps the password sealed for
// later refreshes.
func (c *Client) Login(ctx context.Context, username, password string, remember bool) (*AuthResponse, error) {
	form := url.Values{
		"username": {username},
		"password": {password},
		"remember": {strconv.FormatBool(remember)},
	}
	var out AuthResponse
	if err := c.postForm(ctx, "/v1/login", form, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Refresh re-runs the login with remembered credentials.
func (c *Client) Refresh(ctx context.Context, username string) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.postForm(ctx, "/v1/refresh", url.Values{"username": {username}}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Barcode mints a barcode id.
func (c *Client) Barcode(ctx context.Context, username string) (*BarcodeResponse, error) {
	var out BarcodeResponse
	if err := c.get(ctx, "/v1/barcode?username="+url.QueryEscape(username), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout forgets the token and remembered credentials for username.
func (c *Client) Logout(ctx context.Context, username string) error {
	resp, err := c.do(ctx, http.MethodPost, "/v1/logout", url.Values{"username": {username}})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		if apiErr := parseErrorResponse(resp.StatusCode, body); apiErr != nil {
			return apiErr
		}
		return genericError(resp.StatusCode)
	}
	return nil
}

// Status reports what the server holds for username.
func (c *Client) Status(ctx context.Context, username string) (*StatusResponse, error) {
	var out StatusResponse
	if err := c.get(ctx, "/v1/status?username="+url.QueryEscape(username), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetLiveness checks if the service is alive.
func (c *Client) GetLiveness(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.get(ctx, "/livez", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetReadiness checks if the service is ready. A degraded service is not an
// error; inspect Status.
func (c *Client) GetReadiness(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.get(ctx, "/readyz", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) get(ctx context.Context, path string, target any) error {
	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return decodeResult(resp, target)
}

func (c *Client) postForm(ctx context.Context, path string, form url.Values, target any) error {
	resp, err := c.do(ctx, http.MethodPost, path, form)
	if err != nil {
		return err
	}
	return decodeResult(resp, target)
}

func (c *Client) do(ctx context.Context, method, path string, form url.Values) (*http.Response, error) {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	req.Header.Set("Accept", "application/json")
	if c.APIToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIToken)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	return resp, nil
}

// decodeResult decodes 2xx bodies into target. Non-2xx bodies that carry an
// ErrorResponse become an *APIError; anything else that decodes into target
// is a domain failure and is returned as a result.
func decodeResult(resp *http.Response, target any) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	failed := resp.StatusCode < 200 || resp.StatusCode >= 300
	if failed {
		if apiErr := parseErrorResponse(resp.StatusCode, body); apiErr != nil {
			return apiErr
		}
	}

	if err := json.Unmarshal(body, target); err != nil {
		if failed {
			return genericError(resp.StatusCode)
		}
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
