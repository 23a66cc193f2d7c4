package fusionauth

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/bensonnlee/SRCode/pkg/idx"
	"golang.org/x/net/publicsuffix"
)

const (
	maxRedirects = 10
	maxBodyBytes = 2 << 20
)

// RedirectPolicy reports whether a redirect to next should be intercepted
// instead of followed.
type RedirectPolicy func(next *url.URL) bool

// StopAtRedirect intercepts the first redirect.
func StopAtRedirect(*url.URL) bool { return true }

// StopAtTicket intercepts the first redirect whose target carries a CAS
// service ticket, so that the ticket is never consumed by the client.
func StopAtTicket(next *url.URL) bool { return HasServiceTicket(next) }

// HasServiceTicket reports whether u carries a ticket query parameter holding
// a CAS service ticket (ST-...).
func HasServiceTicket(u *url.URL) bool {
	if u == nil {
		return false
	}
	return strings.HasPrefix(u.Query().Get("ticket"), "ST-")
}

// Session is the cookie state of exactly one login attempt. All requests of
// the attempt go through the same Session; a new attempt must use a new
// Session (or Reset this one). A Session is not safe for concurrent use.
type Session struct {
	ID idx.ID

	client *Client
	http   *http.Client
	jar    *cookiejar.Jar
	policy RedirectPolicy
	log    *slog.Logger
}

// NewSession returns a Session with an empty cookie jar.
func (c *Client) NewSession() (*Session, error) {
	s := &Session{
		ID:     idx.New(),
		client: c,
	}
	s.log = c.logger().With("attempt_id", s.ID.String())

	if err := s.Reset(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reset drops every cookie collected so far.
func (s *Session) Reset() error {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return fmt.Errorf("failed to create cookie jar: %w", err)
	}

	s.jar = jar
	s.http = &http.Client{
		Transport:     s.client.Transport,
		Jar:           jar,
		Timeout:       s.client.timeout(),
		CheckRedirect: s.checkRedirect,
	}
	return nil
}

// Cookies returns the cookies the session would send to u.
func (s *Session) Cookies(u *url.URL) []*http.Cookie {
	return s.jar.Cookies(u)
}

func (s *Session) checkRedirect(req *http.Request, via []*http.Request) error {
	if s.policy != nil && s.policy(req.URL) {
		return http.ErrUseLastResponse
	}
	if len(via) >= maxRedirects {
		return fmt.Errorf("stopped after %d redirects", maxRedirects)
	}
	return nil
}

// NewRequest builds a request carrying the browser impersonation headers.
func (s *Session) NewRequest(ctx context.Context, method, target string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	s.client.setBrowserHeaders(req)
	return req, nil
}

// Intercept sends req and follows redirects until policy asks to stop. When
// it stops on a redirect the 3xx response is returned together with the raw
// redirect target; the target itself is never requested. A nil policy
// follows everything.
func (s *Session) Intercept(req *http.Request, policy RedirectPolicy) (*http.Response, string, error) {
	s.policy = policy
	defer func() { s.policy = nil }()

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, "", err
	}

	if policy == nil || !isRedirect(resp.StatusCode) {
		return resp, "", nil
	}

	loc := resp.Header.Get("Location")
	if loc == "" {
		return resp, "", nil
	}

	target, err := resp.Request.URL.Parse(loc)
	if err != nil {
		return resp, "", nil
	}
	if !policy(target) {
		return resp, "", nil
	}

	if parsed, err := url.Parse(loc); err == nil && parsed.IsAbs() {
		return resp, loc, nil
	}
	return resp, target.String(), nil
}

// Do sends req following every redirect.
func (s *Session) Do(req *http.Request) (*http.Response, error) {
	resp, _, err := s.Intercept(req, nil)
	return resp, err
}

func isRedirect(status int) bool {
	switch status {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	}
	return false
}

// readBody reads and closes the response body.
func readBody(resp *http.Response) (string, error) {
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	return string(b), nil
}

// drain discards and closes the response body so the connection is reused.
func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
	_ = resp.Body.Close()
}
