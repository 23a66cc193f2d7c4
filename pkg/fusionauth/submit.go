package fusionauth

import (
	"context"
	"html"
	"net/http"
	"net/url"
	"regexp"
	"strings"
)

var (
	bodyTicketRe = regexp.MustCompile(`https?://[^\s"'<>]+?[?&](?:amp;)?ticket=ST-[^\s"'<>&]+`)

	failurePhrases = []*regexp.Regexp{
		regexp.MustCompile(`(?is)credentials.{0,120}?cannot be determined`),
		regexp.MustCompile(`(?i)authentication failed`),
		regexp.MustCompile(`(?i)incorrect username or password`),
	}
)

// Start opens the Fusion SSO flow and returns the CAS login page URL the
// flow was redirected to. Cookies set along the way stay in the session.
func (s *Session) Start(ctx context.Context) (string, error) {
	ep := s.client.Endpoints

	req, err := s.NewRequest(ctx, http.MethodGet, ep.LoginStart, nil)
	if err != nil {
		return "", classify(StepSessionInit, err)
	}

	resp, target, err := s.Intercept(req, s.isCASLogin)
	if err != nil {
		return "", transportError(StepSessionInit, err)
	}
	final := resp.Request.URL
	drain(resp)

	if target != "" {
		s.log.Debug("login start redirected to cas", "step", StepSessionInit)
		return target, nil
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return "", newError(KindServiceUnavailable, StepSessionInit, "login start returned status %d", resp.StatusCode)
	}
	if s.isCASLogin(final) {
		return final.String(), nil
	}
	if ep.ServiceURL != "" {
		return casURLFor(ep.CASLogin, ep.ServiceURL)
	}

	return "", newError(KindServiceUnavailable, StepSessionInit, "login start did not redirect to cas")
}

// isCASLogin reports whether u points at the configured CAS login page.
func (s *Session) isCASLogin(u *url.URL) bool {
	cas, err := url.Parse(s.client.Endpoints.CASLogin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, cas.Host) && strings.TrimSuffix(u.Path, "/") == strings.TrimSuffix(cas.Path, "/")
}

func casURLFor(casLogin, service string) (string, error) {
	u, err := url.Parse(casLogin)
	if err != nil {
		return "", newError(KindServiceUnavailable, StepSessionInit, "invalid cas login url: %v", err)
	}
	q := u.Query()
	q.Set("service", service)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// FetchExecution loads the CAS login page and extracts its execution token.
func (s *Session) FetchExecution(ctx context.Context, casURL string) (string, error) {
	req, err := s.NewRequest(ctx, http.MethodGet, casURL, nil)
	if err != nil {
		return "", classify(StepExecutionFetch, err)
	}

	resp, err := s.Do(req)
	if err != nil {
		return "", transportError(StepExecutionFetch, err)
	}

	body, err := readBody(resp)
	if err != nil {
		return "", transportError(StepExecutionFetch, err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return "", newError(KindServiceUnavailable, StepExecutionFetch, "cas login page returned status %d", resp.StatusCode)
	}

	return ExtractExecution(body)
}

// SubmitCredentials posts the CAS login form and returns the ticket URL. The
// redirect carrying the ticket is intercepted and never followed, because the
// ticket is single use and must reach login-finish untouched.
func (s *Session) SubmitCredentials(ctx context.Context, casURL, execution string, creds Credentials) (string, error) {
	form := url.Values{}
	form.Set("username", creds.Username)
	form.Set("password", creds.Password)
	form.Set("execution", execution)
	form.Set("_eventId", "submit")
	form.Set("geolocation", "")

	req, err := s.NewRequest(ctx, http.MethodPost, casURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", classify(StepCredentialSubmit, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Referer", casURL)
	if origin := originOf(casURL); origin != "" {
		req.Header.Set("Origin", origin)
	}

	resp, ticketURL, err := s.Intercept(req, StopAtTicket)
	if err != nil {
		return "", transportError(StepCredentialSubmit, err)
	}
	if ticketURL != "" {
		drain(resp)
		s.log.Debug("service ticket captured from redirect", "step", StepCredentialSubmit)
		return ticketURL, nil
	}

	body, err := readBody(resp)
	if err != nil {
		return "", transportError(StepCredentialSubmit, err)
	}

	return s.classifySubmission(resp.StatusCode, body)
}

// classifySubmission inspects a non-redirect login response: an embedded
// ticket wins, then a known failure phrase, and anything else is treated as
// bad credentials.
func (s *Session) classifySubmission(status int, body string) (string, error) {
	if m := bodyTicketRe.FindString(body); m != "" {
		s.log.Debug("service ticket found in body", "step", StepCredentialSubmit)
		return html.UnescapeString(m), nil
	}

	for _, re := range failurePhrases {
		if re.MatchString(body) {
			return "", newError(KindInvalidCredentials, StepCredentialSubmit, "cas rejected credentials")
		}
	}

	s.log.Warn("cas response had no ticket and no known failure message",
		"step", StepCredentialSubmit,
		"status", status,
	)
	return "", newError(KindInvalidCredentials, StepCredentialSubmit, "no service ticket issued (status %d)", status)
}

// ExchangeTicket posts to login-finish with the ticket URL as referer and
// reads the fusion token from the configured response header.
func (s *Session) ExchangeTicket(ctx context.Context, ticketURL string) (string, error) {
	req, err := s.NewRequest(ctx, http.MethodPost, s.client.Endpoints.LoginFinish, http.NoBody)
	if err != nil {
		return "", classify(StepTokenExchange, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Referer", ticketURL)

	resp, _, err := s.Intercept(req, StopAtRedirect)
	if err != nil {
		return "", transportError(StepTokenExchange, err)
	}
	drain(resp)

	token := strings.TrimSpace(resp.Header.Get(s.client.tokenHeader()))
	token = strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
	if token == "" {
		return "", newError(KindServiceUnavailable, StepTokenExchange,
			"header '%s' not found in login-finish response (status %d)", s.client.tokenHeader(), resp.StatusCode)
	}

	return token, nil
}

func originOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}
