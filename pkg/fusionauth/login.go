package fusionauth

import (
	"context"
	"strings"
	"time"
)

// ValidateCredentials rejects blank input before any request is made.
func ValidateCredentials(creds Credentials) error {
	if strings.TrimSpace(creds.Username) == "" {
		return newError(KindInvalidCredentials, StepValidate, MsgUsernameRequired)
	}
	if creds.Password == "" {
		return newError(KindInvalidCredentials, StepValidate, MsgPasswordRequired)
	}
	return nil
}

// Login walks SessionInit -> ExecutionFetch -> CredentialSubmit ->
// TokenExchange in a fresh Session and returns the fusion token. The first
// failing step ends the walk; its error is always a *Error.
//
// Callers must not run two Logins for the same credentials at once.
func (c *Client) Login(ctx context.Context, creds Credentials) (string, error) {
	if err := ValidateCredentials(creds); err != nil {
		return "", err
	}
	if c.Demo && IsDemoUser(creds.Username) {
		c.logger().Info("demo login")
		return DemoToken, nil
	}

	s, err := c.NewSession()
	if err != nil {
		return "", classify(StepSessionInit, err)
	}
	log := s.log
	start := time.Now()

	fail := func(step Step, err error) (string, error) {
		fe := classify(step, err)
		log.Warn("fusion login failed",
			"step", fe.Step,
			"kind", fe.Kind.String(),
			"duration_ms", time.Since(start).Milliseconds(),
			"error", fe,
		)
		return "", fe
	}

	casURL, err := s.Start(ctx)
	if err != nil {
		return fail(StepSessionInit, err)
	}

	execution, err := s.FetchExecution(ctx, casURL)
	if err != nil {
		return fail(StepExecutionFetch, err)
	}

	ticketURL, err := s.SubmitCredentials(ctx, casURL, execution, creds)
	if err != nil {
		return fail(StepCredentialSubmit, err)
	}

	token, err := s.ExchangeTicket(ctx, ticketURL)
	if err != nil {
		return fail(StepTokenExchange, err)
	}

	log.Info("fusion login succeeded",
		"duration_ms", time.Since(start).Milliseconds(),
		"token", MaskToken(token),
	)
	return token, nil
}

// Authenticate is Login folded into an AuthResult.
func (c *Client) Authenticate(ctx context.Context, username, password string) AuthResult {
	token, err := c.Login(ctx, Credentials{Username: username, Password: password})
	if err != nil {
		return AuthResult{
			Error: UserMessage(err),
			Kind:  KindOf(err),
			Err:   err,
		}
	}
	return AuthResult{Success: true, FusionToken: token}
}

// RefreshAuthentication re-runs the whole login. The service offers no
// refresh grant.
func (c *Client) RefreshAuthentication(ctx context.Context, username, password string) AuthResult {
	return c.Authenticate(ctx, username, password)
}

// FullAuthAndBarcode mints a barcode with cachedToken when one is given. If
// that fails for any reason the cached token is abandoned and a full Login
// followed by a second mint is performed, once. On a failed final mint the
// returned Pass still carries the fresh token.
func (c *Client) FullAuthAndBarcode(ctx context.Context, creds Credentials, cachedToken string) (Pass, error) {
	log := c.logger()

	if cachedToken != "" {
		id, err := c.MintBarcode(ctx, cachedToken)
		if err == nil {
			return Pass{FusionToken: cachedToken, BarcodeID: id}, nil
		}
		log.Info("cached fusion token not usable, re-authenticating",
			"kind", KindOf(err).String(),
			"token", MaskToken(cachedToken),
		)
	}

	token, err := c.Login(ctx, creds)
	if err != nil {
		return Pass{}, err
	}

	id, err := c.MintBarcode(ctx, token)
	if err != nil {
		return Pass{FusionToken: token, Reauthenticated: true}, err
	}

	return Pass{FusionToken: token, BarcodeID: id, Reauthenticated: true}, nil
}

// MaskToken keeps the first and last four characters of a token.
func MaskToken(token string) string {
	if len(token) <= 8 {
		return "***"
	}
	return token[:4] + "..." + token[len(token)-4:]
}
