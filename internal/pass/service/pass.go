package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bensonnlee/SRCode/internal/pass/domain"
	"github.com/bensonnlee/SRCode/internal/pass/store"
	"github.com/bensonnlee/SRCode/pkg/cryptox"
	"github.com/bensonnlee/SRCode/pkg/fusionauth"
	"github.com/bensonnlee/SRCode/pkg/jwtx"
	"github.com/bensonnlee/SRCode/pkg/obs"
	"github.com/bensonnlee/SRCode/pkg/slogx"
	"golang.org/x/sync/singleflight"
)

// User-facing messages for states the pass service owns.
const (
	MsgNotSignedIn    = "Please sign in to load your barcode."
	MsgNotRemembered  = "No saved sign-in for this user. Please sign in again."
	MsgStorageProblem = "Unable to access saved sign-in data."
)

const credentialAADLabel = "credential:"

var (
	// ErrNotSignedIn means there is neither a cached token nor a remembered
	// password for the user.
	ErrNotSignedIn = errors.New("pass: not signed in")

	// ErrNotRemembered means a refresh was requested without stored
	// credentials.
	ErrNotRemembered = errors.New("pass: credentials not remembered")
)

// PassService ties the fusion client to the local token store and
// credential vault. All upstream work for one user is collapsed through a
// singleflight group, so concurrent callers share a single login walk.
type PassService struct {
	Client   *fusionauth.Client
	Store    store.Store
	Vault    *cryptox.Vault
	Metrics  *obs.Metrics
	TokenTTL time.Duration

	// Now defaults to time.Now.
	Now func() time.Time

	group singleflight.Group
}

// NewPassService wires a PassService. A zero ttl means
// fusionauth.DefaultTokenTTL.
func NewPassService(client *fusionauth.Client, st store.Store, vault *cryptox.Vault, metrics *obs.Metrics, ttl time.Duration) *PassService {
	if ttl <= 0 {
		ttl = fusionauth.DefaultTokenTTL
	}
	return &PassService{
		Client:   client,
		Store:    st,
		Vault:    vault,
		Metrics:  metrics,
		TokenTTL: ttl,
		Now:      time.Now,
	}
}

func (s *PassService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s *PassService) cache(username string) *store.TokenCache {
	c := store.NewTokenCache(s.Store, s.Vault, username)
	c.Now = s.now
	return c
}

// NormalizeUsername trims surrounding whitespace.
func NormalizeUsername(username string) string {
	return strings.TrimSpace(username)
}

// flightKey identifies one credential set without keeping the password in
// the singleflight map.
func flightKey(op, username, password string) string {
	return op + ":" + cryptox.FingerprintToken(username+"\x00"+password)
}

// Login authenticates and caches the resulting token. With remember set, the
// password is sealed into the vault so Refresh and Barcode can log in again
// later without asking.
func (s *PassService) Login(ctx context.Context, username, password string, remember bool) fusionauth.AuthResult {
	username = NormalizeUsername(username)
	ctx = slogx.With(ctx, "username", username)
	log := slogx.FromContext(ctx)

	v, err, shared := s.group.Do(flightKey("login", username, password), func() (any, error) {
		return s.Client.Login(ctx, fusionauth.Credentials{Username: username, Password: password})
	})
	if shared {
		log.Debug("joined in-flight login")
	}
	if err != nil {
		s.Metrics.AuthAttempt(fusionauth.KindOf(err).String())
		return authFailure(err)
	}
	token := v.(string)
	s.recordAuth(token)

	if err := s.cache(username).Save(ctx, token, s.TokenTTL); err != nil {
		log.Error("failed to cache fusion token", "error", err)
	}
	if remember {
		if err := s.remember(ctx, username, password); err != nil {
			log.Error("failed to remember credentials", "error", err)
		}
	}

	return fusionauth.AuthResult{Success: true, FusionToken: token}
}

// Refresh re-runs the login with remembered credentials and replaces the
// cached token.
func (s *PassService) Refresh(ctx context.Context, username string) fusionauth.AuthResult {
	username = NormalizeUsername(username)
	ctx = slogx.With(ctx, "username", username)
	log := slogx.FromContext(ctx)

	creds, err := s.recall(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotRemembered) {
			return fusionauth.AuthResult{Error: MsgNotRemembered, Kind: fusionauth.KindInvalidCredentials, Err: err}
		}
		log.Error("failed to load credentials", "error", err)
		return fusionauth.AuthResult{Error: MsgStorageProblem, Kind: fusionauth.KindUnknown, Err: err}
	}

	v, err, _ := s.group.Do(flightKey("login", creds.Username, creds.Password), func() (any, error) {
		res := s.Client.RefreshAuthentication(ctx, creds.Username, creds.Password)
		if !res.Success {
			return "", res.Err
		}
		return res.FusionToken, nil
	})
	if err != nil {
		s.Metrics.AuthAttempt(fusionauth.KindOf(err).String())
		return authFailure(err)
	}
	token := v.(string)
	s.recordAuth(token)

	if err := s.cache(username).Save(ctx, token, s.TokenTTL); err != nil {
		log.Error("failed to cache fusion token", "error", err)
	}
	s.touch(ctx, username)
	return fusionauth.AuthResult{Success: true, FusionToken: token}
}

// Barcode mints a barcode for username. A cached token is tried first; when
// it is missing or rejected and the user is remembered, one full login is
// performed and the fresh token is cached.
func (s *PassService) Barcode(ctx context.Context, username string) fusionauth.BarcodeResult {
	username = NormalizeUsername(username)

	v, err, _ := s.group.Do("barcode:"+username, func() (any, error) {
		return s.barcode(ctx, username)
	})
	if err != nil {
		res := barcodeFailure(err)
		s.Metrics.BarcodeRequest(outcome(res.Kind))
		return res
	}
	s.Metrics.BarcodeRequest(obs.OutcomeSuccess)
	return fusionauth.BarcodeResult{Success: true, BarcodeID: v.(string)}
}

func (s *PassService) barcode(ctx context.Context, username string) (string, error) {
	ctx = slogx.With(ctx, "username", username)
	log := slogx.FromContext(ctx)
	cache := s.cache(username)

	cached, ok, err := cache.Load(ctx)
	if err != nil {
		log.Error("token cache lookup failed", "error", err)
	}
	if ok {
		s.Metrics.CacheLookup(obs.CacheHit)
	} else {
		s.Metrics.CacheLookup(obs.CacheMiss)
	}

	creds, err := s.recall(ctx, username)
	if err != nil && !errors.Is(err, ErrNotRemembered) {
		log.Error("failed to load credentials", "error", err)
	}

	if err != nil {
		// Nobody to fall back to: the cached token is all there is.
		if !ok {
			return "", ErrNotSignedIn
		}
		id, err := s.Client.MintBarcode(ctx, cached)
		if errors.Is(err, fusionauth.ErrTokenExpiredOrInvalid) {
			s.Metrics.CacheLookup(obs.CacheExpired)
			_ = cache.Clear(ctx)
		}
		return id, err
	}

	pass, err := s.Client.FullAuthAndBarcode(ctx, creds, cached)
	switch {
	case pass.Reauthenticated:
		s.recordAuth(pass.FusionToken)
		if err := cache.Save(ctx, pass.FusionToken, s.TokenTTL); err != nil {
			log.Error("failed to cache fusion token", "error", err)
		}
		s.touch(ctx, username)
	case err != nil:
		// The fallback login itself failed.
		s.Metrics.AuthAttempt(fusionauth.KindOf(err).String())
		if ok {
			_ = cache.Clear(ctx)
		}
	}
	if err != nil {
		return "", err
	}
	return pass.BarcodeID, nil
}

// Logout forgets the cached token and the remembered credentials together.
func (s *PassService) Logout(ctx context.Context, username string) error {
	username = NormalizeUsername(username)
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Tokens().DeleteToken(ctx, username); err != nil {
			return fmt.Errorf("delete token: %w", err)
		}
		if err := tx.Credentials().DeleteCredential(ctx, username); err != nil {
			return fmt.Errorf("delete credential: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	slogx.FromContext(ctx).Info("logged out", "username", username)
	return nil
}

// Status reports what is held locally for username. It never contacts the
// upstream service.
func (s *PassService) Status(ctx context.Context, username string) (domain.Status, error) {
	username = NormalizeUsername(username)
	st := domain.Status{Username: username}

	cred, err := s.Store.Credentials().GetCredential(ctx, username)
	switch {
	case err == nil:
		st.Remembered = true
		st.LastLoginAt = cred.LastLoginAt
	case !errors.Is(err, store.ErrNotFound):
		return st, err
	}

	row, err := s.Store.Tokens().GetToken(ctx, username)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return st, nil
	case err != nil:
		return st, err
	}
	if row.Expired(s.now()) {
		return st, nil
	}

	st.HasToken = true
	exp := row.ExpiresAt
	st.TokenExpiresAt = &exp
	st.TokenFingerprint = row.Fingerprint

	token, err := s.Vault.OpenString(row.TokenEncrypted, store.TokenAAD(username))
	if err != nil {
		return st, nil
	}
	st.Demo = token == fusionauth.DemoToken
	if st.Demo {
		st.DisplayName = fusionauth.DemoDisplayName
	}
	if claims, err := jwtx.Inspect(token); err == nil {
		st.Subject = claims.Subject
		st.DisplayName = claims.Name
		if claims.ExpiresAt != nil {
			t := claims.ExpiresAt.Time
			st.ClaimedExpiry = &t
		}
	}
	return st, nil
}

func (s *PassService) remember(ctx context.Context, username, password string) error {
	sealed, err := s.Vault.SealString(password, credentialAADLabel+username)
	if err != nil {
		return err
	}
	now := s.now()
	if err := s.Store.Credentials().UpsertCredential(ctx, domain.SavedCredential{
		Username:          username,
		PasswordEncrypted: sealed,
		CreatedAt:         now,
		UpdatedAt:         now,
	}); err != nil {
		return err
	}
	return s.Store.Credentials().TouchLastLogin(ctx, username, now)
}

func (s *PassService) recall(ctx context.Context, username string) (fusionauth.Credentials, error) {
	row, err := s.Store.Credentials().GetCredential(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return fusionauth.Credentials{}, ErrNotRemembered
	}
	if err != nil {
		return fusionauth.Credentials{}, err
	}
	password, err := s.Vault.OpenString(row.PasswordEncrypted, credentialAADLabel+username)
	if err != nil {
		// Sealed under a different master key; treat as forgotten.
		return fusionauth.Credentials{}, ErrNotRemembered
	}
	return fusionauth.Credentials{Username: username, Password: password}, nil
}

func (s *PassService) touch(ctx context.Context, username string) {
	err := s.Store.Credentials().TouchLastLogin(ctx, username, s.now())
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		slogx.FromContext(ctx).Warn("failed to record last login", "error", err)
	}
}

func (s *PassService) recordAuth(token string) {
	if token == fusionauth.DemoToken {
		s.Metrics.AuthAttempt(obs.OutcomeDemo)
		return
	}
	s.Metrics.AuthAttempt(obs.OutcomeSuccess)
}

func authFailure(err error) fusionauth.AuthResult {
	return fusionauth.AuthResult{
		Error: fusionauth.UserMessage(err),
		Kind:  fusionauth.KindOf(err),
		Err:   err,
	}
}

func barcodeFailure(err error) fusionauth.BarcodeResult {
	if errors.Is(err, ErrNotSignedIn) {
		return fusionauth.BarcodeResult{Error: MsgNotSignedIn, Kind: fusionauth.KindTokenExpiredOrInvalid, Err: err}
	}
	kind := fusionauth.KindOf(err)
	msg := fusionauth.MsgBarcodeRetry
	switch {
	case kind == fusionauth.KindNetwork:
		msg = fusionauth.MsgNetwork
	case kind == fusionauth.KindInvalidCredentials:
		// Fallback login was rejected; the password must be re-entered.
		msg = fusionauth.UserMessage(err)
	}
	return fusionauth.BarcodeResult{Error: msg, Kind: kind, Err: err}
}

func outcome(k fusionauth.Kind) string {
	if k == fusionauth.KindNone {
		return obs.OutcomeSuccess
	}
	return k.String()
}
