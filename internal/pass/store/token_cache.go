package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bensonnlee/SRCode/internal/pass/domain"
	"github.com/bensonnlee/SRCode/pkg/cryptox"
	"github.com/bensonnlee/SRCode/pkg/fusionauth"
)

// TokenCache adapts the Tokens repository to fusionauth.TokenCache for a
// single user. Tokens are sealed with the vault and the username is bound as
// associated data.
type TokenCache struct {
	store    Store
	vault    *cryptox.Vault
	username string

	// Now defaults to time.Now.
	Now func() time.Time
}

var _ fusionauth.TokenCache = (*TokenCache)(nil)

// NewTokenCache returns the cache for username.
func NewTokenCache(st Store, vault *cryptox.Vault, username string) *TokenCache {
	return &TokenCache{store: st, vault: vault, username: username, Now: time.Now}
}

func (c *TokenCache) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

// TokenAAD is the associated data binding a sealed token to its owner.
func TokenAAD(username string) string { return "token:" + username }

// Save stores token until now+ttl. Any exp claim the token carries is ignored.
func (c *TokenCache) Save(ctx context.Context, token string, ttl time.Duration) error {
	now := c.now()
	sealed, err := c.vault.SealString(token, TokenAAD(c.username))
	if err != nil {
		return fmt.Errorf("seal token: %w", err)
	}
	return c.store.Tokens().UpsertToken(ctx, domain.StoredToken{
		Username:       c.username,
		TokenEncrypted: sealed,
		Fingerprint:    cryptox.FingerprintToken(token),
		ExpiresAt:      now.Add(ttl),
		CreatedAt:      now,
	})
}

// Load returns the token while now < expiry. Expired or unreadable rows are
// deleted and reported as a miss.
func (c *TokenCache) Load(ctx context.Context) (string, bool, error) {
	row, err := c.store.Tokens().GetToken(ctx, c.username)
	if errors.Is(err, ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	if row.Expired(c.now()) {
		return "", false, c.Clear(ctx)
	}

	token, err := c.vault.OpenString(row.TokenEncrypted, TokenAAD(c.username))
	if err != nil {
		// Sealed under another master key.
		return "", false, c.Clear(ctx)
	}
	return token, true, nil
}

func (c *TokenCache) Clear(ctx context.Context) error {
	return c.store.Tokens().DeleteToken(ctx, c.username)
}
