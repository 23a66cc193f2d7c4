package store

import (
	"context"
	"errors"
	"time"

	"github.com/bensonnlee/SRCode/internal/pass/domain"
)

var ErrNotFound = errors.New("store: not found")

// Store is the root data access interface. Drivers implement it and expose
// sub-repositories so that transactional work goes through WithTx.
type Store interface {
	Tokens() Tokens
	Credentials() Credentials

	ApplyMigrations() error

	// WithTx runs fn in a transaction, committing when fn returns nil.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error
	Ping(ctx context.Context) error
}

// Tx is the transaction-scoped view of a Store.
type Tx interface {
	Tokens() Tokens
	Credentials() Credentials
}

type Tokens interface {
	// UpsertToken replaces the token stored for t.Username.
	UpsertToken(ctx context.Context, t domain.StoredToken) error

	// GetToken returns the stored token regardless of expiry.
	GetToken(ctx context.Context, username string) (domain.StoredToken, error)

	// DeleteToken is a no-op when nothing is stored.
	DeleteToken(ctx context.Context, username string) error

	// DeleteExpiredTokens removes rows with expires_at <= now and returns how
	// many went.
	DeleteExpiredTokens(ctx context.Context, now time.Time) (int64, error)
}

type Credentials interface {
	UpsertCredential(ctx context.Context, c domain.SavedCredential) error
	GetCredential(ctx context.Context, username string) (domain.SavedCredential, error)
	DeleteCredential(ctx context.Context, username string) error

	// TouchLastLogin records a successful login for a remembered user.
	TouchLastLogin(ctx context.Context, username string, at time.Time) error
}
