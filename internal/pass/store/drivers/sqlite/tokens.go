package sqlite

import (
	"context"
	"time"

	"github.com/bensonnlee/SRCode/internal/pass/domain"
)

type tokensRepo struct {
	q *queries
}

func (r *tokensRepo) UpsertToken(ctx context.Context, t domain.StoredToken) error {
	return r.q.UpsertToken(ctx, tokenRow{
		Username:       t.Username,
		TokenEncrypted: t.TokenEncrypted,
		Fingerprint:    t.Fingerprint,
		ExpiresAt:      toMillis(t.ExpiresAt),
		CreatedAt:      toMillis(t.CreatedAt),
	})
}

func (r *tokensRepo) GetToken(ctx context.Context, username string) (domain.StoredToken, error) {
	row, err := r.q.GetToken(ctx, username)
	if err != nil {
		return domain.StoredToken{}, mapNotFound(err)
	}
	return domain.StoredToken{
		Username:       row.Username,
		TokenEncrypted: row.TokenEncrypted,
		Fingerprint:    row.Fingerprint,
		ExpiresAt:      fromMillis(row.ExpiresAt),
		CreatedAt:      fromMillis(row.CreatedAt),
	}, nil
}

func (r *tokensRepo) DeleteToken(ctx context.Context, username string) error {
	return r.q.DeleteToken(ctx, username)
}

func (r *tokensRepo) DeleteExpiredTokens(ctx context.Context, now time.Time) (int64, error) {
	return r.q.DeleteExpiredTokens(ctx, toMillis(now))
}
