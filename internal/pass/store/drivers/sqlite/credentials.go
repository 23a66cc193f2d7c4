package sqlite

import (
	"context"
	"time"

	"github.com/bensonnlee/SRCode/internal/pass/domain"
	"github.com/bensonnlee/SRCode/internal/pass/store"
)

type credentialsRepo struct {
	q *queries
}

// UpsertCredential keeps the original created_at on update.
func (r *credentialsRepo) UpsertCredential(ctx context.Context, c domain.SavedCredential) error {
	return r.q.UpsertCredential(ctx, credentialRow{
		Username:          c.Username,
		PasswordEncrypted: c.PasswordEncrypted,
		CreatedAt:         toMillis(c.CreatedAt),
		UpdatedAt:         toMillis(c.UpdatedAt),
	})
}

func (r *credentialsRepo) GetCredential(ctx context.Context, username string) (domain.SavedCredential, error) {
	row, err := r.q.GetCredential(ctx, username)
	if err != nil {
		return domain.SavedCredential{}, mapNotFound(err)
	}
	return domain.SavedCredential{
		Username:          row.Username,
		PasswordEncrypted: row.PasswordEncrypted,
		CreatedAt:         fromMillis(row.CreatedAt),
		UpdatedAt:         fromMillis(row.UpdatedAt),
		LastLoginAt:       mapNullMillis(row.LastLoginAt),
	}, nil
}

func (r *credentialsRepo) DeleteCredential(ctx context.Context, username string) error {
	return r.q.DeleteCredential(ctx, username)
}

func (r *credentialsRepo) TouchLastLogin(ctx context.Context, username string, at time.Time) error {
	n, err := r.q.TouchLastLogin(ctx, username, toMillis(at))
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
