package sqlite

import (
	"context"
	"database/sql"
)

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type queries struct {
	db dbtx
}

const upsertToken = `
INSERT INTO fusion_tokens (username, token_encrypted, fingerprint, expires_at, created_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (username) DO UPDATE SET
    token_encrypted = excluded.token_encrypted,
    fingerprint     = excluded.fingerprint,
    expires_at      = excluded.expires_at,
    created_at      = excluded.created_at`

type tokenRow struct {
	Username       string
	TokenEncrypted []byte
	Fingerprint    string
	ExpiresAt      int64
	CreatedAt      int64
}

func (q *queries) UpsertToken(ctx context.Context, r tokenRow) error {
	_, err := q.db.ExecContext(ctx, upsertToken, r.Username, r.TokenEncrypted, r.Fingerprint, r.ExpiresAt, r.CreatedAt)
	return err
}

const getToken = `
SELECT username, token_encrypted, fingerprint, expires_at, created_at
FROM fusion_tokens WHERE username = ?`

func (q *queries) GetToken(ctx context.Context, username string) (tokenRow, error) {
	var r tokenRow
	err := q.db.QueryRowContext(ctx, getToken, username).Scan(
		&r.Username, &r.TokenEncrypted, &r.Fingerprint, &r.ExpiresAt, &r.CreatedAt,
	)
	return r, err
}

const deleteToken = `DELETE FROM fusion_tokens WHERE username = ?`

func (q *queries) DeleteToken(ctx context.Context, username string) error {
	_, err := q.db.ExecContext(ctx, deleteToken, username)
	return err
}

const deleteExpiredTokens = `DELETE FROM fusion_tokens WHERE expires_at <= ?`

func (q *queries) DeleteExpiredTokens(ctx context.Context, now int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteExpiredTokens, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const upsertCredential = `
INSERT INTO saved_credentials (username, password_encrypted, created_at, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT (username) DO UPDATE SET
    password_encrypted = excluded.password_encrypted,
    updated_at         = excluded.updated_at`

type credentialRow struct {
	Username          string
	PasswordEncrypted []byte
	CreatedAt         int64
	UpdatedAt         int64
	LastLoginAt       sql.NullInt64
}

func (q *queries) UpsertCredential(ctx context.Context, r credentialRow) error {
	_, err := q.db.ExecContext(ctx, upsertCredential, r.Username, r.PasswordEncrypted, r.CreatedAt, r.UpdatedAt)
	return err
}

const getCredential = `
SELECT username, password_encrypted, created_at, updated_at, last_login_at
FROM saved_credentials WHERE username = ?`

func (q *queries) GetCredential(ctx context.Context, username string) (credentialRow, error) {
	var r credentialRow
	err := q.db.QueryRowContext(ctx, getCredential, username).Scan(
		&r.Username, &r.PasswordEncrypted, &r.CreatedAt, &r.UpdatedAt, &r.LastLoginAt,
	)
	return r, err
}

const deleteCredential = `DELETE FROM saved_credentials WHERE username = ?`

func (q *queries) DeleteCredential(ctx context.Context, username string) error {
	_, err := q.db.ExecContext(ctx, deleteCredential, username)
	return err
}

const touchLastLogin = `UPDATE saved_credentials SET last_login_at = ? WHERE username = ?`

func (q *queries) TouchLastLogin(ctx context.Context, username string, at int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, touchLastLogin, at, username)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
