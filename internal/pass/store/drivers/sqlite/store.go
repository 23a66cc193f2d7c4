package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/bensonnlee/SRCode/internal/pass/store"
	_ "modernc.org/sqlite"
)

type Store struct {
	db  *sql.DB
	q   *queries
	dsn string
}

var _ store.Store = (*Store)(nil)

// NewStore opens the database at dsn. A single connection is used: sqlite
// serialises writers anyway and ":memory:" databases are per-connection.
func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(context.Background(), `PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{
		db:  db,
		q:   &queries{db: db},
		dsn: dsn,
	}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// WithTx executes fn within a transaction, automatically handling commit/rollback.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		_ = tx.Rollback() // safe to call even after commit
	}()

	if err := fn(newTx(tx)); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *Store) Tokens() store.Tokens           { return &tokensRepo{q: s.q} }
func (s *Store) Credentials() store.Credentials { return &credentialsRepo{q: s.q} }

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

func toMillis(t time.Time) int64 { return t.UnixMilli() }

func fromMillis(ms int64) time.Time { return time.UnixMilli(ms).UTC() }

func mapNullMillis(n sql.NullInt64) *time.Time {
	if !n.Valid {
		return nil
	}
	t := fromMillis(n.Int64)
	return &t
}
