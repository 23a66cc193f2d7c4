package sqlite

import (
	"database/sql"

	"github.com/bensonnlee/SRCode/internal/pass/store"
)

type txStore struct {
	q *queries
}

func newTx(tx *sql.Tx) *txStore {
	return &txStore{q: &queries{db: tx}}
}

func (t *txStore) Tokens() store.Tokens           { return &tokensRepo{q: t.q} }
func (t *txStore) Credentials() store.Credentials { return &credentialsRepo{q: t.q} }
