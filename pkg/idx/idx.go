// Package idx generates the ULID identifiers used for login attempts, request
// ids and stored rows.
package idx

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

type ID string

// Zero is the empty ID.
const Zero ID = ""

var (
	mu      sync.Mutex
	entropy = ulid.Monotonic(rand.Reader, 0)
)

// New returns a lexicographically sortable ID for the current UTC time. IDs
// minted within the same millisecond still sort in creation order.
func New() ID {
	mu.Lock()
	defer mu.Unlock()

	return ID(ulid.MustNew(ulid.Timestamp(time.Now().UTC()), entropy).String())
}

func (id ID) IsZero() bool   { return id == Zero }
func (id ID) String() string { return string(id) }
