package id

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

var entropy ulid.MonotonicReader = &ulid.LockedMonotonicReader{
	MonotonicReader: ulid.Monotonic(rand.Reader, 0),
}

// New returns a ULID string. IDs minted by the same process are strictly
// increasing, so identity, session and mood keys stay sortable by creation
// time in their DynamoDB tables.
func New() string {
	return ulid.MustNew(ulid.Now(), entropy).String()
}
