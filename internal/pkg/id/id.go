// Package id mints identifiers for reminder and medication records.
package id

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

// New returns a fresh ULID string. ULIDs sort lexicographically by creation
// time, so reminder listings come back in schedule-entry order without a
// separate sort attribute, and they are safe as DynamoDB partition keys.
func New() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}
