// Package id provides unique ID generation utilities.
//
// IDs are ULIDs: 26 characters, Crockford base32, lexicographically sortable
// by creation time. Document, employee and request identifiers all use them,
// so listing rows ordered by ID returns them in creation order.
//
// Usage:
//
//	docID := id.NewULID()             // e.g., "01ARZ3NDEKTSV4RRFFQ69G5FAV"
//	reqID := id.NewWithPrefix("req") // e.g., "req_01ARZ3NDEKTSV4RRFFQ69G5FAV"
package id

import (
	"crypto/rand"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// ErrInvalidULID is returned when a ULID string is invalid.
var ErrInvalidULID = errors.New("invalid ULID format")

var (
	mu      sync.Mutex
	entropy = ulid.Monotonic(rand.Reader, 0)
)

// NewULID generates a new ULID string. IDs generated within the same
// millisecond are strictly increasing.
func NewULID() string {
	mu.Lock()
	defer mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// NewWithPrefix generates a ULID prefixed with "<prefix>_".
func NewWithPrefix(prefix string) string {
	if prefix == "" {
		return NewULID()
	}
	return prefix + "_" + NewULID()
}

// ParseULID validates s and returns its creation time.
func ParseULID(s string) (time.Time, error) {
	if i := strings.LastIndexByte(s, '_'); i >= 0 {
		s = s[i+1:]
	}
	u, err := ulid.ParseStrict(s)
	if err != nil {
		return time.Time{}, ErrInvalidULID
	}
	return ulid.Time(u.Time()), nil
}
