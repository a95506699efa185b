// Package publicid generates the short random identifiers dumps are
// addressed by.
package publicid

import (
	"crypto/rand"

	"github.com/atkinsj/dumpbin/internal/models"
)

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// Length of a public ID.
const Length = 6

// maxAttempts bounds the collision-retry loop. With a 62^6 keyspace the
// ceiling is unreachable in practice; it exists so a broken exists check
// surfaces as ErrAllocationExhausted instead of a hung request.
const maxAttempts = 100

// ExistsFunc reports whether a candidate ID is already taken.
type ExistsFunc func(id string) (bool, error)

// Allocator draws candidate IDs until the exists check reports no collision.
// The check is advisory: the store must still enforce uniqueness at insert
// time, and callers retry allocation on a reported conflict.
type Allocator struct{}

// New creates an Allocator.
func New() *Allocator {
	return &Allocator{}
}

// Allocate returns a fresh public ID not reported taken by exists.
func (a *Allocator) Allocate(exists ExistsFunc) (string, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		id, err := draw()
		if err != nil {
			return "", err
		}

		taken, err := exists(id)
		if err != nil {
			return "", err
		}
		if !taken {
			return id, nil
		}
	}
	return "", models.ErrAllocationExhausted
}

// draw produces one candidate: Length characters drawn independently and
// uniformly from the alphabet.
func draw() (string, error) {
	// 248 is the largest multiple of len(alphabet) below 256; bytes at or
	// above it are rejected to keep each character uniform.
	const limit = 248

	id := make([]byte, 0, Length)
	var buf [16]byte
	for {
		if _, err := rand.Read(buf[:]); err != nil {
			return "", err
		}
		for _, b := range buf {
			if b >= limit {
				continue
			}
			id = append(id, alphabet[int(b)%len(alphabet)])
			if len(id) == Length {
				return string(id), nil
			}
		}
	}
}
