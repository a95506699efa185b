package models

import "time"

// Exposure is the visibility level of a dump.
type Exposure string

const (
	ExposurePublic   Exposure = "PUBLIC"
	ExposureUnlisted Exposure = "UNLISTED"
	ExposurePrivate  Exposure = "PRIVATE"
)

// Valid reports whether e is one of the known exposure levels.
func (e Exposure) Valid() bool {
	switch e {
	case ExposurePublic, ExposureUnlisted, ExposurePrivate:
		return true
	}
	return false
}

// MaxTitleLength is the longest title a dump may carry. Longer input is
// truncated, not rejected.
const MaxTitleLength = 250

// Dump represents a stored text snippet.
type Dump struct {
	ID       int64    `json:"id"`
	PublicID string   `json:"publicId"`
	Username string   `json:"username"` // empty string denotes anonymous
	Title    string   `json:"title"`
	Contents string   `json:"contents"`
	Exposure Exposure `json:"exposure"`
	Type     string   `json:"type"`
	Views    int64    `json:"views"`
	// Expiration is nil for dumps that never expire.
	Expiration *time.Time `json:"expiration,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// Expired reports whether the dump has an expiration and it has passed.
// The boundary is inclusive: a dump expiring exactly at now is expired.
func (d *Dump) Expired(now time.Time) bool {
	return d.Expiration != nil && !d.Expiration.After(now)
}
