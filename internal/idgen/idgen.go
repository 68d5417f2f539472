// Package idgen produces the opaque tokens used in public share links.
package idgen

import (
	"encoding/base64"

	"github.com/google/uuid"
)

// New returns a 22-character URL-safe token carrying the 122 random bits of a v4 UUID.
// Uniqueness rests on that entropy; callers do not retry on collision.
func New() string {
	id := uuid.New()
	return base64.RawURLEncoding.EncodeToString(id[:])
}
