package addon

import (
	"strings"

	"github.com/google/uuid"
)

// ValidUUID reports whether s is a canonical RFC 4122 UUID of version 1-5.
// uuid.Parse also accepts urn and braced forms; those are rejected here
// because the runtime only reads the 36-character form.
func ValidUUID(s string) bool {
	if len(s) != 36 {
		return false
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return false
	}
	if u.Variant() != uuid.RFC4122 {
		return false
	}
	v := u.Version()
	return v >= 1 && v <= 5
}

// SameUUID compares two UUID strings case-insensitively.
func SameUUID(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
