package types

import (
	"strings"

	"github.com/oklog/ulid/v2"
)

// ID prefixes for generated identifiers.
const (
	IDPrefixEnrollment = "enr"
	IDPrefixRequest    = "req"
)

// GenerateID returns a prefixed, lexicographically sortable unique id.
func GenerateID(prefix string) string {
	return prefix + "_" + strings.ToLower(ulid.Make().String())
}
