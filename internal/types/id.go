package types

import (
	"crypto/rand"
	"strings"

	"github.com/oklog/ulid/v2"
)

const (
	UUID_PREFIX_REQUEST        = "req"
	UUID_PREFIX_RECONCILIATION = "sync"
)

// GenerateUUID returns a lowercase ULID.
func GenerateUUID() string {
	return strings.ToLower(ulid.MustNew(ulid.Now(), rand.Reader).String())
}

// GenerateUUIDWithPrefix returns a lowercase ULID with the given prefix,
// e.g. sync_01hgw3...
func GenerateUUIDWithPrefix(prefix string) string {
	if prefix == "" {
		return GenerateUUID()
	}
	return prefix + "_" + GenerateUUID()
}
