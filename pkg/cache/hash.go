package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Hash returns the hex SHA-256 of data. File cache paths are derived from
// it so arbitrary keys map to safe file names.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Key builds a cache key from a namespace and parts joined by colons:
// Key("release", "requests", "2.31.0") is "release:requests:2.31.0".
func Key(namespace string, parts ...string) string {
	return strings.Join(append([]string{namespace}, parts...), ":")
}
