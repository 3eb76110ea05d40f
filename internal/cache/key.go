package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// maxKeyLength is the longest key stored verbatim by the Redis backend.
const maxKeyLength = 200

// PageKey builds the page cache key of a request: its absolute URL,
// including the raw query string, and the request format.
func PageKey(scheme, host, requestURI, format string) string {
	return scheme + "://" + host + requestURI + "|" + format
}

// HashKey hashes a key to a fixed length.
func HashKey(key string) string {
	hash := sha256.Sum256([]byte(key))
	return hex.EncodeToString(hash[:])
}
