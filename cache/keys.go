package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

const digestLen = 16

// QueryDigest returns the cache key for a search query. Queries are
// case-folded and trimmed first so equivalent queries share one entry.
func QueryDigest(query string) string {
	return digest(strings.ToLower(strings.TrimSpace(query)))
}

// URLDigest returns the cache key for a URL. The raw bytes are the
// identity; no normalization is applied.
func URLDigest(url string) string {
	return digest(url)
}

func digest(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:digestLen]
}
