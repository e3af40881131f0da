package cache

import (
	"context"
	"time"
)

// SearchRecord is a persisted search-result set. Results hold the
// serialized result list exactly as the caller stored it.
type SearchRecord struct {
	Results    []byte
	HasContent bool
}

// Store is the persistent cache tier. Implementations must treat rows
// older than maxAge as absent rather than returning stale hits, and must
// overwrite on conflict: entries are idempotent re-derivations keyed by
// digest, never deltas.
type Store interface {
	// GetSearch returns the stored result set for a query digest, or
	// (nil, nil) when the row is absent or expired.
	GetSearch(ctx context.Context, key string, maxAge time.Duration) (*SearchRecord, error)
	PutSearch(ctx context.Context, key, query string, results []byte, hasContent bool) error

	// GetContent returns the extracted text for a URL digest. The bool
	// reports whether a live row was found.
	GetContent(ctx context.Context, key string, maxAge time.Duration) (string, bool, error)
	PutContent(ctx context.Context, key, url, content string) error

	// Sweep deletes rows older than the retention horizon for each
	// entry class.
	Sweep(ctx context.Context, searchRetention, contentRetention time.Duration) error

	Close() error
}
