package search

import "context"

// SearchResult is one ranked web result. FullContent starts empty and
// is filled in by the enrichment pipeline; Link is the identity for
// per-URL content caching.
type SearchResult struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Snippet     string `json:"snippet"`
	FullContent string `json:"full_content"`
}

// NewsItem is one ranked news result.
type NewsItem struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Snippet     string `json:"snippet"`
	Date        string `json:"date"`
	Source      string `json:"source"`
	FullContent string `json:"full_content"`
}

// Stats is a snapshot of the engine's process-lifetime counters. The
// counters are cumulative and reset only on process restart.
type Stats struct {
	CacheHits          int64 `json:"cache_hits"`
	CacheMisses        int64 `json:"cache_misses"`
	APICalls           int64 `json:"api_calls"`
	ContentExtractions int64 `json:"content_extractions"`
}

// Searcher is the contract the engine exposes to its callers. Search
// and News never fail: total failure yields an empty list.
type Searcher interface {
	Search(ctx context.Context, query string, limit int, deepSearch bool) []SearchResult
	News(ctx context.Context, category string) []NewsItem
	Stats() Stats
	ClearCache(ctx context.Context)
}

// Provider issues the remote search and news queries. Implementations
// make exactly one outbound call per invocation and report failure as an
// empty list.
type Provider interface {
	Search(ctx context.Context, query string, limit int) []SearchResult
	News(ctx context.Context, query string, limit int) []NewsItem
}
