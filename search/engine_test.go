package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"websearch/config"
)

const enrichablePage = `<html><body><article>
	<p>First paragraph of the test page with enough characters to qualify.</p>
	<p>Second paragraph of the test page with enough characters to qualify.</p>
</article></body></html>`

type fakeProvider struct {
	mu        sync.Mutex
	calls     int
	lastQuery string
	results   []SearchResult
	news      []NewsItem
}

func (f *fakeProvider) Search(_ context.Context, query string, limit int) []SearchResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastQuery = query
	out := make([]SearchResult, len(f.results))
	copy(out, f.results)
	return out
}

func (f *fakeProvider) News(_ context.Context, query string, limit int) []NewsItem {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastQuery = query
	out := make([]NewsItem, len(f.news))
	copy(out, f.news)
	return out
}

func (f *fakeProvider) searchCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newTestEngine(t *testing.T, ec *EngineConfig, provider Provider) *Engine {
	t.Helper()
	if ec == nil {
		ec = DefaultEngineConfig()
	}
	e := newEngine(&config.Config{SerperAPIKey: "test"}, ec, nil, zap.NewNop())
	e.provider = provider
	t.Cleanup(e.Close)
	return e
}

func newContentServer(t *testing.T, delay time.Duration) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if delay > 0 {
			time.Sleep(delay)
		}
		switch r.URL.Path {
		case "/missing":
			http.NotFound(w, r)
		case "/thin":
			w.Write([]byte("<html><body><p>hi</p></body></html>"))
		default:
			w.Write([]byte(enrichablePage))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSearchShallowMissThenHit(t *testing.T) {
	provider := &fakeProvider{results: []SearchResult{
		{Title: "A", Link: "https://a.example.com", Snippet: "sa"},
		{Title: "B", Link: "https://b.example.com", Snippet: "sb"},
		{Title: "C", Link: "https://c.example.com", Snippet: "sc"},
	}}
	e := newTestEngine(t, nil, provider)

	results := e.Search(context.Background(), "rust ownership", 3, false)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for _, r := range results {
		if r.FullContent != "" {
			t.Errorf("expected shallow result, got content for %s", r.Link)
		}
	}

	again := e.Search(context.Background(), "Rust Ownership", 3, false)
	if len(again) != 3 {
		t.Fatalf("expected cached 3 results, got %d", len(again))
	}

	if got := provider.searchCalls(); got != 1 {
		t.Errorf("expected exactly 1 provider call, got %d", got)
	}
	stats := e.Stats()
	if stats.APICalls != 1 || stats.CacheMisses != 1 || stats.CacheHits != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestSearchShallowHitSchedulesDetachedEnrichment(t *testing.T) {
	srv := newContentServer(t, 0)
	provider := &fakeProvider{results: []SearchResult{
		{Title: "A", Link: srv.URL + "/a", Snippet: "sa"},
		{Title: "B", Link: srv.URL + "/b", Snippet: "sb"},
	}}
	e := newTestEngine(t, nil, provider)

	// Seed a shallow cache entry.
	e.Search(context.Background(), "go channels", 2, false)

	// Shallow hit with enrichment requested: returns immediately with
	// the shallow set, background work scheduled.
	results := e.Search(context.Background(), "go channels", 2, true)
	for _, r := range results {
		if r.FullContent != "" {
			t.Errorf("expected shallow return, got content for %s", r.Link)
		}
	}
	if got := provider.searchCalls(); got != 1 {
		t.Errorf("expected no extra provider calls, got %d", got)
	}

	e.tasks.Wait()

	// Once background work lands, the cached entry is rich and stays so.
	enriched := e.Search(context.Background(), "go channels", 2, false)
	withContent := countWithContent(enriched)
	if withContent != 2 {
		t.Errorf("expected 2 enriched results, got %d", withContent)
	}
	if got := provider.searchCalls(); got != 1 {
		t.Errorf("expected cache to serve the enriched set, provider calls %d", got)
	}
}

func TestSearchInlineEnrichmentPartialFailure(t *testing.T) {
	srv := newContentServer(t, 0)
	provider := &fakeProvider{results: []SearchResult{
		{Title: "Good", Link: srv.URL + "/good", Snippet: "s"},
		{Title: "Gone", Link: srv.URL + "/missing", Snippet: "s"},
		{Title: "Thin", Link: srv.URL + "/thin", Snippet: "s"},
	}}
	e := newTestEngine(t, nil, provider)

	results := e.Search(context.Background(), "partial failure", 3, true)

	if len(results) != 3 {
		t.Fatalf("expected all 3 results back, got %d", len(results))
	}
	if got := countWithContent(results); got != 1 {
		t.Errorf("expected exactly 1 enriched result, got %d", got)
	}

	// The partially enriched set is cached as rich.
	cached := e.Search(context.Background(), "partial failure", 3, false)
	if got := countWithContent(cached); got != 1 {
		t.Errorf("expected cached rich entry, got %d with content", got)
	}
	if got := provider.searchCalls(); got != 1 {
		t.Errorf("expected 1 provider call, got %d", got)
	}
}

func TestSearchInlineDeadlineFallsBackToBackground(t *testing.T) {
	srv := newContentServer(t, 300*time.Millisecond)
	provider := &fakeProvider{results: []SearchResult{
		{Title: "Slow", Link: srv.URL + "/slow", Snippet: "s"},
	}}

	ec := DefaultEngineConfig()
	ec.FastTimeout = 50 * time.Millisecond
	ec.BackgroundTimeout = 2 * time.Second
	e := newTestEngine(t, ec, provider)

	results := e.Search(context.Background(), "slow page", 1, true)
	if countWithContent(results) != 0 {
		t.Error("expected shallow return when the fast deadline is missed")
	}

	e.tasks.Wait()

	later := e.Search(context.Background(), "slow page", 1, false)
	if countWithContent(later) != 1 {
		t.Error("expected background completion to upsert the enriched set")
	}
	if got := provider.searchCalls(); got != 1 {
		t.Errorf("expected 1 provider call, got %d", got)
	}
}

func TestSearchEmptyProviderResultNotCached(t *testing.T) {
	provider := &fakeProvider{}
	e := newTestEngine(t, nil, provider)

	if got := e.Search(context.Background(), "nothing", 3, false); len(got) != 0 {
		t.Fatalf("expected empty result, got %d", len(got))
	}
	e.Search(context.Background(), "nothing", 3, false)

	if got := provider.searchCalls(); got != 2 {
		t.Errorf("expected empty results to skip the cache, provider calls %d", got)
	}
}

func TestClearCacheKeepsCounters(t *testing.T) {
	provider := &fakeProvider{results: []SearchResult{
		{Title: "A", Link: "https://a.example.com", Snippet: "sa"},
	}}
	e := newTestEngine(t, nil, provider)

	e.Search(context.Background(), "kept counters", 1, false)
	e.Search(context.Background(), "kept counters", 1, false)
	before := e.Stats()

	e.ClearCache(context.Background())

	after := e.Stats()
	if after != before {
		t.Errorf("expected counters to survive clear: before %+v after %+v", before, after)
	}

	// The entry itself is gone: next search is a fresh provider call.
	e.Search(context.Background(), "kept counters", 1, false)
	if got := provider.searchCalls(); got != 2 {
		t.Errorf("expected fresh provider call after clear, got %d", got)
	}
}

func TestSearchHitClampsToLimit(t *testing.T) {
	provider := &fakeProvider{results: []SearchResult{
		{Title: "A", Link: "https://a.example.com"},
		{Title: "B", Link: "https://b.example.com"},
		{Title: "C", Link: "https://c.example.com"},
	}}
	e := newTestEngine(t, nil, provider)

	e.Search(context.Background(), "clamp", 3, false)
	got := e.Search(context.Background(), "clamp", 2, false)
	if len(got) != 2 {
		t.Errorf("expected 2 results on clamped hit, got %d", len(got))
	}
}

func TestNewsCategoryMapping(t *testing.T) {
	testCases := []struct {
		category string
		query    string
	}{
		{"technology", "latest tech AI news today"},
		{"health", "health news today"},
		{"unknown-category", "breaking news today"},
		{"", "breaking news today"},
	}

	for _, tc := range testCases {
		t.Run(tc.category, func(t *testing.T) {
			provider := &fakeProvider{news: []NewsItem{{Title: "h", Link: "https://n.example.com"}}}
			e := newTestEngine(t, nil, provider)

			items := e.News(context.Background(), tc.category)
			if len(items) != 1 {
				t.Fatalf("expected 1 item, got %d", len(items))
			}
			provider.mu.Lock()
			got := provider.lastQuery
			provider.mu.Unlock()
			if got != tc.query {
				t.Errorf("category %q: expected query %q, got %q", tc.category, tc.query, got)
			}
		})
	}
}
