package search

import (
	"context"
	"encoding/json"
	"sync/atomic"

	"go.uber.org/zap"

	"websearch/cache"
)

// twoTierCache fronts the persistent store with bounded in-process maps.
// The memory tier is always written synchronously; persistent writes are
// best-effort and never surface to the caller.
type twoTierCache struct {
	logger   *zap.Logger
	cfg      *EngineConfig
	searches *cache.Memory
	contents *cache.Memory
	store    func() cache.Store

	hits   atomic.Int64
	misses atomic.Int64
}

type searchEntry struct {
	results    []SearchResult
	hasContent bool
}

func newTwoTierCache(cfg *EngineConfig, store func() cache.Store, logger *zap.Logger) *twoTierCache {
	return &twoTierCache{
		logger:   logger,
		cfg:      cfg,
		searches: cache.NewMemory(cfg.SearchCacheSize, cfg.SearchMemoryTTL),
		contents: cache.NewMemory(cfg.URLCacheSize, 0),
		store:    store,
	}
}

// getSearch checks the memory tier, then the persistent tier. A
// persistent hit repopulates the memory tier before returning.
func (t *twoTierCache) getSearch(ctx context.Context, query string) ([]SearchResult, bool, bool) {
	key := cache.QueryDigest(query)

	if e, ok := t.searches.Get(key); ok {
		entry := e.Value.(searchEntry)
		t.hits.Add(1)
		return entry.results, entry.hasContent, true
	}

	if st := t.store(); st != nil {
		rec, err := st.GetSearch(ctx, key, t.cfg.SearchStoreTTL)
		if err != nil {
			t.logger.Debug("search cache read failed", zap.Error(err))
		}
		if rec != nil {
			var results []SearchResult
			if err := json.Unmarshal(rec.Results, &results); err == nil {
				t.searches.Put(key, searchEntry{results: results, hasContent: rec.HasContent}, rec.HasContent)
				t.hits.Add(1)
				return results, rec.HasContent, true
			}
			t.logger.Debug("stored search entry is corrupt", zap.String("key", key), zap.Error(err))
		}
	}

	t.misses.Add(1)
	return nil, false, false
}

func (t *twoTierCache) putSearch(ctx context.Context, query string, results []SearchResult, hasContent bool) {
	key := cache.QueryDigest(query)
	t.searches.Put(key, searchEntry{results: results, hasContent: hasContent}, hasContent)

	st := t.store()
	if st == nil {
		return
	}
	data, err := json.Marshal(results)
	if err != nil {
		return
	}
	if err := st.PutSearch(ctx, key, query, data, hasContent); err != nil {
		t.logger.Debug("search cache write failed", zap.Error(err))
	}
}

// GetContent and PutContent implement enrich.ContentCache. URL content
// lookups do not touch the hit/miss counters; those track the search
// surface only.
func (t *twoTierCache) GetContent(ctx context.Context, url string) (string, bool) {
	key := cache.URLDigest(url)

	if e, ok := t.contents.Get(key); ok {
		return e.Value.(string), true
	}

	if st := t.store(); st != nil {
		content, ok, err := st.GetContent(ctx, key, t.cfg.ContentStoreTTL)
		if err != nil {
			t.logger.Debug("url cache read failed", zap.Error(err))
		}
		if ok {
			t.contents.Put(key, content, true)
			return content, true
		}
	}
	return "", false
}

func (t *twoTierCache) PutContent(ctx context.Context, url, content string) {
	key := cache.URLDigest(url)
	t.contents.Put(key, content, true)

	st := t.store()
	if st == nil {
		return
	}
	if err := st.PutContent(ctx, key, url, content); err != nil {
		t.logger.Debug("url cache write failed", zap.Error(err))
	}
}

// clear empties both memory tiers and sweeps expired persistent rows.
// The hit/miss counters are cumulative and survive.
func (t *twoTierCache) clear(ctx context.Context) {
	t.searches.Clear()
	t.contents.Clear()

	st := t.store()
	if st == nil {
		return
	}
	if err := st.Sweep(ctx, t.cfg.SearchRetention, t.cfg.ContentRetention); err != nil {
		t.logger.Error("cache sweep failed", zap.Error(err))
	}
}
