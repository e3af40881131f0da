package search

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"websearch/cache"
	"websearch/config"
	"websearch/enrich"
	"websearch/pkg/boltstore"
	"websearch/pkg/httpclient"
	"websearch/pkg/postgres"
)

const (
	defaultSearchLimit = 6
	newsLimit          = 8
	defaultNewsQuery   = "breaking news today"
)

// Engine composes the two-tier cache, the provider client and the
// enrichment pipeline behind the Searcher contract. There is no fatal
// error path inside it: every failure resolves to an empty or partial
// result, or a degraded no-persistence mode.
type Engine struct {
	cfg        *EngineConfig
	logger     *zap.Logger
	provider   Provider
	pools      *resourcePools
	cache      *twoTierCache
	pipeline   *enrich.Pipeline
	categories map[string]string

	apiCalls atomic.Int64

	// baseCtx parents all detached work so shutdown can cancel it.
	baseCtx context.Context
	cancel  context.CancelFunc
	tasks   sync.WaitGroup

	taskMu      sync.Mutex
	taskCancels map[string]context.CancelFunc
}

var _ Searcher = (*Engine)(nil)

func New(cfg *config.Config, categories map[string]string, logger *zap.Logger) *Engine {
	return newEngine(cfg, DefaultEngineConfig(), categories, logger)
}

func newEngine(cfg *config.Config, ec *EngineConfig, categories map[string]string, logger *zap.Logger) *Engine {
	httpCfg := httpclient.Config{
		MaxConns:        ec.MaxConns,
		MaxConnsPerHost: ec.MaxConnsPerHost,
		KeepAlive:       ec.KeepAlive,
		DialTimeout:     ec.ConnectTimeout,
		ReadTimeout:     ec.ReadTimeout,
		RequestTimeout:  ec.RequestTimeout,
		ProxyURL:        cfg.ProxyURL,
	}

	var newStore func() (cache.Store, error)
	switch {
	case cfg.DatabaseURL != "":
		dbURL, migrationsURL := cfg.DatabaseURL, cfg.MigrationsURL
		newStore = func() (cache.Store, error) {
			return postgres.New(context.Background(), dbURL, migrationsURL)
		}
	case cfg.BoltPath != "":
		path := cfg.BoltPath
		newStore = func() (cache.Store, error) {
			return boltstore.Open(path)
		}
	}

	pools := newResourcePools(httpCfg, newStore, logger)
	tiered := newTwoTierCache(ec, pools.cacheStore, logger)

	if categories == nil {
		categories = config.DefaultCategoryQueries()
	}

	baseCtx, cancel := context.WithCancel(context.Background())
	return &Engine{
		cfg:         ec,
		logger:      logger,
		provider:    NewSerperClient(cfg.SerperAPIKey, pools.httpClient, ec.APITimeout, logger),
		pools:       pools,
		cache:       tiered,
		pipeline:    enrich.NewPipeline(logger, pools.httpClient, tiered, ec.MaxConcurrentFetches, ec.ValidatorCacheSize),
		categories:  categories,
		baseCtx:     baseCtx,
		cancel:      cancel,
		taskCancels: make(map[string]context.CancelFunc),
	}
}

// Search runs the cache-check → provider-call → enrichment cycle. It
// never returns an error; total failure is an empty list.
func (e *Engine) Search(ctx context.Context, query string, limit int, deepSearch bool) []SearchResult {
	start := time.Now()
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	results, hasContent, found := e.cache.getSearch(ctx, query)
	if found {
		e.logger.Info("cache hit",
			zap.String("query", query),
			zap.Bool("has_content", hasContent))
		if !hasContent && deepSearch {
			e.scheduleDetached(query, results)
		}
		return clampResults(results, limit)
	}

	e.logger.Info("fresh search", zap.String("query", query), zap.Int("limit", limit))
	e.apiCalls.Add(1)
	results = e.provider.Search(ctx, query, limit)
	if len(results) == 0 {
		return []SearchResult{}
	}

	// Cache shallow before any enrichment is scheduled: a crash mid
	// enrichment must still leave a valid cached entry, and a retry
	// must not repeat the provider call.
	e.cache.putSearch(ctx, query, results, false)

	if !deepSearch {
		e.logSearchDone(query, results, start)
		return results
	}

	enriched := e.enrichInline(ctx, query, results)
	e.logSearchDone(query, enriched, start)
	return enriched
}

// enrichInline attempts enrichment under the fast deadline. When the
// deadline passes, the in-flight work is not cancelled: it is handed to
// a detached watcher so already-started fetches are not wasted.
func (e *Engine) enrichInline(ctx context.Context, query string, results []SearchResult) []SearchResult {
	workCtx, cancel := context.WithTimeout(e.baseCtx, e.cfg.BackgroundTimeout)

	out := make(chan []SearchResult, 1)
	e.tasks.Add(1)
	go func() {
		defer e.tasks.Done()
		out <- e.enrich(workCtx, results)
	}()

	timer := time.NewTimer(e.cfg.FastTimeout)
	defer timer.Stop()

	select {
	case enriched := <-out:
		cancel()
		if n := countWithContent(enriched); n > 0 {
			e.cache.putSearch(ctx, query, enriched, true)
			e.logger.Info("fast extraction succeeded",
				zap.Int("with_content", n), zap.Int("total", len(enriched)))
			return enriched
		}
		// Nothing extracted in time; let a background pass try again.
		e.scheduleDetached(query, results)
		return results
	case <-timer.C:
		e.watchDetached(query, out, cancel)
		return results
	}
}

// watchDetached adopts an in-flight enrichment whose caller stopped
// waiting, persisting the outcome when it lands.
func (e *Engine) watchDetached(query string, out <-chan []SearchResult, cancel context.CancelFunc) {
	id := uuid.NewString()
	e.logger.Info("fast deadline missed, continuing in background",
		zap.String("task", id), zap.String("query", query))
	e.trackTask(id, cancel)

	e.tasks.Add(1)
	go func() {
		defer e.tasks.Done()
		defer e.untrackTask(id)
		defer cancel()

		enriched := <-out
		if n := countWithContent(enriched); n > 0 {
			e.cache.putSearch(e.baseCtx, query, enriched, true)
			e.logger.Info("background extraction completed",
				zap.String("task", id),
				zap.Int("with_content", n), zap.Int("total", len(enriched)))
		}
	}()
}

// scheduleDetached runs a full enrichment pass in the background and
// upserts the result when at least one result gained content.
func (e *Engine) scheduleDetached(query string, results []SearchResult) {
	workCtx, cancel := context.WithTimeout(e.baseCtx, e.cfg.BackgroundTimeout)
	id := uuid.NewString()
	e.trackTask(id, cancel)

	e.tasks.Add(1)
	go func() {
		defer e.tasks.Done()
		defer e.untrackTask(id)
		defer cancel()

		e.logger.Info("background extraction started",
			zap.String("task", id), zap.Int("results", len(results)))
		enriched := e.enrich(workCtx, results)
		if n := countWithContent(enriched); n > 0 {
			e.cache.putSearch(workCtx, query, enriched, true)
			e.logger.Info("background extraction completed",
				zap.String("task", id),
				zap.Int("with_content", n), zap.Int("total", len(enriched)))
		}
	}()
}

// enrich fans out over the result URLs and fills FullContent in a copy
// of the input. Per-URL failures leave that result's content empty.
func (e *Engine) enrich(ctx context.Context, results []SearchResult) []SearchResult {
	urls := make([]string, len(results))
	for i, r := range results {
		urls[i] = r.Link
	}
	contents := e.pipeline.ContentFor(ctx, urls)

	enriched := make([]SearchResult, len(results))
	for i, r := range results {
		r.FullContent = contents[i]
		enriched[i] = r
	}
	return enriched
}

// News issues a category news query. News results bypass both cache
// tiers and enrichment.
func (e *Engine) News(ctx context.Context, category string) []NewsItem {
	query, ok := e.categories[category]
	if !ok {
		query = defaultNewsQuery
	}

	items := e.provider.News(ctx, query, newsLimit)
	e.logger.Info("news search",
		zap.String("category", category),
		zap.Int("results", len(items)))
	if items == nil {
		return []NewsItem{}
	}
	return items
}

func (e *Engine) Stats() Stats {
	return Stats{
		CacheHits:          e.cache.hits.Load(),
		CacheMisses:        e.cache.misses.Load(),
		APICalls:           e.apiCalls.Load(),
		ContentExtractions: e.pipeline.Extractions(),
	}
}

// ClearCache empties both tiers' volatile state, the negative URL cache
// and the validator memo, and sweeps expired persistent rows. Counters
// are untouched. Idempotent.
func (e *Engine) ClearCache(ctx context.Context) {
	e.cache.clear(ctx)
	e.pipeline.Reset()
	e.logger.Info("cache cleared")
}

// Close cancels tracked background work, waits for it to drain, and
// releases the shared pools.
func (e *Engine) Close() {
	e.taskMu.Lock()
	for _, cancel := range e.taskCancels {
		cancel()
	}
	e.taskMu.Unlock()

	e.cancel()
	e.tasks.Wait()
	e.pools.close()
}

func (e *Engine) trackTask(id string, cancel context.CancelFunc) {
	e.taskMu.Lock()
	e.taskCancels[id] = cancel
	e.taskMu.Unlock()
}

func (e *Engine) untrackTask(id string) {
	e.taskMu.Lock()
	delete(e.taskCancels, id)
	e.taskMu.Unlock()
}

func (e *Engine) logSearchDone(query string, results []SearchResult, start time.Time) {
	e.logger.Info("search completed",
		zap.String("query", query),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("results", len(results)),
		zap.Int("with_content", countWithContent(results)))
}

func clampResults(results []SearchResult, limit int) []SearchResult {
	if len(results) > limit {
		return results[:limit]
	}
	return results
}

func countWithContent(results []SearchResult) int {
	n := 0
	for _, r := range results {
		if strings.TrimSpace(r.FullContent) != "" {
			n++
		}
	}
	return n
}
