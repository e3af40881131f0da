package search

import (
	"net/http"
	"sync"

	"go.uber.org/zap"

	"websearch/cache"
	"websearch/pkg/httpclient"
)

// resourcePools lazily constructs the process-wide outbound HTTP client
// and persistent store. Construction is guarded once; steady-state
// access never takes a lock. A failed store construction latches: the
// engine runs with in-process caching only for the rest of its life,
// because persistence is an optimization, not a correctness dependency.
type resourcePools struct {
	logger  *zap.Logger
	httpCfg httpclient.Config

	// newStore is nil when no persistent tier is configured.
	newStore func() (cache.Store, error)

	clientOnce sync.Once
	client     *http.Client

	storeOnce sync.Once
	store     cache.Store
}

func newResourcePools(httpCfg httpclient.Config, newStore func() (cache.Store, error), logger *zap.Logger) *resourcePools {
	return &resourcePools{
		logger:   logger,
		httpCfg:  httpCfg,
		newStore: newStore,
	}
}

func (p *resourcePools) httpClient() *http.Client {
	p.clientOnce.Do(func() {
		client, err := httpclient.New(p.httpCfg)
		if err != nil {
			p.logger.Error("failed to build http client, using default", zap.Error(err))
			client = http.DefaultClient
		}
		p.client = client
	})
	return p.client
}

// cacheStore returns the persistent tier, or nil when none is
// configured or construction failed.
func (p *resourcePools) cacheStore() cache.Store {
	p.storeOnce.Do(func() {
		if p.newStore == nil {
			return
		}
		store, err := p.newStore()
		if err != nil {
			p.logger.Error("persistent cache unavailable, continuing without it", zap.Error(err))
			return
		}
		p.store = store
	})
	return p.store
}

// close shuts down whatever was actually built.
func (p *resourcePools) close() {
	if p.store != nil {
		if err := p.store.Close(); err != nil {
			p.logger.Warn("store close failed", zap.Error(err))
		}
		p.store = nil
	}
	if p.client != nil {
		p.client.CloseIdleConnections()
	}
}
