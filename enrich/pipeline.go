package enrich

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// ContentCache is the URL→excerpt cache consulted before any fetch goes
// on the wire. Writes are best-effort.
type ContentCache interface {
	GetContent(ctx context.Context, url string) (string, bool)
	PutContent(ctx context.Context, url, content string)
}

// Pipeline fetches and extracts page text for sets of URLs. A global
// semaphore bounds in-flight fetches so one request cannot exhaust the
// outbound pool; each URL fails independently.
type Pipeline struct {
	logger      *zap.Logger
	client      func() *http.Client
	cache       ContentCache
	validator   *URLValidator
	failed      *FailedSet
	sem         *semaphore.Weighted
	extractions atomic.Int64
}

func NewPipeline(logger *zap.Logger, client func() *http.Client, cache ContentCache, maxConcurrent int64, validatorSize int) *Pipeline {
	return &Pipeline{
		logger:    logger,
		client:    client,
		cache:     cache,
		validator: NewURLValidator(validatorSize),
		failed:    NewFailedSet(),
		sem:       semaphore.NewWeighted(maxConcurrent),
	}
}

// ContentFor returns extracted text for each URL, aligned with the input
// slice. URLs that are invalid, negative-cached, or fail to fetch yield
// an empty string.
func (p *Pipeline) ContentFor(ctx context.Context, urls []string) []string {
	contents := make([]string, len(urls))
	var wg sync.WaitGroup
	for i, u := range urls {
		if u == "" {
			continue
		}
		wg.Add(1)
		go func(i int, rawURL string) {
			defer wg.Done()
			if err := p.sem.Acquire(ctx, 1); err != nil {
				return
			}
			defer p.sem.Release(1)
			contents[i] = p.contentFor(ctx, rawURL)
		}(i, u)
	}
	wg.Wait()
	return contents
}

func (p *Pipeline) contentFor(ctx context.Context, rawURL string) string {
	if !p.validator.IsValid(rawURL) || p.failed.Contains(rawURL) {
		return ""
	}
	if content, ok := p.cache.GetContent(ctx, rawURL); ok {
		return content
	}
	out := p.fetch(ctx, rawURL)
	if out.Status != FetchOK {
		return ""
	}
	p.extractions.Add(1)
	p.cache.PutContent(ctx, rawURL, out.Content)
	return out.Content
}

// Extractions reports how many successful extractions have run since
// process start.
func (p *Pipeline) Extractions() int64 {
	return p.extractions.Load()
}

// Reset empties the negative URL cache and the validator memo.
func (p *Pipeline) Reset() {
	p.failed.Clear()
	p.validator.Reset()
}
