package search

import "time"

// EngineConfig holds the engine's tuning knobs. The defaults are the
// values the engine runs with in production; tests shrink them.
type EngineConfig struct {
	// FastTimeout is the inline enrichment deadline; a call missing it
	// falls back to background completion under BackgroundTimeout.
	FastTimeout       time.Duration
	BackgroundTimeout time.Duration
	APITimeout        time.Duration

	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	// RequestTimeout caps any single outbound call, body read included.
	RequestTimeout time.Duration

	MaxConns        int
	MaxConnsPerHost int
	KeepAlive       time.Duration

	SearchCacheSize int
	URLCacheSize    int
	SearchMemoryTTL time.Duration

	SearchStoreTTL  time.Duration
	ContentStoreTTL time.Duration

	SearchRetention  time.Duration
	ContentRetention time.Duration

	MaxConcurrentFetches int64
	ValidatorCacheSize   int
}

func DefaultEngineConfig() *EngineConfig {
	return &EngineConfig{
		FastTimeout:       1 * time.Second,
		BackgroundTimeout: 8 * time.Second,
		APITimeout:        2 * time.Second,

		ConnectTimeout: 500 * time.Millisecond,
		ReadTimeout:    1 * time.Second,
		RequestTimeout: 2 * time.Second,

		MaxConns:        50,
		MaxConnsPerHost: 20,
		KeepAlive:       30 * time.Second,

		SearchCacheSize: 500,
		URLCacheSize:    2000,
		SearchMemoryTTL: 1 * time.Hour,

		SearchStoreTTL:  6 * time.Hour,
		ContentStoreTTL: 72 * time.Hour,

		SearchRetention:  12 * time.Hour,
		ContentRetention: 72 * time.Hour,

		MaxConcurrentFetches: 15,
		ValidatorCacheSize:   2000,
	}
}
