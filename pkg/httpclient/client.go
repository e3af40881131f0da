package httpclient

import (
	"context"
	"net"
	"net/http"
	"time"

	"golang.org/x/net/proxy"
)

// Config bounds the shared outbound connection pool. Sub-timeouts here
// are per connection attempt and per response header; overall call
// deadlines come from request contexts.
type Config struct {
	MaxConns        int
	MaxConnsPerHost int
	KeepAlive       time.Duration
	DialTimeout     time.Duration
	ReadTimeout     time.Duration
	RequestTimeout  time.Duration
	ProxyURL        string // optional SOCKS5 address (host:port)
}

// New builds a pooled HTTP client. With a ProxyURL set, all dials go
// through the SOCKS5 proxy.
func New(cfg Config) (*http.Client, error) {
	dialer := &net.Dialer{
		Timeout:   cfg.DialTimeout,
		KeepAlive: cfg.KeepAlive,
	}

	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          cfg.MaxConns,
		MaxConnsPerHost:       cfg.MaxConnsPerHost,
		MaxIdleConnsPerHost:   cfg.MaxConnsPerHost,
		IdleConnTimeout:       cfg.KeepAlive,
		ResponseHeaderTimeout: cfg.ReadTimeout,
		TLSHandshakeTimeout:   cfg.DialTimeout * 2,
	}

	if cfg.ProxyURL != "" {
		socksDialer, err := proxy.SOCKS5("tcp", cfg.ProxyURL, nil, proxy.Direct)
		if err != nil {
			return nil, err
		}
		transport.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
			return socksDialer.Dial(network, addr)
		}
	}

	return &http.Client{
		Transport: transport,
		Timeout:   cfg.RequestTimeout,
	}, nil
}
