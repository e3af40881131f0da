package enrich

import (
	"context"
	"io"
	"net/http"

	"go.uber.org/zap"
)

// Read cap per URL. Extraction only ever needs the head of the page.
const maxBodyBytes = 30_000

const (
	userAgent    = "Mozilla/5.0 (compatible; FastSearchBot/2.0)"
	acceptHeader = "application/json,text/html,application/xhtml+xml"
)

// FetchStatus classifies one URL fetch so the pipeline can map failures
// to empty content instead of propagating errors.
type FetchStatus int

const (
	FetchOK FetchStatus = iota
	// FetchSkipped means the URL never went on the wire: invalid or
	// already known to fail.
	FetchSkipped
	// FetchFailed covers transport errors, non-200 responses and
	// extraction yielding no usable text.
	FetchFailed
)

type FetchOutcome struct {
	Status  FetchStatus
	Content string
}

func (p *Pipeline) fetch(ctx context.Context, rawURL string) FetchOutcome {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		p.failed.Mark(rawURL)
		return FetchOutcome{Status: FetchFailed}
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", acceptHeader)

	resp, err := p.client().Do(req)
	if err != nil {
		p.logger.Debug("url fetch failed", zap.String("url", rawURL), zap.Error(err))
		p.failed.Mark(rawURL)
		return FetchOutcome{Status: FetchFailed}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		p.logger.Debug("url fetch non-200", zap.String("url", rawURL), zap.Int("status", resp.StatusCode))
		p.failed.Mark(rawURL)
		return FetchOutcome{Status: FetchFailed}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil && len(body) == 0 {
		p.logger.Debug("url body read failed", zap.String("url", rawURL), zap.Error(err))
		p.failed.Mark(rawURL)
		return FetchOutcome{Status: FetchFailed}
	}

	text := ExtractText(body)
	if text == "" {
		p.failed.Mark(rawURL)
		return FetchOutcome{Status: FetchFailed}
	}

	return FetchOutcome{Status: FetchOK, Content: text}
}
