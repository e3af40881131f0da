package search

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const defaultSerperBaseURL = "https://google.serper.dev"

// SerperClient talks to the Serper search API. One outbound call per
// invocation, no retries; non-200 responses and transport errors both
// yield an empty result list because search emptiness is a normal,
// recoverable outcome at this layer.
type SerperClient struct {
	apiKey  string
	baseURL string
	client  func() *http.Client
	timeout time.Duration
	logger  *zap.Logger
}

var _ Provider = (*SerperClient)(nil)

func NewSerperClient(apiKey string, client func() *http.Client, timeout time.Duration, logger *zap.Logger) *SerperClient {
	return &SerperClient{
		apiKey:  apiKey,
		baseURL: defaultSerperBaseURL,
		client:  client,
		timeout: timeout,
		logger:  logger,
	}
}

type serperSearchResponse struct {
	Organic []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"organic"`
}

type serperNewsResponse struct {
	News []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
		Date    string `json:"date"`
		Source  string `json:"source"`
	} `json:"news"`
}

func (c *SerperClient) Search(ctx context.Context, query string, limit int) []SearchResult {
	body := c.post(ctx, c.baseURL+"/search", map[string]any{
		"q":   query,
		"num": limit,
	})
	if body == nil {
		return nil
	}

	var resp serperSearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		c.logger.Error("failed to decode search response", zap.Error(err))
		return nil
	}

	results := make([]SearchResult, 0, len(resp.Organic))
	for _, item := range resp.Organic {
		results = append(results, SearchResult{
			Title:   item.Title,
			Link:    item.Link,
			Snippet: item.Snippet,
		})
	}
	return results
}

func (c *SerperClient) News(ctx context.Context, query string, limit int) []NewsItem {
	body := c.post(ctx, c.baseURL+"/news", map[string]any{
		"q":    query,
		"num":  limit,
		"type": "news",
	})
	if body == nil {
		return nil
	}

	var resp serperNewsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		c.logger.Error("failed to decode news response", zap.Error(err))
		return nil
	}

	items := make([]NewsItem, 0, len(resp.News))
	for _, item := range resp.News {
		items = append(items, NewsItem{
			Title:   item.Title,
			Link:    item.Link,
			Snippet: item.Snippet,
			Date:    item.Date,
			Source:  item.Source,
		})
	}
	return items
}

// post returns the response body, or nil on any failure.
func (c *SerperClient) post(ctx context.Context, url string, payload any) []byte {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	data, err := json.Marshal(payload)
	if err != nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil
	}
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client().Do(req)
	if err != nil {
		c.logger.Error("provider request failed", zap.String("url", url), zap.Error(err))
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("provider returned non-200", zap.String("url", url), zap.Int("status", resp.StatusCode))
		return nil
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		c.logger.Error("provider response read failed", zap.Error(err))
		return nil
	}
	return buf.Bytes()
}
