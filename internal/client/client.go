// Package client fetches table pages from the changelog data service.
package client

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/JonMunkholm/changelog/internal/core"
)

// APIKeyHeader carries the data service API key.
const APIKeyHeader = "X-API-Key"

// Options configures a Client.
type Options struct {
	// BaseURL is the data service root, e.g. "http://localhost:8080/api/v1".
	BaseURL string
	// APIKey is sent in the X-API-Key header when set.
	APIKey string
	// Timeout bounds a single request. Zero means no timeout.
	Timeout time.Duration
	// Limiter bounds concurrent requests. Nil means unbounded.
	Limiter    *Limiter
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client implements core.Fetcher over HTTP.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	limiter *Limiter
	logger  *slog.Logger
}

var _ core.Fetcher = (*Client)(nil)

// New creates a Client.
func New(opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		apiKey:  opts.APIKey,
		http:    hc,
		limiter: opts.Limiter,
		logger:  logger,
	}
}

// BaseURL returns the configured data service root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Fetch issues GET {base}{dataPath}?{query} and decodes the body.
//
// A non-2xx status returns *core.HTTPStatusError. A JSON null body returns
// (nil, nil). A body without a data field returns core.ErrMissingData.
func (c *Client) Fetch(ctx context.Context, dataPath string, q core.Query) (*core.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Acquire(ctx); err != nil {
			return nil, err
		}
		defer c.limiter.Release()
	}

	url := core.BuildURL(c.baseURL, dataPath, q)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set(APIKeyHeader, c.apiKey)
	}

	start := time.Now()
	res, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	c.logger.Debug("upstream fetch",
		"url", url,
		"status", res.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if res.StatusCode < 200 || res.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, 64<<10))
		return nil, &core.HTTPStatusError{
			StatusCode: res.StatusCode,
			StatusText: http.StatusText(res.StatusCode),
		}
	}

	return core.DecodeResponse(res.Body)
}
