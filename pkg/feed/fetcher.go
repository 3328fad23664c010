package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/newsportal/pkg/domain"
)

const (
	defaultFetchTimeout = 8 * time.Second
	defaultMaxBodySize  = 10 * 1024 * 1024
)

// HTTPFetcher fetches a single RSS/Atom feed and extracts its items.
// Failures are logged and never returned, a failed source has no items.
type HTTPFetcher struct {
	client      *http.Client
	timeout     time.Duration
	userAgent   string
	revalidate  time.Duration
	maxBodySize int64
	logger      lgr.L
	now         func() time.Time
}

// FetcherConfig holds HTTPFetcher settings, zero values get defaults
type FetcherConfig struct {
	Timeout     time.Duration // per-fetch timeout, 8s by default
	UserAgent   string
	Revalidate  time.Duration // cache hint sent with each request
	MaxBodySize int64         // bytes, 10MiB by default
	Logger      lgr.L
}

// NewHTTPFetcher creates a new feed fetcher
func NewHTTPFetcher(cfg FetcherConfig) *HTTPFetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultFetchTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.MaxBodySize <= 0 {
		cfg.MaxBodySize = defaultMaxBodySize
	}
	if cfg.Logger == nil {
		cfg.Logger = lgr.Default()
	}

	return &HTTPFetcher{
		client: &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		timeout:     cfg.Timeout,
		userAgent:   cfg.UserAgent,
		revalidate:  cfg.Revalidate,
		maxBodySize: cfg.MaxBodySize,
		logger:      cfg.Logger,
		now:         time.Now,
	}
}

// Fetch retrieves the source feed and returns its items tagged with the section key.
// Network errors, timeouts and non-2xx responses are logged and result in no items.
func (f *HTTPFetcher) Fetch(ctx context.Context, src domain.Source, section string) []domain.FeedItem {
	started := f.now()
	body, contentType, err := f.fetch(ctx, src.URL)
	if err != nil {
		f.logger.Logf("[WARN] failed to fetch %s (%s): %v", src.Name, src.URL, err)
		return nil
	}

	items := ExtractItems(DecodeBody(body, contentType), src.Name, section, started)
	f.logger.Logf("[DEBUG] fetched %d items from %s in %v", len(items), src.Name, f.now().Sub(started))
	return items
}

// fetch retrieves the raw body and content type from a URL within the fetch timeout
func (f *HTTPFetcher) fetch(ctx context.Context, url string) (body []byte, contentType string, err error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}
	addBrowserHeaders(req, f.userAgent, f.revalidate)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err = io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize+1))
	if err != nil {
		return nil, "", fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > f.maxBodySize {
		return nil, "", fmt.Errorf("body exceeds %d bytes", f.maxBodySize)
	}
	return body, resp.Header.Get("Content-Type"), nil
}
