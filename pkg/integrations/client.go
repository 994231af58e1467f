package integrations

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/matzehuels/modmirror/pkg/cache"
	"github.com/matzehuels/modmirror/pkg/errors"
	"github.com/matzehuels/modmirror/pkg/httputil"
	"github.com/matzehuels/modmirror/pkg/observability"
)

// Client provides shared HTTP functionality for source clients.
// It handles caching, retry logic, and common request headers.
type Client struct {
	http     *http.Client
	download *http.Client
	cache    cache.Cache
	ttl      time.Duration
	headers  map[string]string
	attempts int
	delay    time.Duration
}

// Page is a fetched document and the URL it was finally served from.
type Page struct {
	URL  string // final URL after redirects
	Body string
}

// NewClient creates a Client. A nil cache disables caching.
func NewClient(c cache.Cache, opts Options) *Client {
	if c == nil {
		c = cache.NewNullCache()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	dlTimeout := opts.DownloadTimeout
	if dlTimeout <= 0 {
		dlTimeout = defaultDownloadTimeout
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}

	headers := map[string]string{"User-Agent": ua}
	for k, v := range opts.Headers {
		headers[k] = v
	}

	return &Client{
		http:     NewHTTPClient(timeout),
		download: NewHTTPClient(dlTimeout),
		cache:    c,
		ttl:      opts.CacheTTL,
		headers:  headers,
		attempts: opts.RetryAttempts,
		delay:    opts.RetryDelay,
	}
}

// GetPage fetches rawURL and returns its body with the post-redirect URL.
func (c *Client) GetPage(ctx context.Context, rawURL string) (*Page, error) {
	var page *Page
	err := c.retry(ctx, func() error {
		resp, err := c.do(ctx, c.http, rawURL)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return httputil.Retryable(networkError(rawURL, err))
		}
		page = &Page{URL: resp.Request.URL.String(), Body: string(body)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

// GetText fetches rawURL and returns the body.
func (c *Client) GetText(ctx context.Context, rawURL string) (string, error) {
	page, err := c.GetPage(ctx, rawURL)
	if err != nil {
		return "", err
	}
	return page.Body, nil
}

// CachedText returns the cached body for key, fetching rawURL on a miss.
// keyType labels the entry for cache hooks ("fragment", "readme").
// Only use this for URLs whose content is fixed by the key.
func (c *Client) CachedText(ctx context.Context, keyType, key, rawURL string) (string, error) {
	if body, ok := c.LookupText(ctx, keyType, key); ok {
		return body, nil
	}
	body, err := c.GetText(ctx, rawURL)
	if err != nil {
		return "", err
	}
	c.StoreText(ctx, keyType, key, body)
	return body, nil
}

// LookupText returns the cached body for key without touching the network.
func (c *Client) LookupText(ctx context.Context, keyType, key string) (string, bool) {
	if data, hit, err := c.cache.Get(ctx, cache.HTTPKey(keyType, key)); err == nil && hit {
		observability.Cache().OnCacheHit(ctx, keyType)
		return string(data), true
	}
	observability.Cache().OnCacheMiss(ctx, keyType)
	return "", false
}

// StoreText caches body under key for the configured TTL. Cache write
// failures are ignored.
func (c *Client) StoreText(ctx context.Context, keyType, key, body string) {
	if err := c.cache.Set(ctx, cache.HTTPKey(keyType, key), []byte(body), c.ttl); err == nil {
		observability.Cache().OnCacheSet(ctx, keyType, len(body))
	}
}

// Download streams the body of rawURL into w and returns the byte count.
// Only obtaining a 200 response is retried; a failure while streaming is
// returned as-is because w may already hold partial content.
func (c *Client) Download(ctx context.Context, rawURL string, w io.Writer) (int64, error) {
	var resp *http.Response
	err := c.retry(ctx, func() error {
		r, err := c.do(ctx, c.download, rawURL)
		if err != nil {
			return err
		}
		resp = r
		return nil
	})
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, networkError(rawURL, err)
	}
	return n, nil
}

func (c *Client) retry(ctx context.Context, fn func() error) error {
	if c.attempts <= 0 || c.delay <= 0 {
		return httputil.RetryWithBackoff(ctx, fn)
	}
	return httputil.Retry(ctx, c.attempts, c.delay, fn)
}

func (c *Client) do(ctx context.Context, hc *http.Client, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "invalid URL %s", rawURL)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	host, path := splitURL(req.URL)
	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := hc.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, httputil.Retryable(networkError(rawURL, err))
	}
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp.Request.URL.String(), resp.StatusCode); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp, nil
}

func networkError(rawURL string, err error) error {
	return errors.Wrap(errors.ErrCodeNetwork, fmt.Errorf("%w: %v", ErrNetwork, err), "GET %s", rawURL)
}

// checkStatus accepts only 200. 5xx responses are retryable. rawURL is the
// URL that answered, after redirects.
func checkStatus(rawURL string, code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return errors.Wrap(errors.ErrCodeNetwork, ErrNotFound, "GET %s: status %d", rawURL, code)
	case code >= 500:
		return httputil.Retryable(errors.Wrap(errors.ErrCodeNetwork, ErrNetwork, "GET %s: status %d", rawURL, code))
	default:
		return errors.Wrap(errors.ErrCodeNetwork, ErrNetwork, "GET %s: status %d", rawURL, code)
	}
}

func splitURL(u *url.URL) (host, path string) {
	return u.Host, u.Path
}
