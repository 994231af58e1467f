package integrations

import (
	"errors"
	"net/http"
	"time"
)

const (
	defaultTimeout         = 30 * time.Second
	defaultDownloadTimeout = 10 * time.Minute
	defaultUserAgent       = "modmirror"
)

var (
	// ErrNotFound is returned when the source answers 404.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, non-200 responses).
	ErrNetwork = errors.New("network error")
)

// Options tunes a Client. Zero values select the defaults.
type Options struct {
	Timeout         time.Duration     // per-request timeout for pages
	DownloadTimeout time.Duration     // per-request timeout for artifact downloads
	UserAgent       string            // User-Agent header
	Headers         map[string]string // extra default headers
	CacheTTL        time.Duration     // TTL for cached bodies; 0 keeps forever
	RetryAttempts   int               // attempts for transient failures; 0 uses 3
	RetryDelay      time.Duration     // initial backoff; 0 uses 1s
}

// NewHTTPClient creates an HTTP client with the given timeout.
// Redirects are followed with the standard library's default policy.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}
