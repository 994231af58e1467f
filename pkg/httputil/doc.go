// Package httputil provides retry helpers for the mirror's HTTP clients.
//
// [Retry] re-runs an operation while it fails with a [RetryableError],
// doubling the delay between attempts. Only transient failures are wrapped
// as retryable by callers:
//
//   - transport errors (connection reset, timeout)
//   - 5xx server errors
//
// Any other status is a hard failure and is returned immediately:
//
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    return fetchPage(ctx, url)
//	})
//
// # Defaults
//
// [RetryWithBackoff] makes 3 attempts starting at a 1 second delay.
package httputil
