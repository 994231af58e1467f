// Package integrations provides the HTTP plumbing shared by source clients.
//
// # Overview
//
// The [Client] type implements the fetch policy every source follows:
//
//   - plain GET with redirect following
//   - success is strictly HTTP 200; any other status is a NETWORK_FAILURE
//     naming the URL and status code
//   - transport errors and 5xx responses are retried with backoff
//   - bodies whose URL pins a version may be cached through [cache.Cache]
//   - every request reports to the registered [observability.HTTPHooks]
//
// Source-specific URL shapes live in subpackages:
//
//   - [github]: release pages, asset fragments, README and artifact downloads
//
// [github]: github.com/matzehuels/modmirror/pkg/integrations/github
// [cache.Cache]: github.com/matzehuels/modmirror/pkg/cache.Cache
// [observability.HTTPHooks]: github.com/matzehuels/modmirror/pkg/observability.HTTPHooks
package integrations
