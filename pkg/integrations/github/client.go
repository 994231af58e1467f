package github

import (
	"context"
	"net/url"
	"strings"

	"github.com/matzehuels/modmirror/pkg/cache"
	"github.com/matzehuels/modmirror/pkg/errors"
	"github.com/matzehuels/modmirror/pkg/integrations"
)

const (
	defaultBaseURL = "https://github.com"
	defaultRawURL  = "https://raw.githubusercontent.com"
)

// Client fetches github.com pages and assets.
type Client struct {
	*integrations.Client
	baseURL string
	rawURL  string
}

// NewClient creates a client for github.com. A nil cache disables caching.
func NewClient(c cache.Cache, opts integrations.Options) *Client {
	return &Client{
		Client:  integrations.NewClient(c, opts),
		baseURL: defaultBaseURL,
		rawURL:  defaultRawURL,
	}
}

// WithBaseURLs points the client at other hosts, e.g. a test server.
// Empty arguments keep the current value.
func (c *Client) WithBaseURLs(base, raw string) *Client {
	if base != "" {
		c.baseURL = strings.TrimSuffix(base, "/")
	}
	if raw != "" {
		c.rawURL = strings.TrimSuffix(raw, "/")
	}
	return c
}

// SourceLink returns the canonical github.com URL of a repository,
// independent of the client's base URL.
func SourceLink(source string) string {
	return defaultBaseURL + "/" + source
}

// RepoURL returns the repository's landing page URL.
func (c *Client) RepoURL(source string) string {
	return c.baseURL + "/" + source
}

// ReleaseURL returns the release page URL for a pinned tag, or for the
// "latest" alias when tag is empty.
func (c *Client) ReleaseURL(source, tag string) string {
	if tag != "" {
		return c.RepoURL(source) + "/releases/tag/" + url.PathEscape(tag)
	}
	return c.RepoURL(source) + "/releases/latest"
}

// ReleasePage fetches the release page, following the "latest" redirect.
func (c *Client) ReleasePage(ctx context.Context, source, tag string) (*ReleasePage, error) {
	page, err := c.GetPage(ctx, c.ReleaseURL(source, tag))
	if err != nil {
		return nil, err
	}
	return &ReleasePage{Source: source, URL: page.URL, HTML: page.Body}, nil
}

// LandingPage fetches the repository's landing page markup.
func (c *Client) LandingPage(ctx context.Context, source string) (string, error) {
	return c.GetText(ctx, c.RepoURL(source))
}

// Readme fetches the raw README at path from the default branch. The body is
// cached under source, version and path; refresh skips the cached copy and
// replaces it.
func (c *Client) Readme(ctx context.Context, source, version, path string, refresh bool) (string, error) {
	u := c.rawURL + "/" + source + "/HEAD/" + escapePath(path)
	key := source + "@" + version + ":" + path
	if !refresh {
		return c.CachedText(ctx, "readme", key, u)
	}
	body, err := c.GetText(ctx, u)
	if err != nil {
		return "", err
	}
	c.StoreText(ctx, "readme", key, body)
	return body, nil
}

// AssetFragment returns the expanded-assets fragment at link. Relative links
// resolve against the base URL. A fragment kept by [Client.KeepFragment] is
// returned with cached set unless refresh is true. Fetched fragments are not
// cached here: the assets of a fresh release may still be uploading.
func (c *Client) AssetFragment(ctx context.Context, link string, refresh bool) (body string, cached bool, err error) {
	u, err := c.Resolve(link)
	if err != nil {
		return "", false, err
	}
	if !refresh {
		if hit, ok := c.LookupText(ctx, "fragment", u); ok {
			return hit, true, nil
		}
	}
	body, err = c.GetText(ctx, u)
	if err != nil {
		return "", false, err
	}
	return body, false, nil
}

// KeepFragment caches the fragment fetched from link. Call it once the
// fragment has yielded the asset being mirrored.
func (c *Client) KeepFragment(ctx context.Context, link, body string) {
	u, err := c.Resolve(link)
	if err != nil {
		return
	}
	c.StoreText(ctx, "fragment", u, body)
}

// DownloadURL returns the absolute URL of a release asset path as found in
// the assets fragment, e.g. "/owner/repo/releases/download/v1/app.zip".
func (c *Client) DownloadURL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

// Resolve turns a page-relative link into an absolute URL on the base host.
func (c *Client) Resolve(link string) (string, error) {
	base, err := url.Parse(c.baseURL + "/")
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid base URL %s", c.baseURL)
	}
	ref, err := url.Parse(link)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeMarkupParse, err, "invalid link %q", link)
	}
	return base.ResolveReference(ref).String(), nil
}

// escapePath percent-encodes each segment of a repository-relative path.
func escapePath(p string) string {
	segs := strings.Split(p, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return strings.Join(segs, "/")
}
