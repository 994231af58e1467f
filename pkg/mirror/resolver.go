package mirror

import (
	"context"
	"net/url"
	"path"
	"strings"

	"github.com/matzehuels/modmirror/pkg/config"
	"github.com/matzehuels/modmirror/pkg/errors"
	"github.com/matzehuels/modmirror/pkg/integrations/github"
	"github.com/matzehuels/modmirror/pkg/store"
)

// Release is a resolved release page and its version.
type Release struct {
	*github.ReleasePage
	Version string
}

// Resolver locates the current release of a repository.
type Resolver struct {
	gh *github.Client
}

// NewResolver returns a Resolver using gh.
func NewResolver(gh *github.Client) *Resolver {
	return &Resolver{gh: gh}
}

// Resolve fetches the pinned release, or the latest one when none is pinned,
// and derives its version from the final URL.
func (r *Resolver) Resolve(ctx context.Context, spec config.RepoSpec) (*Release, error) {
	page, err := r.gh.ReleasePage(ctx, spec.SourceID, spec.PinnedVersion)
	if err != nil {
		return nil, err
	}
	version, err := DeriveVersion(page.URL)
	if err != nil {
		return nil, err
	}
	return &Release{ReleasePage: page, Version: version}, nil
}

// DeriveVersion returns the last path segment of a release URL, ignoring a
// trailing slash. A URL still ending in "latest" or "releases" means the
// repository has no published release.
func DeriveVersion(finalURL string) (string, error) {
	u, err := url.Parse(finalURL)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeMarkupParse, err, "invalid release URL %q", finalURL)
	}
	version := path.Base(strings.TrimRight(u.Path, "/"))
	switch version {
	case "", ".", "/", "latest", "releases":
		return "", errors.New(errors.ErrCodeMarkupParse, "no release version in URL %s", finalURL)
	}
	return version, nil
}

// NeedsUpdate is the idempotency gate: it reports whether a repository whose
// stored record is rec must be synced to version.
func NeedsUpdate(rec store.Record, version string, force bool) bool {
	return force || rec.Version() != version
}
