package mirror

import (
	"context"
	"strings"

	"github.com/matzehuels/modmirror/pkg/errors"
	"github.com/matzehuels/modmirror/pkg/extract"
	"github.com/matzehuels/modmirror/pkg/integrations/github"
	"github.com/matzehuels/modmirror/pkg/store"
)

// Artifact is a downloaded release asset.
type Artifact struct {
	Path string // local file
	URL  string // absolute download URL
	Size int64
}

// Fetcher selects and downloads the single release asset of a repository.
type Fetcher struct {
	gh *github.Client
	ex extract.Extractor

	// Refresh ignores cached asset fragments.
	Refresh bool
}

// NewFetcher returns a Fetcher. A nil ex uses [extract.GitHubMarkup].
func NewFetcher(gh *github.Client, ex extract.Extractor) *Fetcher {
	if ex == nil {
		ex = extract.GitHubMarkup{}
	}
	return &Fetcher{gh: gh, ex: ex}
}

// Select returns the absolute URL of the one asset on the release whose path
// matches glob. Zero or several matches is an AMBIGUOUS_MATCH listing the
// candidates considered. The fragment is cached only once it yields exactly
// one match; a cached fragment that no longer does is fetched again.
func (f *Fetcher) Select(ctx context.Context, page *github.ReleasePage, glob string) (string, error) {
	link, err := f.ex.AssetFragmentLink(page.HTML)
	if err != nil {
		return "", err
	}
	fragment, cached, err := f.gh.AssetFragment(ctx, link, f.Refresh)
	if err != nil {
		return "", err
	}
	candidates, matched, err := f.match(fragment, glob)
	if err != nil {
		return "", err
	}
	if cached && len(matched) != 1 {
		if fragment, _, err = f.gh.AssetFragment(ctx, link, true); err != nil {
			return "", err
		}
		if candidates, matched, err = f.match(fragment, glob); err != nil {
			return "", err
		}
		cached = false
	}

	switch len(matched) {
	case 1:
		if !cached {
			f.gh.KeepFragment(ctx, link, fragment)
		}
		return f.gh.DownloadURL(matched[0]), nil
	case 0:
		return "", errors.New(errors.ErrCodeAmbiguousMatch,
			"no asset matches pattern %q; possible links: %s", glob, f.list(candidates))
	default:
		return "", errors.New(errors.ErrCodeAmbiguousMatch,
			"%d assets match pattern %q: %s", len(matched), glob, f.list(matched))
	}
}

func (f *Fetcher) match(fragment, glob string) (candidates, matched []string, err error) {
	candidates = f.ex.DownloadCandidates(fragment)
	matched, err = extract.FilterCandidates(candidates, glob)
	return candidates, matched, err
}

// Fetch selects the asset and downloads it to dest, replacing dest only once
// the whole body has arrived.
func (f *Fetcher) Fetch(ctx context.Context, page *github.ReleasePage, glob, dest string) (*Artifact, error) {
	u, err := f.Select(ctx, page, glob)
	if err != nil {
		return nil, err
	}

	out, err := store.CreateAtomic(dest)
	if err != nil {
		return nil, err
	}
	n, err := f.gh.Download(ctx, u, out)
	if err != nil {
		out.Abort()
		return nil, err
	}
	if err := out.Commit(); err != nil {
		return nil, err
	}
	return &Artifact{Path: dest, URL: u, Size: n}, nil
}

func (f *Fetcher) list(paths []string) string {
	if len(paths) == 0 {
		return "(none)"
	}
	urls := make([]string, len(paths))
	for i, p := range paths {
		urls[i] = f.gh.DownloadURL(p)
	}
	return strings.Join(urls, ", ")
}
