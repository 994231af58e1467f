package extract

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/matzehuels/modmirror/pkg/errors"
	"github.com/matzehuels/modmirror/pkg/pattern"
)

// Extractor is a marker scheme for one generation of release-page markup.
type Extractor interface {
	// AssetFragmentLink returns the link to the expanded-assets fragment.
	AssetFragmentLink(html string) (string, error)
	// ReadmePath returns the repository-relative README path from a landing page.
	ReadmePath(html string) (string, error)
	// Changelog returns the rendered release body, or "" if the release has none.
	Changelog(html string) (string, error)
	// DownloadCandidates returns every asset download path in a fragment page.
	DownloadCandidates(fragment string) []string
}

// Markers used by the GitHub scheme.
const (
	MarkerAssets        = "expanded_assets/"
	MarkerOverview      = "repos-overview"
	MarkerJSONScript    = `<script type="application/json"`
	MarkerScriptEnd     = "</script>"
	MarkerReadmeTrailer = "preferredFileType"
	MarkerPathKey       = `"path":"`
	MarkerChangelog     = `class="markdown-body my-3">`
	MarkerDivEnd        = "</div>"
)

var downloadRegex = regexp.MustCompile(`[a-zA-Z0-9\.\-_\/\+]+\/releases\/download\/[a-zA-Z0-9\.\-_\/\+]+`)

// GitHubMarkup extracts from github.com release and repository pages.
type GitHubMarkup struct{}

var _ Extractor = GitHubMarkup{}

func missing(marker, where string) error {
	return errors.New(errors.ErrCodeMarkupParse, "marker `%s` not found in %s", marker, where)
}

// AssetFragmentLink finds the first expanded_assets reference and widens it
// to the enclosing quoted attribute value.
func (GitHubMarkup) AssetFragmentLink(html string) (string, error) {
	at := strings.Index(html, MarkerAssets)
	if at == -1 {
		return "", missing(MarkerAssets, "release page")
	}
	start := strings.LastIndexByte(html[:at], '"')
	if start == -1 {
		return "", missing(`"`, "release page before "+MarkerAssets)
	}
	end := strings.IndexByte(html[at:], '"')
	if end == -1 {
		return "", missing(`"`, "release page after "+MarkerAssets)
	}
	return html[start+1 : at+end], nil
}

// ReadmePath reads the overview's embedded JSON block and returns the path
// value nearest before the README's preferredFileType key.
func (GitHubMarkup) ReadmePath(html string) (string, error) {
	overview := strings.Index(html, MarkerOverview)
	if overview == -1 {
		return "", missing(MarkerOverview, "repository page")
	}
	rest := html[overview:]

	script := strings.Index(rest, MarkerJSONScript)
	if script == -1 {
		return "", missing(MarkerJSONScript, "repository overview")
	}
	rest = rest[script:]

	end := strings.Index(rest, MarkerScriptEnd)
	if end == -1 {
		return "", missing(MarkerScriptEnd, "repository overview")
	}
	block := rest[:end]

	open := strings.IndexByte(block, '>')
	if open == -1 {
		return "", missing(">", "overview script tag")
	}
	block = block[open+1:]

	trailer := strings.Index(block, MarkerReadmeTrailer)
	if trailer == -1 {
		return "", missing(MarkerReadmeTrailer, "overview data")
	}
	key := strings.LastIndex(block[:trailer], MarkerPathKey)
	if key == -1 {
		return "", missing(MarkerPathKey, "overview data")
	}

	value, err := readJSONString(block[key+len(MarkerPathKey)-1:])
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeMarkupParse, err, "malformed README path in overview data")
	}
	if value == "" {
		return "", errors.New(errors.ErrCodeMarkupParse, "empty README path in overview data")
	}
	return value, nil
}

// readJSONString decodes the JSON string literal at the start of s.
func readJSONString(s string) (string, error) {
	var v string
	err := json.NewDecoder(strings.NewReader(s)).Decode(&v)
	return v, err
}

// Changelog returns the first rendered markdown body. A page without one has
// no changelog; an opened but unterminated body is a parse failure.
func (GitHubMarkup) Changelog(html string) (string, error) {
	at := strings.Index(html, MarkerChangelog)
	if at == -1 {
		return "", nil
	}
	body := html[at+len(MarkerChangelog):]
	end := strings.Index(body, MarkerDivEnd)
	if end == -1 {
		return "", missing(MarkerDivEnd, "changelog body")
	}
	return body[:end], nil
}

// DownloadCandidates returns the distinct download paths in first-seen order.
func (GitHubMarkup) DownloadCandidates(fragment string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, link := range downloadRegex.FindAllString(fragment, -1) {
		if _, ok := seen[link]; ok {
			continue
		}
		seen[link] = struct{}{}
		out = append(out, link)
	}
	return out
}

// FilterCandidates keeps the candidates matching glob.
func FilterCandidates(candidates []string, glob string) ([]string, error) {
	m, err := pattern.Compile(glob)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid file pattern %q", glob)
	}
	return m.Filter(candidates), nil
}
