package mirror

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/modmirror/pkg/cache"
	"github.com/matzehuels/modmirror/pkg/config"
	"github.com/matzehuels/modmirror/pkg/integrations"
	"github.com/matzehuels/modmirror/pkg/integrations/github"
	"github.com/matzehuels/modmirror/pkg/store"
)

// fakeRepo is one repository served by fakeGitHub.
type fakeRepo struct {
	version    string            // tag "latest" redirects to
	assets     map[string][]byte // asset file name -> content
	changelog  string            // release body; empty renders no body
	readme     string
	noOverview bool // landing page lacks the overview marker
	status     int  // non-zero replaces the release page response
}

// fakeGitHub serves release pages, fragments, landing pages, raw READMEs and
// downloads for its repos.
type fakeGitHub struct {
	mu    sync.Mutex
	repos map[string]*fakeRepo

	downloads atomic.Int32
	fragments atomic.Int32
	readmes   atomic.Int32
	server    *httptest.Server
}

func newFakeGitHub(t *testing.T) *fakeGitHub {
	t.Helper()
	f := &fakeGitHub{repos: make(map[string]*fakeRepo)}
	f.server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeGitHub) add(source string, repo *fakeRepo) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.repos[source] = repo
}

func (f *fakeGitHub) setVersion(source, version string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.repos[source].version = version
}

func (f *fakeGitHub) addAsset(source, name string, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.repos[source].assets[name] = data
}

func (f *fakeGitHub) client() *github.Client {
	return f.cachedClient(nil)
}

// cachedClient returns a client backed by c with a week-long TTL.
func (f *fakeGitHub) cachedClient(c cache.Cache) *github.Client {
	gh := github.NewClient(c, integrations.Options{
		CacheTTL:      7 * 24 * time.Hour,
		RetryAttempts: 1,
		RetryDelay:    time.Millisecond,
	})
	return gh.WithBaseURLs(f.server.URL, f.server.URL+"/raw")
}

func (f *fakeGitHub) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if rest, ok := strings.CutPrefix(r.URL.Path, "/raw/"); ok {
		parts := strings.SplitN(rest, "/", 4)
		if len(parts) != 4 || parts[2] != "HEAD" || parts[3] != "README.md" {
			http.NotFound(w, r)
			return
		}
		repo := f.repos[parts[0]+"/"+parts[1]]
		if repo == nil {
			http.NotFound(w, r)
			return
		}
		f.readmes.Add(1)
		io.WriteString(w, repo.readme)
		return
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) < 2 {
		http.NotFound(w, r)
		return
	}
	source := parts[0] + "/" + parts[1]
	repo := f.repos[source]
	if repo == nil {
		http.NotFound(w, r)
		return
	}
	rest := parts[2:]

	switch {
	case len(rest) == 0:
		io.WriteString(w, landingHTML(repo))
	case len(rest) == 2 && rest[0] == "releases" && rest[1] == "latest":
		http.Redirect(w, r, "/"+source+"/releases/tag/"+repo.version, http.StatusFound)
	case len(rest) == 3 && rest[0] == "releases" && rest[1] == "tag":
		if repo.status != 0 {
			w.WriteHeader(repo.status)
			return
		}
		io.WriteString(w, releaseHTML(source, rest[2], repo))
	case len(rest) == 3 && rest[0] == "releases" && rest[1] == "expanded_assets":
		f.fragments.Add(1)
		io.WriteString(w, fragmentHTML(source, rest[2], repo))
	case len(rest) == 4 && rest[0] == "releases" && rest[1] == "download":
		data, ok := repo.assets[rest[3]]
		if !ok {
			http.NotFound(w, r)
			return
		}
		f.downloads.Add(1)
		w.Write(data)
	default:
		http.NotFound(w, r)
	}
}

func releaseHTML(source, tag string, repo *fakeRepo) string {
	var b strings.Builder
	b.WriteString("<html><body>\n")
	if repo.changelog != "" {
		fmt.Fprintf(&b, `<div data-pjax="true" class="markdown-body my-3">%s</div>`+"\n", repo.changelog)
	}
	fmt.Fprintf(&b, `<include-fragment loading="lazy" src="/%s/releases/expanded_assets/%s"></include-fragment>`+"\n", source, tag)
	b.WriteString("</body></html>")
	return b.String()
}

func fragmentHTML(source, tag string, repo *fakeRepo) string {
	names := make([]string, 0, len(repo.assets))
	for name := range repo.assets {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		fmt.Fprintf(&b, `<a href="/%s/releases/download/%s/%s" rel="nofollow">%s</a>`+"\n", source, tag, name, name)
	}
	fmt.Fprintf(&b, `<a href="/%s/archive/refs/tags/%s.zip" rel="nofollow">Source code</a>`+"\n", source, tag)
	return b.String()
}

func landingHTML(repo *fakeRepo) string {
	if repo.noOverview {
		return "<html><body>nothing to see</body></html>"
	}
	return `<html><react-partial partial-name="repos-overview">` +
		`<script type="application/json" data-target="react-partial.embeddedData">` +
		`{"props":{"overview":{"overviewFiles":[{"displayName":"README.md","path":"README.md","preferredFileType":"readme"}]}}}` +
		`</script></react-partial></html>`
}

// zipBytes builds a zip archive containing the named empty entries.
func zipBytes(t *testing.T, entries ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		io.WriteString(w, name)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

type fakePackages struct {
	name  string
	panic bool
}

func (p fakePackages) PackageName(context.Context, string) (string, error) {
	if p.panic {
		panic("manifest exploded")
	}
	return p.name, nil
}

func newTestSyncer(t *testing.T, gh *fakeGitHub) (*Syncer, *store.Store) {
	t.Helper()
	st := store.New(t.TempDir())
	s := NewSyncer(st, gh.client(), log.New(io.Discard))
	s.Packages = fakePackages{name: "com.example.app"}
	return s, st
}

func repoList(t *testing.T, specs ...config.RepoSpec) config.RepoList {
	t.Helper()
	list, err := config.NewRepoList(specs)
	if err != nil {
		t.Fatal(err)
	}
	return list
}
