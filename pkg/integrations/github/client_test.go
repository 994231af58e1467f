package github

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/modmirror/pkg/cache"
	"github.com/matzehuels/modmirror/pkg/errors"
	"github.com/matzehuels/modmirror/pkg/integrations"
)

func testClient(t *testing.T, handler http.Handler, c cache.Cache) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := NewClient(c, integrations.Options{RetryAttempts: 2, RetryDelay: time.Millisecond})
	return client.WithBaseURLs(server.URL, server.URL+"/raw")
}

func TestReleaseURL(t *testing.T) {
	c := NewClient(nil, integrations.Options{})
	tests := []struct {
		source, tag, want string
	}{
		{"tiann/KernelSU", "", "https://github.com/tiann/KernelSU/releases/latest"},
		{"tiann/KernelSU", "v0.9.5", "https://github.com/tiann/KernelSU/releases/tag/v0.9.5"},
		{"o/r", "v1#beta?x%", "https://github.com/o/r/releases/tag/v1%23beta%3Fx%25"},
	}
	for _, tt := range tests {
		if got := c.ReleaseURL(tt.source, tt.tag); got != tt.want {
			t.Errorf("ReleaseURL(%q, %q) = %q, want %q", tt.source, tt.tag, got, tt.want)
		}
	}
}

func TestReleasePageFollowsLatest(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/o/r/releases/latest", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/o/r/releases/tag/v3.2", http.StatusFound)
	})
	mux.HandleFunc("/o/r/releases/tag/v3.2", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>release</html>"))
	})
	client := testClient(t, mux, nil)

	page, err := client.ReleasePage(context.Background(), "o/r", "")
	if err != nil {
		t.Fatalf("ReleasePage() error: %v", err)
	}
	if !strings.HasSuffix(page.URL, "/o/r/releases/tag/v3.2") {
		t.Errorf("URL = %q", page.URL)
	}
	if page.HTML != "<html>release</html>" || page.Source != "o/r" {
		t.Errorf("page = %+v", page)
	}
}

func TestReleasePagePinned(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/o/r/releases/tag/v1.0", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("pinned"))
	})
	client := testClient(t, mux, nil)

	page, err := client.ReleasePage(context.Background(), "o/r", "v1.0")
	if err != nil {
		t.Fatalf("ReleasePage() error: %v", err)
	}
	if page.HTML != "pinned" {
		t.Errorf("HTML = %q", page.HTML)
	}
}

func TestReleasePageNotFound(t *testing.T) {
	client := testClient(t, http.NotFoundHandler(), nil)

	_, err := client.ReleasePage(context.Background(), "o/missing", "")
	if !errors.Is(err, errors.ErrCodeNetwork) {
		t.Fatalf("error = %v, want NETWORK_FAILURE", err)
	}
}

func TestReadmeIsCached(t *testing.T) {
	var hits atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/raw/o/r/HEAD/docs/READ ME.md" {
			http.NotFound(w, r)
			return
		}
		n := hits.Add(1)
		w.Write([]byte("# Title " + strconv.Itoa(int(n))))
	})
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	client := testClient(t, handler, fc)
	ctx := context.Background()

	tests := []struct {
		refresh bool
		want    string
	}{
		{false, "# Title 1"},
		{false, "# Title 1"},
		{true, "# Title 2"},
		{false, "# Title 2"},
	}
	for i, tt := range tests {
		body, err := client.Readme(ctx, "o/r", "v1", "docs/READ ME.md", tt.refresh)
		if err != nil {
			t.Fatalf("Readme() error: %v", err)
		}
		if body != tt.want {
			t.Errorf("call %d: body = %q, want %q", i, body, tt.want)
		}
	}
	if n := hits.Load(); n != 2 {
		t.Errorf("server hits = %d, want 2", n)
	}
}

func TestAssetFragmentResolvesRelativeLink(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/o/r/releases/expanded_assets/v1", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("assets"))
	})
	client := testClient(t, mux, nil)

	body, cached, err := client.AssetFragment(context.Background(), "/o/r/releases/expanded_assets/v1", false)
	if err != nil {
		t.Fatalf("AssetFragment() error: %v", err)
	}
	if body != "assets" || cached {
		t.Errorf("body = %q, cached = %v", body, cached)
	}
}

func TestAssetFragmentCachedOnlyWhenKept(t *testing.T) {
	var hits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/o/r/releases/expanded_assets/v1", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte("assets"))
	})
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	client := testClient(t, mux, fc)
	ctx := context.Background()
	link := "/o/r/releases/expanded_assets/v1"

	for i := 0; i < 2; i++ {
		if _, cached, err := client.AssetFragment(ctx, link, false); err != nil || cached {
			t.Fatalf("AssetFragment() cached=%v error=%v", cached, err)
		}
	}
	if n := hits.Load(); n != 2 {
		t.Fatalf("hits = %d, want 2 before keeping", n)
	}

	client.KeepFragment(ctx, link, "assets")
	body, cached, err := client.AssetFragment(ctx, link, false)
	if err != nil || !cached || body != "assets" {
		t.Fatalf("AssetFragment() = %q cached=%v error=%v", body, cached, err)
	}
	if _, cached, _ := client.AssetFragment(ctx, link, true); cached {
		t.Error("refresh returned the cached fragment")
	}
	if n := hits.Load(); n != 3 {
		t.Errorf("hits = %d, want 3", n)
	}
}

func TestDownloadURL(t *testing.T) {
	c := NewClient(nil, integrations.Options{})
	tests := []struct {
		path, want string
	}{
		{"/o/r/releases/download/v1/a.zip", "https://github.com/o/r/releases/download/v1/a.zip"},
		{"o/r/releases/download/v1/a.zip", "https://github.com/o/r/releases/download/v1/a.zip"},
		{"https://example.com/a.zip", "https://example.com/a.zip"},
	}
	for _, tt := range tests {
		if got := c.DownloadURL(tt.path); got != tt.want {
			t.Errorf("DownloadURL(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestParseSource(t *testing.T) {
	tests := []struct {
		source    string
		owner     string
		repo      string
		wantError bool
	}{
		{"tiann/KernelSU", "tiann", "KernelSU", false},
		{"kdrag0n/safetynet-fix", "kdrag0n", "safetynet-fix", false},
		{"a/b.c_d", "a", "b.c_d", false},
		{"noslash", "", "", true},
		{"-bad/repo", "", "", true},
		{"owner/", "", "", true},
		{"owner/..", "", "", true},
		{"owner/a/b", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			owner, repo, err := ParseSource(tt.source)
			if (err != nil) != tt.wantError {
				t.Fatalf("ParseSource(%q) error = %v, wantError %v", tt.source, err, tt.wantError)
			}
			if owner != tt.owner || repo != tt.repo {
				t.Errorf("ParseSource(%q) = %q, %q", tt.source, owner, repo)
			}
		})
	}
}
