package mirror

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/modmirror/pkg/cache"
	"github.com/matzehuels/modmirror/pkg/config"
	"github.com/matzehuels/modmirror/pkg/errors"
)

func fetchSetup(t *testing.T, assets map[string][]byte) (*fakeGitHub, *Fetcher, *Release) {
	t.Helper()
	gh := newFakeGitHub(t)
	gh.add("a/b", &fakeRepo{version: "v1", assets: assets})
	client := gh.client()
	rel, err := NewResolver(client).Resolve(context.Background(), config.RepoSpec{SourceID: "a/b"})
	if err != nil {
		t.Fatal(err)
	}
	return gh, NewFetcher(client, nil), rel
}

func TestFetchSelectsByPattern(t *testing.T) {
	gh, f, rel := fetchSetup(t, map[string][]byte{
		"app.apk": []byte("apk bytes"),
		"app.zip": []byte("zip bytes"),
	})
	dest := filepath.Join(t.TempDir(), "file")

	art, err := f.Fetch(context.Background(), rel.ReleasePage, "*apk", dest)
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if !strings.HasSuffix(art.URL, "/a/b/releases/download/v1/app.apk") {
		t.Errorf("URL = %q", art.URL)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "apk bytes" || art.Size != int64(len(data)) {
		t.Errorf("downloaded %q (%d bytes)", data, art.Size)
	}
	if n := gh.downloads.Load(); n != 1 {
		t.Errorf("downloads = %d, want 1", n)
	}
}

func TestFetchOverwritesExisting(t *testing.T) {
	_, f, rel := fetchSetup(t, map[string][]byte{"only.zip": []byte("new")})
	dest := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(dest, []byte("old content"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := f.Fetch(context.Background(), rel.ReleasePage, "", dest); err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	data, _ := os.ReadFile(dest)
	if string(data) != "new" {
		t.Errorf("file = %q, want new", data)
	}
}

func TestFetchAmbiguous(t *testing.T) {
	assets := map[string][]byte{
		"app-arm64-v8a.apk": nil,
		"app-x86.apk":       nil,
		"notes.txt":         nil,
	}
	tests := []struct {
		name     string
		glob     string
		mention  []string
		excludes []string
	}{
		{
			name:     "two matches",
			glob:     "*apk",
			mention:  []string{"/a/b/releases/download/v1/app-arm64-v8a.apk", "/a/b/releases/download/v1/app-x86.apk"},
			excludes: []string{"notes.txt"},
		},
		{
			name:    "no match",
			glob:    "*.img",
			mention: []string{"app-arm64-v8a.apk", "app-x86.apk", "notes.txt"},
		},
		{
			name:    "empty pattern matches all",
			glob:    "",
			mention: []string{"app-arm64-v8a.apk", "app-x86.apk", "notes.txt"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gh, f, rel := fetchSetup(t, assets)
			dest := filepath.Join(t.TempDir(), "file")

			_, err := f.Fetch(context.Background(), rel.ReleasePage, tt.glob, dest)
			if !errors.Is(err, errors.ErrCodeAmbiguousMatch) {
				t.Fatalf("error = %v, want AMBIGUOUS_MATCH", err)
			}
			for _, m := range tt.mention {
				if !strings.Contains(err.Error(), m) {
					t.Errorf("error should mention %q: %v", m, err)
				}
			}
			for _, m := range tt.excludes {
				if strings.Contains(err.Error(), m) {
					t.Errorf("error should not mention %q: %v", m, err)
				}
			}
			if !strings.Contains(err.Error(), gh.server.URL+"/a/b/releases/download/") {
				t.Errorf("candidates should be absolute URLs: %v", err)
			}
			if _, statErr := os.Stat(dest); !os.IsNotExist(statErr) {
				t.Error("ambiguous fetch wrote a file")
			}
		})
	}
}

func TestFetchSpecialCharactersAreLiteral(t *testing.T) {
	_, f, rel := fetchSetup(t, map[string][]byte{
		"app+v1.apk": []byte("plus"),
		"appXv1.apk": []byte("x"),
	})
	art, err := f.Fetch(context.Background(), rel.ReleasePage, "app+v1", filepath.Join(t.TempDir(), "file"))
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if !strings.HasSuffix(art.URL, "app+v1.apk") {
		t.Errorf("URL = %q", art.URL)
	}
}

func TestFetchMissingFragmentLink(t *testing.T) {
	_, f, rel := fetchSetup(t, nil)
	rel.HTML = "<html>assets moved</html>"

	_, err := f.Fetch(context.Background(), rel.ReleasePage, "", filepath.Join(t.TempDir(), "file"))
	if !errors.Is(err, errors.ErrCodeMarkupParse) {
		t.Fatalf("error = %v, want MARKUP_PARSE_FAILURE", err)
	}
}

func TestFetchCachedFragment(t *testing.T) {
	gh := newFakeGitHub(t)
	gh.add("a/b", &fakeRepo{version: "v1", assets: map[string][]byte{"app.apk": []byte("apk")}})
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	client := gh.cachedClient(fc)
	ctx := context.Background()
	rel, err := NewResolver(client).Resolve(ctx, config.RepoSpec{SourceID: "a/b"})
	if err != nil {
		t.Fatal(err)
	}
	f := NewFetcher(client, nil)
	dest := filepath.Join(t.TempDir(), "file")

	for i := 0; i < 2; i++ {
		if _, err := f.Fetch(ctx, rel.ReleasePage, "*apk", dest); err != nil {
			t.Fatalf("Fetch() error: %v", err)
		}
	}
	if n := gh.fragments.Load(); n != 1 {
		t.Errorf("fragments = %d, want 1 (second read from cache)", n)
	}

	// The cached fragment has no zip, so a new pattern refetches it.
	gh.addAsset("a/b", "app.zip", []byte("zip"))
	art, err := f.Fetch(ctx, rel.ReleasePage, "*zip", dest)
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if !strings.HasSuffix(art.URL, "/app.zip") {
		t.Errorf("URL = %q", art.URL)
	}
	if n := gh.fragments.Load(); n != 2 {
		t.Errorf("fragments = %d, want 2", n)
	}

	f.Refresh = true
	if _, err := f.Fetch(ctx, rel.ReleasePage, "*zip", dest); err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if n := gh.fragments.Load(); n != 3 {
		t.Errorf("fragments = %d, want 3 after refresh", n)
	}
}

func TestFetchDoesNotCacheUnmatchedFragment(t *testing.T) {
	gh := newFakeGitHub(t)
	gh.add("a/b", &fakeRepo{version: "v1", assets: map[string][]byte{"notes.txt": nil}})
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	client := gh.cachedClient(fc)
	ctx := context.Background()
	rel, err := NewResolver(client).Resolve(ctx, config.RepoSpec{SourceID: "a/b"})
	if err != nil {
		t.Fatal(err)
	}
	f := NewFetcher(client, nil)

	for i := 0; i < 2; i++ {
		_, err := f.Fetch(ctx, rel.ReleasePage, "*zip", filepath.Join(t.TempDir(), "file"))
		if !errors.Is(err, errors.ErrCodeAmbiguousMatch) {
			t.Fatalf("error = %v, want AMBIGUOUS_MATCH", err)
		}
	}
	if n := gh.fragments.Load(); n != 2 {
		t.Errorf("fragments = %d, want 2", n)
	}
}
