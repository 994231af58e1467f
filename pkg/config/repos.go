package config

import (
	"strings"

	"github.com/matzehuels/modmirror/pkg/errors"
	"github.com/matzehuels/modmirror/pkg/integrations/github"
)

// RepoSpec describes one mirrored repository.
type RepoSpec struct {
	SourceID      string `toml:"source_id" yaml:"source_id"`                               // "owner/name"
	FilePattern   string `toml:"file_pattern,omitempty" yaml:"file_pattern,omitempty"`     // glob over asset paths; empty matches all
	PinnedVersion string `toml:"pinned_version,omitempty" yaml:"pinned_version,omitempty"` // release tag; empty follows latest
	FormatName    bool   `toml:"format_name,omitempty" yaml:"format_name,omitempty"`       // title-case the display name
	FormatAuthor  bool   `toml:"format_author,omitempty" yaml:"format_author,omitempty"`   // title-case the author
	RequiresTag   string `toml:"requires_tag,omitempty" yaml:"requires_tag,omitempty"`     // copied into the record when set
}

// Owner returns the owner segment of the source id.
func (s RepoSpec) Owner() string {
	owner, _, _ := strings.Cut(s.SourceID, "/")
	return owner
}

// Name returns the repository segment of the source id. It is also the
// state directory name.
func (s RepoSpec) Name() string {
	_, name, _ := strings.Cut(s.SourceID, "/")
	return name
}

// Validate checks the source id and file pattern.
func (s RepoSpec) Validate() error {
	if _, _, err := github.ParseSource(s.SourceID); err != nil {
		return err
	}
	return errors.ValidatePattern(s.FilePattern)
}

// RepoList is an immutable, ordered list of repositories.
type RepoList struct {
	repos []RepoSpec
}

// NewRepoList validates specs and returns them as a list. Two specs may not
// share a directory name.
func NewRepoList(specs []RepoSpec) (RepoList, error) {
	seen := make(map[string]string, len(specs))
	repos := make([]RepoSpec, 0, len(specs))
	for i, s := range specs {
		s.SourceID = strings.TrimSpace(s.SourceID)
		if err := s.Validate(); err != nil {
			return RepoList{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "repository #%d", i+1)
		}
		key := strings.ToLower(s.Name())
		if prev, ok := seen[key]; ok {
			return RepoList{}, errors.New(errors.ErrCodeInvalidConfig, "%s and %s map to the same directory", prev, s.SourceID)
		}
		seen[key] = s.SourceID
		repos = append(repos, s)
	}
	return RepoList{repos: repos}, nil
}

// Len returns the number of repositories.
func (l RepoList) Len() int { return len(l.repos) }

// At returns the i-th repository.
func (l RepoList) At(i int) RepoSpec { return l.repos[i] }

// All returns a copy of the repositories in declared order.
func (l RepoList) All() []RepoSpec {
	out := make([]RepoSpec, len(l.repos))
	copy(out, l.repos)
	return out
}

// Sources returns the source ids in declared order.
func (l RepoList) Sources() []string {
	out := make([]string, len(l.repos))
	for i, r := range l.repos {
		out[i] = r.SourceID
	}
	return out
}

// Only returns the repositories whose source id is in ids, keeping declared
// order. Matching is case-insensitive. An unknown id is an error.
func (l RepoList) Only(ids ...string) (RepoList, error) {
	if len(ids) == 0 {
		return l, nil
	}
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[strings.ToLower(strings.TrimSpace(id))] = false
	}
	var out []RepoSpec
	for _, r := range l.repos {
		key := strings.ToLower(r.SourceID)
		if _, ok := want[key]; ok {
			want[key] = true
			out = append(out, r)
		}
	}
	for _, id := range ids {
		if !want[strings.ToLower(strings.TrimSpace(id))] {
			return RepoList{}, errors.New(errors.ErrCodeInvalidConfig, "unknown repository %q", id)
		}
	}
	return RepoList{repos: out}, nil
}

// DefaultRepos returns the built-in repository list.
func DefaultRepos() RepoList {
	return RepoList{repos: []RepoSpec{
		{SourceID: "KieronQuinn/AmbientMusicMod"},
		{SourceID: "reveny/Android-Native-Root-Detector"},
		{SourceID: "AndroidAudioMods/ViPER4Android"},
		{SourceID: "WSTxda/ViperFX-RE-Releases"},
		{SourceID: "tiann/KernelSU", FilePattern: "*apk", PinnedVersion: "v1.0.1"},
		{SourceID: "zhanghai/MaterialFiles", FilePattern: "*apk"},
		{SourceID: "termux/termux-app", FilePattern: "*v8a*"},
	}}
}
