package config

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/modmirror/pkg/errors"
)

// RepoFileNames are the repository list files looked up by FindRepoFile, in order.
var RepoFileNames = []string{"repos.toml", "repos.yaml", "repos.yml"}

type repoFile struct {
	Repos []RepoSpec `toml:"repos" yaml:"repos"`
}

// FindRepoFile returns the first repository list file present in dir, or ""
// if there is none.
func FindRepoFile(dir string) string {
	for _, name := range RepoFileNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// LoadRepos reads a repository list from path. The format is chosen by
// extension: .toml, or .yaml/.yml.
func LoadRepos(path string) (RepoList, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RepoList{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
	}

	var file repoFile
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		md, err := toml.Decode(string(data), &file)
		if err != nil {
			return RepoList{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return RepoList{}, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown key %q", path, undecoded[0].String())
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&file); err != nil && err != io.EOF {
			return RepoList{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
		}
	default:
		return RepoList{}, errors.New(errors.ErrCodeInvalidConfig, "unsupported repository list format %q", ext)
	}

	if len(file.Repos) == 0 {
		return RepoList{}, errors.New(errors.ErrCodeInvalidConfig, "%s lists no repositories", path)
	}
	return NewRepoList(file.Repos)
}

// ResolveRepos loads the list at path, or the first list file in dir when
// path is empty, falling back to DefaultRepos. It returns the file used
// ("" for the defaults).
func ResolveRepos(path, dir string) (RepoList, string, error) {
	if path == "" {
		path = FindRepoFile(dir)
	}
	if path == "" {
		return DefaultRepos(), "", nil
	}
	list, err := LoadRepos(path)
	if err != nil {
		return RepoList{}, path, err
	}
	return list, path, nil
}
