package store

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/matzehuels/modmirror/pkg/errors"
)

const (
	// RecordFile is the metadata record's file name inside a repository directory.
	RecordFile = "details.json"
	// ArtifactFile is the mirrored artifact's file name.
	ArtifactFile = "file"
	// ListingFile is the manifest of repository directories under the root.
	ListingFile = "list"
)

var imagePattern = regexp.MustCompile(`^\d+\.jpg$`)

// Store reads and writes repository state under a root directory.
type Store struct {
	root string
}

// New returns a Store rooted at root. The directory is created lazily.
func New(root string) *Store {
	return &Store{root: root}
}

// Root returns the root directory.
func (s *Store) Root() string { return s.root }

// Dir returns the repository directory for name.
func (s *Store) Dir(name string) string { return filepath.Join(s.root, name) }

// ArtifactPath returns where name's artifact is stored.
func (s *Store) ArtifactPath(name string) string { return filepath.Join(s.root, name, ArtifactFile) }

// RecordPath returns where name's metadata record is stored.
func (s *Store) RecordPath(name string) string { return filepath.Join(s.root, name, RecordFile) }

// EnsureDir creates the repository directory for name.
func (s *Store) EnsureDir(name string) error {
	if err := errors.ValidateName(name); err != nil {
		return err
	}
	if err := os.MkdirAll(s.Dir(name), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeFilesystem, err, "create directory for %s", name)
	}
	return nil
}

// Load reads name's record. A missing record yields an empty one; an
// unreadable or corrupt one is a filesystem failure.
func (s *Store) Load(name string) (Record, error) {
	path := s.RecordPath(name)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Record{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFilesystem, err, "read %s", path)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var rec Record
	if err := dec.Decode(&rec); err != nil {
		return nil, errors.Wrap(errors.ErrCodeFilesystem, err, "decode %s", path)
	}
	if rec == nil {
		rec = Record{}
	}
	return rec, nil
}

// Persist writes rec as name's record, replacing the previous file atomically.
func (s *Store) Persist(name string, rec Record) error {
	if err := s.EnsureDir(name); err != nil {
		return err
	}
	data, err := Encode(rec)
	if err != nil {
		return err
	}
	return WriteFileAtomic(s.RecordPath(name), data)
}

// Encode renders rec the way it is stored: four-space indent, with HTML
// and non-ASCII characters left unescaped.
func Encode(rec Record) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(rec); err != nil {
		return nil, errors.Wrap(errors.ErrCodeFilesystem, err, "encode record")
	}
	return buf.Bytes(), nil
}

// CountImages counts the numbered JPEG screenshots in name's directory.
func (s *Store) CountImages(name string) (int, error) {
	entries, err := os.ReadDir(s.Dir(name))
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeFilesystem, err, "read directory for %s", name)
	}
	n := 0
	for _, e := range entries {
		if e.Type().IsRegular() && imagePattern.MatchString(e.Name()) {
			n++
		}
	}
	return n, nil
}

// Names returns the repository directory names under the root, sorted.
// A missing root yields no names.
func (s *Store) Names() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFilesystem, err, "read %s", s.root)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// WriteListing regenerates the listing manifest from the directories on
// disk and returns the names it wrote.
func (s *Store) WriteListing() ([]string, error) {
	names, err := s.Names()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeFilesystem, err, "create %s", s.root)
	}
	if err := WriteFileAtomic(filepath.Join(s.root, ListingFile), []byte(strings.Join(names, ","))); err != nil {
		return nil, err
	}
	return names, nil
}

// ReadListing returns the names in the listing manifest.
func (s *Store) ReadListing() ([]string, error) {
	data, err := os.ReadFile(filepath.Join(s.root, ListingFile))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFilesystem, err, "read listing")
	}
	if len(data) == 0 {
		return nil, nil
	}
	return strings.Split(string(data), ","), nil
}
