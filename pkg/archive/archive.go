package archive

import (
	"archive/zip"
	"context"

	"github.com/matzehuels/modmirror/pkg/errors"
)

// Type is the classification tag stored in a record's updateTypeString.
type Type string

const (
	TypeAPK    Type = "apk"
	TypeModule Type = "module"
	TypeTWRP   Type = "twrp"
)

// Descriptor entries checked at the archive root.
const (
	manifestEntry = "AndroidManifest.xml"
	dexEntry      = "classes.dex"
	moduleEntry   = "module.prop"
)

// Lister enumerates the entry names of an archive.
type Lister interface {
	List(path string) ([]string, error)
}

// PackageReader recovers the Android package identifier of an apk.
type PackageReader interface {
	PackageName(ctx context.Context, path string) (string, error)
}

// Classify maps an entry listing to a Type. First match wins.
func Classify(entries []string) Type {
	set := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		set[e] = struct{}{}
	}
	has := func(name string) bool {
		_, ok := set[name]
		return ok
	}

	switch {
	case has(manifestEntry) || has(dexEntry):
		return TypeAPK
	case has(moduleEntry):
		return TypeModule
	default:
		return TypeTWRP
	}
}

// Classifier classifies artifacts on disk.
type Classifier struct {
	lister Lister
}

// NewClassifier returns a Classifier backed by l. A nil l uses [ZipLister].
func NewClassifier(l Lister) *Classifier {
	if l == nil {
		l = ZipLister{}
	}
	return &Classifier{lister: l}
}

// ClassifyFile lists path and classifies it. An unreadable archive is a
// CLASSIFICATION_FAILURE; there is no fallback type for it.
func (c *Classifier) ClassifyFile(path string) (Type, error) {
	entries, err := c.lister.List(path)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeClassification, err, "cannot list archive %s", path)
	}
	return Classify(entries), nil
}

// ZipLister lists entries with archive/zip.
type ZipLister struct{}

// List returns the names of all entries in the zip at path.
func (ZipLister) List(path string) ([]string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	names := make([]string, 0, len(r.File))
	for _, f := range r.File {
		names = append(names, f.Name)
	}
	return names, nil
}
