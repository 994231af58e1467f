package store

import (
	"os"
	"path/filepath"

	"github.com/matzehuels/modmirror/pkg/errors"
)

// AtomicFile is a temp file that replaces its target on Commit.
type AtomicFile struct {
	*os.File
	target string
	done   bool
}

// CreateAtomic opens a temp file next to path. Call Commit to move it into
// place or Abort to discard it; Abort after Commit is a no-op.
func CreateAtomic(path string) (*AtomicFile, error) {
	dir := filepath.Dir(path)
	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFilesystem, err, "create temp file in %s", dir)
	}
	return &AtomicFile{File: f, target: path}, nil
}

// Commit flushes, closes and renames the temp file over the target.
func (f *AtomicFile) Commit() error {
	if f.done {
		return nil
	}
	f.done = true
	if err := f.Sync(); err != nil {
		f.cleanup()
		return errors.Wrap(errors.ErrCodeFilesystem, err, "sync %s", f.target)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return errors.Wrap(errors.ErrCodeFilesystem, err, "close %s", f.target)
	}
	if err := os.Chmod(f.Name(), 0o644); err != nil {
		os.Remove(f.Name())
		return errors.Wrap(errors.ErrCodeFilesystem, err, "chmod %s", f.target)
	}
	if err := os.Rename(f.Name(), f.target); err != nil {
		os.Remove(f.Name())
		return errors.Wrap(errors.ErrCodeFilesystem, err, "replace %s", f.target)
	}
	return nil
}

// Abort discards the temp file, leaving the target untouched.
func (f *AtomicFile) Abort() {
	if f.done {
		return
	}
	f.done = true
	f.cleanup()
}

func (f *AtomicFile) cleanup() {
	f.Close()
	os.Remove(f.Name())
}

// WriteFileAtomic writes data to path through a temp file and rename.
func WriteFileAtomic(path string, data []byte) error {
	f, err := CreateAtomic(path)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Abort()
		return errors.Wrap(errors.ErrCodeFilesystem, err, "write %s", path)
	}
	return f.Commit()
}
