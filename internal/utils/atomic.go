package utils

import (
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// WriterFunc fills a freshly created temp file.
type WriterFunc func(w io.Writer) error

// CreateFileExclusive writes a new file at path only if none exists yet. The
// content is produced into a temp file in the same directory and published
// with a hard link, which fails when path is already taken. It reports false
// when another writer got there first; the temp file is discarded either way.
// If write fails nothing is published.
func CreateFileExclusive(path string, perm os.FileMode, write WriterFunc) (bool, error) {
	tmp, err := writeTemp(path, perm, write)
	if err != nil {
		return false, err
	}
	defer os.Remove(tmp)

	err = os.Link(tmp, path)
	if err == nil {
		return true, nil
	}
	if os.IsExist(err) {
		return false, nil
	}

	// Some filesystems refuse hard links. Fall back to an existence check
	// followed by rename, which is only as safe as the check.
	exists, statErr := FileExists(path)
	if statErr != nil {
		return false, statErr
	}
	if exists {
		return false, nil
	}
	if err := os.Rename(tmp, path); err != nil {
		return false, errors.Wrapf(err, "could not publish %s", path)
	}
	return true, nil
}

// ReplaceFile atomically replaces whatever is at path with the output of write.
func ReplaceFile(path string, perm os.FileMode, write WriterFunc) error {
	tmp, err := writeTemp(path, perm, write)
	if err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return errors.Wrapf(err, "could not replace %s", path)
	}
	return nil
}

func writeTemp(path string, perm os.FileMode, write WriterFunc) (string, error) {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	f, err := os.CreateTemp(dir, "."+base+".tmp-*")
	if err != nil {
		return "", errors.Wrapf(err, "could not create temp file for %s", path)
	}
	name := f.Name()

	if err := write(f); err != nil {
		f.Close()
		os.Remove(name)
		return "", err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(name)
		return "", errors.Wrapf(err, "could not sync %s", name)
	}
	if err := f.Close(); err != nil {
		os.Remove(name)
		return "", errors.Wrapf(err, "could not close %s", name)
	}
	if err := os.Chmod(name, perm); err != nil {
		os.Remove(name)
		return "", errors.Wrapf(err, "could not chmod %s", name)
	}
	return name, nil
}
