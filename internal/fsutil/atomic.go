// Package fsutil holds small filesystem helpers shared by the file-backed stores.
package fsutil

import (
	"io"
	"os"
	"path/filepath"
)

// FileMode is the permission every replaced file ends up with.
const FileMode os.FileMode = 0o644

// WriteAtomic replaces path with what write produces. The content goes to a
// temp file in the same directory, is synced, and is renamed over path, so
// readers see either the old file or the complete new one. Missing parent
// directories are created.
func WriteAtomic(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if err := write(tmp); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, FileMode); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// WriteFile is WriteAtomic for an in-memory payload.
func WriteFile(path string, data []byte) error {
	return WriteAtomic(path, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}
