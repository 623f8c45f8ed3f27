package bnk

import (
	"os"
	"path/filepath"
)

// writeFileAtomic writes data to a temporary file next to path and renames
// it over path. path is left untouched if any step fails.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return ioErr("failed to create temporary file", err)
	}
	name := tmp.Name()
	cleanup := func() {
		tmp.Close()
		os.Remove(name)
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return ioErr("failed to write temporary file", err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return ioErr("failed to sync temporary file", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return ioErr("failed to close temporary file", err)
	}
	if err := os.Chmod(name, perm); err != nil {
		os.Remove(name)
		return ioErr("failed to set file mode", err)
	}
	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return ioErr("failed to replace "+path, err)
	}
	return nil
}
