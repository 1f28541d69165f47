package state

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths is the canonical runtime folder layout under the data directory.
type Paths struct {
	Root       string // data dir itself
	Store      string // message log backends
	Uploads    string // media files served at /uploads/
	State      string // runtime state (telemetry, quarantine, crash, tmp)
	Quarantine string // unreadable persisted files moved aside
	Tmp        string // staging area for atomic writes
}

// PathsVar holds the resolved layout after Init. Packages that need a
// runtime directory (telemetry writer, quarantine) read it from here.
var PathsVar Paths

// Init ensures the canonical runtime folder layout exists under the
// provided data dir and records it in PathsVar. It verifies paths are not
// symlinks and have restrictive permissions, and that they are writable by
// the process. The uploads dir is world-readable since its files are
// served over HTTP.
func Init(dataDir string) error {
	p := Paths{
		Root:       dataDir,
		Store:      filepath.Join(dataDir, "store"),
		Uploads:    filepath.Join(dataDir, "uploads"),
		State:      filepath.Join(dataDir, "state"),
		Quarantine: filepath.Join(dataDir, "state", "quarantine"),
		Tmp:        filepath.Join(dataDir, "state", "tmp"),
	}

	private := []string{p.Store, p.Quarantine, p.Tmp, filepath.Join(p.State, "telemetry")}
	for _, dir := range private {
		if err := ensureDir(dir, 0o700); err != nil {
			return err
		}
	}
	if err := ensureDir(p.Uploads, 0o755); err != nil {
		return err
	}

	PathsVar = p
	return nil
}

func ensureDir(p string, perm os.FileMode) error {
	// ensure parent exists
	if err := os.MkdirAll(filepath.Dir(p), 0o700); err != nil {
		return fmt.Errorf("cannot create parent for %s: %w", p, err)
	}

	// if path exists, reject symlinks and non-directories
	if fi, err := os.Lstat(p); err == nil {
		if fi.Mode()&os.ModeSymlink != 0 {
			return fmt.Errorf("path is a symlink: %s", p)
		}
		if !fi.IsDir() {
			return fmt.Errorf("path exists and is not a directory: %s", p)
		}
	}

	// create directory if missing
	if err := os.MkdirAll(p, perm); err != nil {
		return fmt.Errorf("cannot create path %s: %w", p, err)
	}

	// double-check no symlink after creation
	if fi2, err := os.Lstat(p); err == nil {
		if fi2.Mode()&os.ModeSymlink != 0 {
			return fmt.Errorf("path is a symlink after creation: %s", p)
		}
	}

	// writability check: create and remove a temp file
	tmp, err := os.CreateTemp(p, ".validate-*")
	if err != nil {
		return fmt.Errorf("path not writable: %s: %w", p, err)
	}
	tmp.Close()
	_ = os.Remove(tmp.Name())
	return nil
}
