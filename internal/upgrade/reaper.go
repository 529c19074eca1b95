package upgrade

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Reap deletes stash files left under dir by a previous run: every file
// whose base name contains suffix. Only regular files are reaped; a
// directory whose name carries the suffix is left alone, since the installer
// never stashes directories. A destination that does not exist yet is the
// first-install case and a no-op, as are files already gone by the time
// they are removed. Idempotent.
func Reap(dir, suffix string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if errors.Is(walkErr, fs.ErrNotExist) {
				return nil
			}
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		if !strings.Contains(d.Name(), suffix) {
			return nil
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		return nil
	})
}

// reapStale runs the stale-file cleanup as the first step of an upgrade.
func (e *Engine) reapStale() error {
	if err := Reap(e.dir, e.cfg.StashSuffix); err != nil {
		return newError(CodeCleanupFailed, err, "cleaning stale files",
			map[string]any{"dir": e.dir, "suffix": e.cfg.StashSuffix})
	}
	return nil
}
