package upgrade

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// RollbackStash swaps every stash file under dir back over its live
// sibling: the stash becomes the live file and the replaced file becomes
// the stash, so a second rollback restores the starting state. A live file
// that is missing (an install that never finished) is replaced by the stash
// outright. Returns the live paths that were rolled back.
func RollbackStash(dir, suffix string) ([]string, error) {
	var restored []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if errors.Is(walkErr, fs.ErrNotExist) {
				return nil
			}
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		if !strings.HasSuffix(d.Name(), suffix) {
			return nil
		}
		target := strings.TrimSuffix(path, suffix)
		if err := swapFiles(path, target); err != nil {
			return err
		}
		restored = append(restored, target)
		return nil
	})
	return restored, err
}

// swapFiles exchanges stash and target via a transient third name. The
// transient name contains the stash suffix so a crash mid-swap leaves only
// files the next cleanup pass removes.
func swapFiles(stash, target string) error {
	tmp := stash + ".swapping"

	err := os.Rename(target, tmp)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return os.Rename(stash, target)
	case err != nil:
		return err
	}

	if err := os.Rename(stash, target); err != nil {
		_ = os.Rename(tmp, target)
		return err
	}
	return os.Rename(tmp, stash)
}
