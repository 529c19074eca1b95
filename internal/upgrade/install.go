package upgrade

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/hoistdev/hoist/internal/paths"
	"github.com/hoistdev/hoist/internal/platform"
)

// installTree swaps every regular file under treeDir into destDir. For each
// file the existing destination version, when present, is first renamed to
// its stash sibling (path + stash suffix); the staged file is then renamed
// into place and marked executable. Renames keep the swap atomic on a
// single filesystem volume; cross-volume destinations are unsupported.
//
// Returns the destination-relative paths installed, in walk order.
func (e *Engine) installTree(treeDir, destDir string) ([]string, error) {
	var installed []string

	err := filepath.WalkDir(treeDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return newError(BandInstall, walkErr, "reading staged tree",
				map[string]any{"dir": treeDir})
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(treeDir, path)
		if err != nil {
			return newError(BandInstall, err, "resolving staged path",
				map[string]any{"path": path})
		}
		dest := filepath.Join(destDir, rel)

		if err := os.MkdirAll(filepath.Dir(dest), paths.DirPermNormal); err != nil {
			return newError(BandInstall, err,
				fmt.Sprintf("creating destination directory for %s", rel),
				map[string]any{"file": rel, "dir": filepath.Dir(dest)})
		}

		stash := dest + e.cfg.StashSuffix
		stashed := true
		if err := os.Rename(dest, stash); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return newError(BandStash, err,
					fmt.Sprintf("preserving previous version of %s", rel),
					map[string]any{"file": rel, "stash": stash})
			}
			// First install of this file; nothing to preserve.
			stashed = false
		}

		if err := os.Rename(path, dest); err != nil {
			meta := map[string]any{"file": rel, "dest": dest}
			if stashed {
				meta["restored"] = restoreStash(stash, dest) == nil
			}
			return newError(BandInstall, err,
				fmt.Sprintf("installing %s", rel), meta)
		}

		if err := platform.Chmod(dest, paths.ExecPerm); err != nil {
			return newError(BandInstall, err,
				fmt.Sprintf("marking %s executable", rel),
				map[string]any{"file": rel, "dest": dest})
		}

		installed = append(installed, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return installed, nil
}

// restoreStash moves a just-created stash back over its destination after a
// failed install rename. Best effort; the caller records the outcome.
func restoreStash(stash, dest string) error {
	return os.Rename(stash, dest)
}
