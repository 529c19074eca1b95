package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hoistdev/hoist/internal/branding"
)

// File name constants for the hoist home directory layout.
const (
	ToolsFileBase    = "tools"
	VersionCheckFile = "version-check.json"
)

// Permission constants.
const (
	DirPermNormal  os.FileMode = 0755
	FilePermNormal os.FileMode = 0644
	ExecPerm       os.FileMode = 0755
)

// toolsExtensions lists the accepted tools-file extensions in lookup order.
var toolsExtensions = []string{".yaml", ".yml", ".toml", ".json"}

// Home returns the path to the hoist home directory.
// It checks the HOIST_HOME environment variable first,
// then falls back to ~/.hoist.
func Home() (string, error) {
	if v := os.Getenv(branding.EnvVar("HOME")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, branding.HomeDir()), nil
}

// ToolsFile returns the path to the managed-tools file.
// It checks the HOIST_TOOLS environment variable first, then looks for
// tools.yaml, tools.yml, tools.toml, or tools.json under the hoist home,
// and defaults to tools.yaml when none exists yet.
func ToolsFile() (string, error) {
	if v := os.Getenv(branding.EnvVar("TOOLS")); v != "" {
		return v, nil
	}
	root, err := Home()
	if err != nil {
		return "", err
	}
	for _, ext := range toolsExtensions {
		candidate := filepath.Join(root, ToolsFileBase+ext)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return filepath.Join(root, ToolsFileBase+toolsExtensions[0]), nil
}

// ExpandHome resolves a leading "~" or "~/" segment against the user's
// home directory. Paths without the prefix are returned unchanged.
func ExpandHome(path string) (string, error) {
	if path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		return home, nil
	}
	if strings.HasPrefix(path, "~/") || strings.HasPrefix(path, `~\`) {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		return filepath.Join(home, path[2:]), nil
	}
	return path, nil
}

// EnsureHome creates the hoist home directory if it does not exist.
func EnsureHome() (string, error) {
	root, err := Home()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(root, DirPermNormal); err != nil {
		return "", fmt.Errorf("creating home directory %s: %w", root, err)
	}
	return root, nil
}
