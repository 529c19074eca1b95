package notify

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hoistdev/hoist/internal/paths"
)

// DefaultCacheMaxAge is the default maximum age for the version cache.
const DefaultCacheMaxAge = 24 * time.Hour

// VersionCache holds cached version check results for hoist itself.
type VersionCache struct {
	LatestVersion    string    `json:"latest_version"`
	CurrentVersion   string    `json:"current_version"`
	CheckedAt        time.Time `json:"checked_at"`
	UpgradeAvailable bool      `json:"upgrade_available"`
}

// LoadCache reads the version cache from the given directory.
// Returns nil, nil if the cache file does not exist (first run).
func LoadCache(dir string) (*VersionCache, error) {
	path := filepath.Join(dir, paths.VersionCheckFile)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading version cache: %w", err)
	}

	var cache VersionCache
	if err := json.Unmarshal(data, &cache); err != nil {
		return nil, fmt.Errorf("parsing version cache: %w", err)
	}
	return &cache, nil
}

// SaveCache writes the version cache to the given directory.
func SaveCache(dir string, cache *VersionCache) error {
	if err := os.MkdirAll(dir, paths.DirPermNormal); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	data, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling version cache: %w", err)
	}

	path := filepath.Join(dir, paths.VersionCheckFile)
	if err := os.WriteFile(path, data, paths.FilePermNormal); err != nil {
		return fmt.Errorf("writing version cache: %w", err)
	}
	return nil
}

// IsCacheStale returns true if the cache is older than maxAge or nil.
func IsCacheStale(cache *VersionCache, maxAge time.Duration) bool {
	if cache == nil {
		return true
	}
	return time.Since(cache.CheckedAt) > maxAge
}
