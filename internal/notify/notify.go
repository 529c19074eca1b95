package notify

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/hoistdev/hoist/internal/branding"
	"github.com/hoistdev/hoist/internal/upgrade"
)

// VersionLister yields release tags, newest first.
type VersionLister interface {
	ListVersions(ctx context.Context) ([]string, error)
}

// Checker compares the running hoist version against the newest release
// and maintains the version cache.
type Checker struct {
	current string
	lister  VersionLister
}

// NewChecker builds a checker for the given running version.
func NewChecker(current string, lister VersionLister) *Checker {
	return &Checker{current: current, lister: lister}
}

// ForSelf returns a checker that queries hoist's own repository.
func ForSelf(current string) (*Checker, error) {
	eng, err := upgrade.New(upgrade.Config{
		Tool: branding.CLIName(),
		Repo: branding.GitHubRepo(),
	})
	if err != nil {
		return nil, err
	}
	return NewChecker(current, eng), nil
}

// CheckAndPrintBanner checks the version cache and prints an upgrade banner
// if a newer hoist is available. It never blocks: a stale cache is refreshed
// by a background goroutine for the next invocation.
func (c *Checker) CheckAndPrintBanner(w io.Writer, dir string) {
	cache, err := LoadCache(dir)
	if err != nil {
		// Silently ignore cache errors.
		return
	}

	if cache != nil && cache.UpgradeAvailable {
		PrintUpgradeBanner(w, cache.CurrentVersion, cache.LatestVersion)
	}

	if IsCacheStale(cache, DefaultCacheMaxAge) {
		go c.RefreshCache(dir)
	}
}

// PrintUpgradeBanner prints the upgrade notification to w.
func PrintUpgradeBanner(w io.Writer, current, latest string) {
	fmt.Fprintf(w, "\nUpdate available: %s -> %s\n", current, latest)
	fmt.Fprintf(w, "    Run `%s self-update` to upgrade\n\n", branding.CLIName())
}

// RefreshCache fetches the newest release tag and rewrites the cache file.
// It runs in a background goroutine and never fails loudly.
func (c *Checker) RefreshCache(dir string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	versions, err := c.lister.ListVersions(ctx)
	if err != nil || len(versions) == 0 {
		return
	}
	latest := versions[0]

	// Unparsable versions (dev builds) never trigger the banner.
	available, err := upgrade.IsNewer(c.current, latest)
	if err != nil {
		available = false
	}

	cache := &VersionCache{
		LatestVersion:    latest,
		CurrentVersion:   c.current,
		CheckedAt:        time.Now(),
		UpgradeAvailable: available,
	}

	// Silently ignore save errors.
	_ = SaveCache(dir, cache)
}
