package upgrade

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// TargetLatest selects the newest eligible version.
const TargetLatest = "latest"

// ListVersions returns the repository's eligible version tags, newest
// first. Draft releases never appear; prereleases appear only when the
// engine was configured to include them. An empty remote release list
// yields an empty slice without error.
func (e *Engine) ListVersions(ctx context.Context) ([]string, error) {
	versions, err := e.listVersions(ctx)
	if err != nil {
		return nil, e.offsetErr(err)
	}
	return versions, nil
}

func (e *Engine) listVersions(ctx context.Context) ([]string, error) {
	releases, err := e.source.ListReleases(ctx)
	if err != nil {
		return nil, newError(bandCode(BandListReleases, httpStatus(err)), err,
			"fetching release list", map[string]any{"repo": e.cfg.Repo})
	}

	var tags []string
	for _, r := range releases {
		if r.Draft {
			continue
		}
		if r.Prerelease && !e.cfg.IncludePrereleases {
			continue
		}
		tags = append(tags, r.TagName)
	}

	sortVersionsDesc(tags)
	return tags, nil
}

// resolveTarget turns a requested target into a concrete tag. "latest" (or
// an empty target) resolves against the version list; any other value is
// used verbatim, leaving existence to the subsequent fetch.
func (e *Engine) resolveTarget(ctx context.Context, target string) (string, error) {
	if target != "" && target != TargetLatest {
		return target, nil
	}

	versions, err := e.listVersions(ctx)
	if err != nil {
		return "", err
	}
	if len(versions) == 0 {
		return "", newError(CodeNoReleases, nil,
			fmt.Sprintf("no releases available for %s", e.cfg.Repo),
			map[string]any{"repo": e.cfg.Repo})
	}
	return versions[0], nil
}

// sortVersionsDesc orders tags by semver precedence, newest first, using a
// stable sort. Tags that do not parse as semver sort after every tag that
// does and keep their original relative order.
func sortVersionsDesc(tags []string) {
	parsed := make(map[string]*semver.Version, len(tags))
	for _, tag := range tags {
		if v, err := semver.NewVersion(strings.TrimPrefix(tag, "v")); err == nil {
			parsed[tag] = v
		}
	}

	slices.SortStableFunc(tags, func(a, b string) int {
		av, bv := parsed[a], parsed[b]
		switch {
		case av != nil && bv != nil:
			return bv.Compare(av)
		case av != nil:
			return -1
		case bv != nil:
			return 1
		default:
			return 0
		}
	})
}

// CompareVersions compares two version strings using semver precedence,
// tolerating a leading "v". Returns -1 if a < b, 0 if equal, 1 if a > b.
func CompareVersions(a, b string) (int, error) {
	av, err := semver.NewVersion(strings.TrimPrefix(a, "v"))
	if err != nil {
		return 0, fmt.Errorf("parsing version %q: %w", a, err)
	}
	bv, err := semver.NewVersion(strings.TrimPrefix(b, "v"))
	if err != nil {
		return 0, fmt.Errorf("parsing version %q: %w", b, err)
	}
	return av.Compare(bv), nil
}

// IsNewer reports whether candidate is strictly newer than current.
func IsNewer(current, candidate string) (bool, error) {
	cmp, err := CompareVersions(current, candidate)
	if err != nil {
		return false, err
	}
	return cmp == -1, nil
}
