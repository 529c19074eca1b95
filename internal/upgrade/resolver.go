package upgrade

import (
	"fmt"
	"strings"

	"github.com/hoistdev/hoist/internal/platform"
)

// ResolveAsset maps an OS/arch pair to the artifact name the release is
// expected to carry, per the caller-supplied platform-to-asset table.
// Lookup prefers the compound "os-arch" key (including alias spellings such
// as linux-x86_64), then falls back to the OS alone for tables that do not
// distinguish architectures. A platform with no mapping yields an Error
// with CodeAssetNotMapped; this function performs no I/O.
func ResolveAsset(goos, goarch string, assets map[string]string) (string, error) {
	normalized := make(map[string]string, len(assets))
	for k, v := range assets {
		normalized[strings.ToLower(strings.TrimSpace(k))] = v
	}

	candidates := platform.KeyCandidates(goos, goarch)
	for _, key := range candidates {
		if name, ok := normalized[key]; ok && name != "" {
			return name, nil
		}
	}

	return "", newError(CodeAssetNotMapped, nil,
		fmt.Sprintf("no asset mapped for platform %s", platform.KeyFor(goos, goarch)),
		map[string]any{
			"platform": platform.KeyFor(goos, goarch),
			"tried":    candidates,
		})
}
