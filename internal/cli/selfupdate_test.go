package cli

import (
	"runtime"
	"strings"
	"testing"

	"github.com/hoistdev/hoist/internal/branding"
	"github.com/hoistdev/hoist/internal/platform"
	"github.com/hoistdev/hoist/internal/upgrade"
)

func TestSelfAssetMap(t *testing.T) {
	assets := selfAssetMap()

	name, ok := assets[platform.Key()]
	if !ok {
		t.Fatalf("map %v has no entry for the running platform %q", assets, platform.Key())
	}
	if !strings.HasPrefix(name, branding.CLIName()+"_") {
		t.Errorf("asset %q should start with the binary name", name)
	}
	if !strings.Contains(name, runtime.GOOS) || !strings.Contains(name, runtime.GOARCH) {
		t.Errorf("asset %q should carry the os and arch", name)
	}
	if runtime.GOOS == "windows" {
		if !strings.HasSuffix(name, ".zip") {
			t.Errorf("asset %q should be a zip on windows", name)
		}
	} else if !strings.HasSuffix(name, ".tar.gz") {
		t.Errorf("asset %q should be a tar.gz", name)
	}
}

func TestSelfAssetMap_ResolvesForRunningPlatform(t *testing.T) {
	name, err := upgrade.ResolveAsset(runtime.GOOS, runtime.GOARCH, selfAssetMap())
	if err != nil {
		t.Fatalf("ResolveAsset() error: %v", err)
	}
	if name == "" {
		t.Error("ResolveAsset() returned an empty asset name")
	}
}
