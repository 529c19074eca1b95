package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/hoistdev/hoist/internal/branding"
	"github.com/hoistdev/hoist/internal/config"
	"github.com/hoistdev/hoist/internal/notify"
	"github.com/hoistdev/hoist/internal/platform"
	"github.com/hoistdev/hoist/internal/upgrade"
)

var (
	selfCheck  bool
	selfTarget string
)

func init() {
	selfUpdateCmd.Flags().BoolVar(&selfCheck, "check", false, "Only check for updates, don't install")
	selfUpdateCmd.Flags().StringVar(&selfTarget, "target", upgrade.TargetLatest, "Version to install (tag or \"latest\")")
	rootCmd.AddCommand(selfUpdateCmd)
}

var selfUpdateCmd = &cobra.Command{
	Use:   "self-update",
	Short: "Update " + branding.CLIName() + " to the latest version",
	Long: `Download and install a new ` + branding.CLIName() + ` from its GitHub releases,
replacing the running binary through the same engine that upgrades
managed tools. The previous binary stays stashed next to the new one
until the next self-update.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		exe, err := os.Executable()
		if err != nil {
			return fmt.Errorf("finding current binary: %w", err)
		}
		exe, err = filepath.EvalSymlinks(exe)
		if err != nil {
			return fmt.Errorf("resolving current binary: %w", err)
		}

		cfg := upgrade.Config{
			Tool:            branding.CLIName(),
			Repo:            branding.GitHubRepo(),
			Dir:             filepath.Dir(exe),
			Assets:          selfAssetMap(),
			CurrentVersion:  buildVersion,
			VerifyChecksums: true,
			ShowProgress:    true,
		}

		if selfCheck {
			return runSelfCheck(cmd, cfg)
		}

		eng, err := upgrade.New(cfg,
			upgrade.WithLogger(appLogger()),
			upgrade.WithProgress(progressPrinter(os.Stderr)))
		if err != nil {
			return failure(err)
		}

		fmt.Fprintf(os.Stderr, "Downloading %s %s for %s/%s...\n",
			branding.CLIName(), selfTarget, runtime.GOOS, runtime.GOARCH)

		result, err := eng.ResolveAndInstall(cmd.Context(), selfTarget)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return failure(err)
		}
		_ = os.RemoveAll(result.StagingDir)

		// The freshly installed version is current; quiet the banner.
		cache := notify.VersionCache{
			LatestVersion:  result.To,
			CurrentVersion: result.To,
			CheckedAt:      time.Now(),
		}
		_ = notify.SaveCache(config.Dir(), &cache)

		fmt.Printf("%s\n", successStyle.Render(fmt.Sprintf("Successfully updated to %s", result.To)))
		return nil
	},
}

// runSelfCheck reports whether a newer release exists without installing.
func runSelfCheck(cmd *cobra.Command, cfg upgrade.Config) error {
	eng, err := upgrade.New(cfg, upgrade.WithLogger(appLogger()))
	if err != nil {
		return failure(err)
	}
	versions, err := eng.ListVersions(cmd.Context())
	if err != nil {
		return failure(err)
	}
	if len(versions) == 0 {
		fmt.Println(warningStyle.Render("no releases found"))
		return nil
	}

	latest := versions[0]
	newer, err := upgrade.IsNewer(buildVersion, latest)
	if err != nil {
		// Dev builds have no comparable version; report what exists.
		fmt.Printf("Current version: %s\nLatest version:  %s\n", buildVersion, latest)
		return nil
	}
	if newer {
		fmt.Printf("Update available: %s -> %s\n", buildVersion, cmdStyle.Render(latest))
		fmt.Printf("Run `%s self-update` to upgrade\n", branding.CLIName())
		return nil
	}
	fmt.Printf("You are on the latest version (%s)\n", buildVersion)
	return nil
}

// selfAssetMap names hoist's own release artifact for this platform,
// following the usual name_os_arch archive convention.
func selfAssetMap() map[string]string {
	ext := ".tar.gz"
	if platform.IsWindows() {
		ext = ".zip"
	}
	name := fmt.Sprintf("%s_%s_%s%s", branding.CLIName(), runtime.GOOS, runtime.GOARCH, ext)
	return map[string]string{platform.Key(): name}
}
