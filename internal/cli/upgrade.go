package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hoistdev/hoist/internal/branding"
	"github.com/hoistdev/hoist/internal/toolspec"
	"github.com/hoistdev/hoist/internal/upgrade"
)

var (
	upgradeAll     bool
	upgradeTarget  string
	upgradeRepo    string
	upgradeDir     string
	upgradeAssets  []string
	upgradeVerify  bool
	upgradeAPI     bool
	upgradePre     bool
	upgradeNoClean bool
	upgradeQuiet   bool
)

func init() {
	f := upgradeCmd.Flags()
	f.BoolVar(&upgradeAll, "all", false, "Upgrade every tool in the tools file")
	f.StringVar(&upgradeTarget, "target", upgrade.TargetLatest, "Version to install (tag or \"latest\")")
	f.StringVar(&upgradeRepo, "repo", "", "Ad-hoc mode: GitHub repository (owner/name), no tools file needed")
	f.StringVar(&upgradeDir, "dir", "", "Ad-hoc mode: installation directory")
	f.StringArrayVar(&upgradeAssets, "asset", nil, "Ad-hoc mode: platform=asset mapping (repeatable)")
	f.BoolVar(&upgradeVerify, "verify", false, "Require a matching checksums.txt entry")
	f.BoolVar(&upgradeAPI, "api", false, "Download assets through the authenticated GitHub API")
	f.BoolVar(&upgradePre, "prereleases", false, "Allow prerelease versions")
	f.BoolVar(&upgradeNoClean, "no-clean", false, "Skip the stash cleanup pass before installing")
	f.BoolVar(&upgradeQuiet, "quiet", false, "Suppress progress output")
	rootCmd.AddCommand(upgradeCmd)
}

var upgradeCmd = &cobra.Command{
	Use:   "upgrade [tool...]",
	Short: "Upgrade managed tools from their GitHub releases",
	Long: `Upgrade one or more managed tools to the target version.

Each tool is upgraded in sequence: stale stash files are cleaned, the
release asset for this platform is downloaded and extracted, and the new
files are swapped into place with the previous version stashed alongside.

  ` + branding.CLIName() + ` upgrade kat            # one tool from the tools file
  ` + branding.CLIName() + ` upgrade --all          # everything in the tools file
  ` + branding.CLIName() + ` upgrade kat --target v1.4.0
  ` + branding.CLIName() + ` upgrade --repo acme/kat --dir ~/.local/bin --asset linux-amd64=kat.tar.gz`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if upgradeRepo != "" {
			spec, err := adhocSpec(args)
			if err != nil {
				return err
			}
			if _, err := upgradeOne(cmd.Context(), cmd, spec); err != nil {
				return failure(err)
			}
			return nil
		}

		file, path, err := loadToolsFile()
		if err != nil {
			return err
		}
		specs, err := selectTools(file, args, upgradeAll, false)
		if err != nil {
			return err
		}

		var firstFailure error
		changed := false
		for _, spec := range specs {
			result, err := upgradeOne(cmd.Context(), cmd, spec)
			if err != nil {
				fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("%s: %v", spec.Name, err)))
				if firstFailure == nil {
					firstFailure = err
				}
				continue
			}
			if result.To != spec.Version {
				spec.Version = result.To
				changed = true
			}
		}

		// Record the installed versions back into the tools file.
		if changed {
			if err := toolspec.Save(path, file); err != nil {
				fmt.Fprintln(os.Stderr, warningStyle.Render(fmt.Sprintf("could not record versions: %v", err)))
			}
		}

		if firstFailure != nil {
			return failure(firstFailure)
		}
		return nil
	},
}

// upgradeOne runs a single engine and prints its outcome.
func upgradeOne(ctx context.Context, cmd *cobra.Command, spec *toolspec.ToolSpec) (*upgrade.Result, error) {
	cfg := baseConfig(spec)
	flags := cmd.Flags()
	if flags.Changed("verify") {
		cfg.VerifyChecksums = upgradeVerify
	}
	if flags.Changed("api") {
		cfg.UseAPI = upgradeAPI
	}
	if flags.Changed("prereleases") {
		cfg.IncludePrereleases = upgradePre
	}
	cfg.SkipCleanup = upgradeNoClean
	cfg.ShowProgress = !upgradeQuiet

	opts := []upgrade.Option{upgrade.WithLogger(appLogger())}
	if cfg.ShowProgress {
		opts = append(opts, upgrade.WithProgress(progressPrinter(os.Stderr)))
	}

	eng, err := upgrade.New(cfg, opts...)
	if err != nil {
		return nil, err
	}

	if !upgradeQuiet {
		fmt.Fprintf(os.Stderr, "Upgrading %s...\n", titleStyle.Render(cfg.Tool))
	}

	result, err := eng.ResolveAndInstall(ctx, upgradeTarget)
	if cfg.ShowProgress {
		fmt.Fprintln(os.Stderr)
	}
	if err != nil {
		return nil, err
	}

	_ = os.RemoveAll(result.StagingDir)

	from := result.From
	if from == "" {
		from = "(none)"
	}
	fmt.Printf("%s %s -> %s (%d files)\n",
		successStyle.Render(result.Tool+":"),
		subtitleStyle.Render(from),
		cmdStyle.Render(result.To),
		len(result.FilesInstalled))
	return result, nil
}

// adhocSpec builds a one-off tool entry from the --repo/--dir/--asset flags.
func adhocSpec(args []string) (*toolspec.ToolSpec, error) {
	if upgradeDir == "" {
		return nil, fmt.Errorf("--dir is required with --repo")
	}
	if len(upgradeAssets) == 0 {
		return nil, fmt.Errorf("at least one --asset platform=name mapping is required with --repo")
	}
	if len(args) > 1 {
		return nil, fmt.Errorf("ad-hoc mode takes at most one name argument")
	}

	assets := make(map[string]string, len(upgradeAssets))
	for _, kv := range upgradeAssets {
		key, name, ok := strings.Cut(kv, "=")
		if !ok || key == "" || name == "" {
			return nil, fmt.Errorf("malformed --asset %q, want platform=name", kv)
		}
		assets[key] = name
	}

	name := ""
	if len(args) == 1 {
		name = args[0]
	}
	return &toolspec.ToolSpec{
		Name:   name,
		Repo:   upgradeRepo,
		Dir:    upgradeDir,
		Assets: assets,
	}, nil
}
