package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hoistdev/hoist/internal/upgrade"
)

var checkPre bool

func init() {
	checkCmd.Flags().BoolVar(&checkPre, "prereleases", false, "Consider prerelease versions")
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check [tool...]",
	Short: "Report available upgrades without installing",
	Long: `Compare each tool's recorded version against the newest eligible
release. Nothing is downloaded or installed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _, err := loadToolsFile()
		if err != nil {
			return err
		}
		specs, err := selectTools(file, args, false, true)
		if err != nil {
			return err
		}

		var firstFailure error
		for _, spec := range specs {
			cfg := baseConfig(spec)
			if cmd.Flags().Changed("prereleases") {
				cfg.IncludePrereleases = checkPre
			}

			eng, err := upgrade.New(cfg, upgrade.WithLogger(appLogger()))
			if err == nil {
				var versions []string
				versions, err = eng.ListVersions(cmd.Context())
				if err == nil {
					fmt.Println(checkLine(spec.Name, spec.Version, versions))
					continue
				}
			}

			fmt.Printf("%s %v\n", errorStyle.Render(spec.Name+":"), err)
			if firstFailure == nil {
				firstFailure = err
			}
		}

		if firstFailure != nil {
			return failure(firstFailure)
		}
		return nil
	},
}

// checkLine renders one tool's upgrade status.
func checkLine(name, pinned string, versions []string) string {
	if len(versions) == 0 {
		return fmt.Sprintf("%s %s", titleStyle.Render(name+":"), warningStyle.Render("no releases"))
	}
	latest := versions[0]

	if pinned == "" {
		return fmt.Sprintf("%s not installed %s", titleStyle.Render(name+":"),
			subtitleStyle.Render("(latest "+latest+")"))
	}

	newer, err := upgrade.IsNewer(pinned, latest)
	if err != nil {
		return fmt.Sprintf("%s latest %s %s", titleStyle.Render(name+":"),
			cmdStyle.Render(latest), subtitleStyle.Render("(installed "+pinned+")"))
	}
	if newer {
		return fmt.Sprintf("%s upgrade available %s -> %s", titleStyle.Render(name+":"),
			subtitleStyle.Render(pinned), cmdStyle.Render(latest))
	}
	return fmt.Sprintf("%s %s %s", titleStyle.Render(name+":"),
		successStyle.Render("up to date"), subtitleStyle.Render("("+pinned+")"))
}
