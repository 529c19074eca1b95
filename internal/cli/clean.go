package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hoistdev/hoist/internal/branding"
	"github.com/hoistdev/hoist/internal/paths"
	"github.com/hoistdev/hoist/internal/upgrade"
)

func init() {
	rootCmd.AddCommand(cleanCmd)
}

var cleanCmd = &cobra.Command{
	Use:   "clean [tool...]",
	Short: "Remove stashed previous versions",
	Long: `Delete the stash files a previous upgrade left behind. Without
arguments every tool's directory is cleaned. Upgrades run this pass
automatically; clean exists for reclaiming space between them.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _, err := loadToolsFile()
		if err != nil {
			return err
		}
		specs, err := selectTools(file, args, false, true)
		if err != nil {
			return err
		}

		for _, spec := range specs {
			dir, err := paths.ExpandHome(spec.Dir)
			if err != nil {
				return err
			}
			if err := upgrade.Reap(dir, branding.StashSuffix()); err != nil {
				return fmt.Errorf("cleaning %s: %w", spec.Name, err)
			}
			fmt.Printf("%s %s\n", successStyle.Render("cleaned"), dir)
		}
		return nil
	},
}
