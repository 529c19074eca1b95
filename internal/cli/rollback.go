package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hoistdev/hoist/internal/branding"
	"github.com/hoistdev/hoist/internal/paths"
	"github.com/hoistdev/hoist/internal/upgrade"
)

func init() {
	rootCmd.AddCommand(rollbackCmd)
}

var rollbackCmd = &cobra.Command{
	Use:   "rollback <tool>",
	Short: "Swap a tool's stashed previous version back into place",
	Long: `Swap each stashed file in the tool's directory back over its current
sibling. The replaced files become the new stash, so a second rollback
returns to where you started. Stashes survive only until the tool's next
upgrade cleans them up.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _, err := loadToolsFile()
		if err != nil {
			return err
		}
		spec, ok := file.Find(args[0])
		if !ok {
			return fmt.Errorf("unknown tool %q (known: %v)", args[0], file.Names())
		}

		dir, err := paths.ExpandHome(spec.Dir)
		if err != nil {
			return err
		}

		restored, err := upgrade.RollbackStash(dir, branding.StashSuffix())
		if err != nil {
			return fmt.Errorf("rolling back %s: %w", spec.Name, err)
		}
		if len(restored) == 0 {
			fmt.Println(warningStyle.Render("no stashed files to roll back"))
			return nil
		}

		for _, path := range restored {
			fmt.Printf("%s %s\n", successStyle.Render("restored"), path)
		}
		return nil
	},
}
