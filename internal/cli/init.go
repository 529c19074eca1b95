package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hoistdev/hoist/internal/branding"
	"github.com/hoistdev/hoist/internal/paths"
)

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a starter tools file",
	Long: `Create ` + "~/." + branding.CLIName() + `/tools.yaml with a commented example entry.
Edit it to list the tools ` + branding.CLIName() + ` should manage, then run
'` + branding.CLIName() + ` upgrade --all'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := paths.EnsureHome()
		if err != nil {
			return err
		}

		path := filepath.Join(root, paths.ToolsFileBase+".yaml")
		if existing, err := paths.ToolsFile(); err == nil {
			if _, statErr := os.Stat(existing); statErr == nil {
				return fmt.Errorf("tools file already exists: %s", existing)
			}
		}

		if err := os.WriteFile(path, []byte(starterToolsFile()), paths.FilePermNormal); err != nil {
			return fmt.Errorf("writing tools file: %w", err)
		}

		fmt.Printf("Created %s\n", path)
		fmt.Printf("Edit it to describe your tools, then run '%s upgrade --all'.\n", branding.CLIName())
		return nil
	},
}

func starterToolsFile() string {
	return `# Tools managed by ` + branding.CLIName() + `. Each entry maps a GitHub repository's
# release assets onto this machine.
tools:
  - name: example
    repo: owner/example
    dir: ~/.local/bin
    assets:
      linux-amd64: example_linux_amd64.tar.gz
      darwin-amd64: example_darwin_amd64.tar.gz
      darwin-arm64: example_darwin_arm64.tar.gz
      windows-amd64: example_windows_amd64.zip
    # prereleases: true   # allow prerelease versions
    # api: true           # fetch through the authenticated API (private repos)
    # verify: true        # require a checksums.txt entry for the asset
`
}
