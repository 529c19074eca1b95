package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hoistdev/hoist/internal/config"
	"github.com/hoistdev/hoist/internal/upgrade"
)

var (
	versionsLimit int
	versionsPre   bool
)

func init() {
	versionsCmd.Flags().IntVar(&versionsLimit, "limit", 20, "Maximum number of versions to print (0 = all)")
	versionsCmd.Flags().BoolVar(&versionsPre, "prereleases", false, "Include prerelease versions")
	rootCmd.AddCommand(versionsCmd)
}

var versionsCmd = &cobra.Command{
	Use:   "versions <tool>",
	Short: "List a tool's release versions, newest first",
	Long: `List the release versions available for a tool, newest first.
The argument is a tool name from the tools file, or an owner/repo slug
for repositories not listed there.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := versionsConfig(args[0])
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("prereleases") {
			cfg.IncludePrereleases = versionsPre
		}

		eng, err := upgrade.New(cfg, upgrade.WithLogger(appLogger()))
		if err != nil {
			return failure(err)
		}

		versions, err := eng.ListVersions(cmd.Context())
		if err != nil {
			return failure(err)
		}
		if len(versions) == 0 {
			fmt.Println(warningStyle.Render("no releases"))
			return nil
		}

		if versionsLimit > 0 && len(versions) > versionsLimit {
			versions = versions[:versionsLimit]
		}
		for i, v := range versions {
			if i == 0 {
				fmt.Printf("%s %s\n", cmdStyle.Render(v), subtitleStyle.Render("(latest)"))
				continue
			}
			fmt.Println(v)
		}
		return nil
	},
}

// versionsConfig accepts either a tools-file name or a bare owner/repo slug.
func versionsConfig(arg string) (upgrade.Config, error) {
	if strings.Contains(arg, "/") {
		return upgrade.Config{Repo: arg, CodeOffset: config.GetInt("code_offset")}, nil
	}

	file, _, err := loadToolsFile()
	if err != nil {
		return upgrade.Config{}, err
	}
	spec, ok := file.Find(arg)
	if !ok {
		return upgrade.Config{}, fmt.Errorf("unknown tool %q (known: %v)", arg, file.Names())
	}
	return baseConfig(spec), nil
}
