package cli

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/hoistdev/hoist/internal/branding"
	"github.com/hoistdev/hoist/internal/config"
	"github.com/hoistdev/hoist/internal/notify"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string

	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` keeps GitHub-released command-line tools up to date: it resolves
the right release asset for this platform, downloads and extracts it, and
swaps the files into place while keeping the previous version stashed
alongside until the next run.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Skip the banner for commands that manage hoist's own binary or
		// run before any state exists.
		name := cmd.Name()
		if name == "self-update" || name == "init" || name == "version" {
			return
		}

		// Non-blocking banner from the cached version check.
		if checker, err := notify.ForSelf(buildVersion); err == nil {
			checker.CheckAndPrintBanner(os.Stderr, config.Dir())
		}
	},
}

func init() {
	cobra.OnInitialize(config.Load)
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
}

// appLogger returns the logger handed to upgrade engines: debug to stderr
// under --verbose, silent otherwise.
func appLogger() *log.Logger {
	if verbose {
		return log.NewWithOptions(os.Stderr, log.Options{
			Level:  log.DebugLevel,
			Prefix: branding.CLIName(),
		})
	}
	return log.New(io.Discard)
}

// Execute runs the root command with build info injected via ldflags.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(versionString()),
		fang.WithNotifySignal(os.Interrupt),
	)
	if err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		return err
	}
	return nil
}
