package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hoistdev/hoist/internal/branding"
	"github.com/hoistdev/hoist/internal/paths"
	"github.com/hoistdev/hoist/internal/platform"
	"github.com/hoistdev/hoist/internal/toolspec"
	"github.com/hoistdev/hoist/internal/upgrade"
)

var (
	checkTools    bool
	checkPlatform bool
	checkDirs     bool
	checkStashes  bool
	checkToken    bool
)

func init() {
	doctorCmd.Flags().BoolVar(&checkTools, "check-tools", false, "Validate the tools file against its schema")
	doctorCmd.Flags().BoolVar(&checkPlatform, "check-platform", false, "Verify every tool maps an asset for this platform")
	doctorCmd.Flags().BoolVar(&checkDirs, "check-dirs", false, "Verify destination directories are writable")
	doctorCmd.Flags().BoolVar(&checkStashes, "check-stashes", false, "Report leftover stashed versions")
	doctorCmd.Flags().BoolVar(&checkToken, "check-token", false, "Report GitHub token presence")
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Health check for the " + branding.CLIName() + " setup",
	Long:  `Run diagnostic checks on the tools file, platform mappings, and install directories.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		anyFlag := checkTools || checkPlatform || checkDirs || checkStashes || checkToken

		// If no specific flag, run all checks.
		if !anyFlag {
			file := runToolsFileCheck()
			if file != nil {
				runPlatformCheck(file)
				runDirsCheck(file)
				runStashCheck(file)
			}
			runTokenCheck()
			return nil
		}

		var file *toolspec.File
		if checkTools || checkPlatform || checkDirs || checkStashes {
			file = runToolsFileCheck()
			if file == nil && (checkPlatform || checkDirs || checkStashes) {
				return fmt.Errorf("tools file checks need a parseable tools file")
			}
		}

		if checkPlatform {
			runPlatformCheck(file)
		}
		if checkDirs {
			runDirsCheck(file)
		}
		if checkStashes {
			runStashCheck(file)
		}
		if checkToken {
			runTokenCheck()
		}
		return nil
	},
}

// runToolsFileCheck parses and validates the tools file, returning it when
// usable and nil otherwise.
func runToolsFileCheck() *toolspec.File {
	fmt.Println("Tools file check:")

	path, err := paths.ToolsFile()
	if err != nil {
		fmt.Printf("  [FAIL] cannot locate tools file: %v\n", err)
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		fmt.Printf("  [MISS] %s not found (run '%s init')\n", path, branding.CLIName())
		return nil
	}

	result, err := toolspec.ValidateFile(path)
	if err != nil {
		fmt.Printf("  [FAIL] cannot validate %s: %v\n", path, err)
		return nil
	}
	if !result.Valid {
		fmt.Printf("  [FAIL] %d validation issue(s) in %s:\n", len(result.Issues), path)
		for _, issue := range result.Issues {
			if issue.Path != "" {
				fmt.Printf("    - %s: %s\n", issue.Path, issue.Message)
			} else {
				fmt.Printf("    - %s\n", issue.Message)
			}
		}
		return nil
	}

	file, err := toolspec.ParseFile(path)
	if err != nil {
		fmt.Printf("  [FAIL] cannot parse %s: %v\n", path, err)
		return nil
	}

	fmt.Printf("  [ OK ] %s is valid (%d tools)\n", path, len(file.Tools))
	return file
}

func runPlatformCheck(file *toolspec.File) {
	fmt.Printf("Platform check (%s/%s):\n", runtime.GOOS, runtime.GOARCH)
	if len(file.Tools) == 0 {
		fmt.Println("  [INFO] no tools declared")
		return
	}
	for _, spec := range file.Tools {
		asset, err := upgrade.ResolveAsset(runtime.GOOS, runtime.GOARCH, spec.Assets)
		if err != nil {
			fmt.Printf("  [FAIL] %s: no asset mapped for %s\n", spec.Name, platform.Key())
			continue
		}
		fmt.Printf("  [ OK ] %s: %s\n", spec.Name, asset)
	}
}

func runDirsCheck(file *toolspec.File) {
	fmt.Println("Destination check:")
	for _, spec := range file.Tools {
		dir, err := paths.ExpandHome(spec.Dir)
		if err != nil {
			fmt.Printf("  [FAIL] %s: %v\n", spec.Name, err)
			continue
		}
		info, err := os.Stat(dir)
		if err != nil {
			fmt.Printf("  [WARN] %s: %s does not exist yet (created on first install)\n", spec.Name, dir)
			continue
		}
		if !info.IsDir() {
			fmt.Printf("  [FAIL] %s: %s is not a directory\n", spec.Name, dir)
			continue
		}
		if err := probeWritable(dir); err != nil {
			fmt.Printf("  [FAIL] %s: %s is not writable: %v\n", spec.Name, dir, err)
			continue
		}
		fmt.Printf("  [ OK ] %s: %s\n", spec.Name, dir)
	}
}

func runStashCheck(file *toolspec.File) {
	fmt.Println("Stash check:")
	found := false
	for _, spec := range file.Tools {
		dir, err := paths.ExpandHome(spec.Dir)
		if err != nil {
			continue
		}
		n, err := countStashes(dir, branding.StashSuffix())
		if err != nil || n == 0 {
			continue
		}
		found = true
		fmt.Printf("  [INFO] %s: %d stashed file(s) in %s (run '%s clean %s')\n",
			spec.Name, n, dir, branding.CLIName(), spec.Name)
	}
	if !found {
		fmt.Println("  [ OK ] no stashed versions lying around")
	}
}

func runTokenCheck() {
	fmt.Println("Token check:")
	if upgrade.TokenFromEnv() != "" {
		fmt.Println("  [ OK ] GitHub token found in environment")
		return
	}
	fmt.Println("  [INFO] no GITHUB_TOKEN/GH_TOKEN set; anonymous rate limits apply and API-mode tools will fail")
}

// probeWritable creates and removes a throwaway file in dir.
func probeWritable(dir string) error {
	f, err := os.CreateTemp(dir, ".doctor-*")
	if err != nil {
		return err
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}

func countStashes(dir, suffix string) (int, error) {
	count := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if errors.Is(walkErr, fs.ErrNotExist) {
				return nil
			}
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		if strings.Contains(d.Name(), suffix) {
			count++
		}
		return nil
	})
	return count, err
}
