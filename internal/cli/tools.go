package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/hoistdev/hoist/internal/branding"
	"github.com/hoistdev/hoist/internal/config"
	"github.com/hoistdev/hoist/internal/toolspec"
	"github.com/hoistdev/hoist/internal/upgrade"
)

// loadToolsFile parses the tools file, pointing at init when none exists.
func loadToolsFile() (*toolspec.File, string, error) {
	f, path, err := toolspec.Load()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, "", fmt.Errorf("no tools file found (run '%s init' to create one)", branding.CLIName())
		}
		return nil, "", err
	}
	return f, path, nil
}

// selectTools resolves command arguments against the tools file. With all
// set (or no arguments when allowEmpty), every tool is selected; otherwise
// each named tool must exist.
func selectTools(file *toolspec.File, args []string, all, allowEmpty bool) ([]*toolspec.ToolSpec, error) {
	if all || (len(args) == 0 && allowEmpty) {
		specs := make([]*toolspec.ToolSpec, 0, len(file.Tools))
		for i := range file.Tools {
			specs = append(specs, &file.Tools[i])
		}
		if len(specs) == 0 {
			return nil, fmt.Errorf("the tools file lists no tools")
		}
		return specs, nil
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("name at least one tool or pass --all (known: %v)", file.Names())
	}

	specs := make([]*toolspec.ToolSpec, 0, len(args))
	for _, name := range args {
		spec, ok := file.Find(name)
		if !ok {
			return nil, fmt.Errorf("unknown tool %q (known: %v)", name, file.Names())
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// baseConfig maps a tools-file entry onto an engine configuration.
func baseConfig(spec *toolspec.ToolSpec) upgrade.Config {
	return upgrade.Config{
		Tool:               spec.Name,
		Repo:               spec.Repo,
		Dir:                spec.Dir,
		Assets:             spec.Assets,
		CurrentVersion:     spec.Version,
		IncludePrereleases: spec.Prereleases,
		UseAPI:             spec.API,
		VerifyChecksums:    spec.Verify,
		StashSuffix:        branding.StashSuffix(),
		CodeOffset:         config.GetInt("code_offset"),
	}
}

// progressPrinter renders transfer progress as a single redrawn line.
func progressPrinter(w io.Writer) upgrade.ProgressFunc {
	return func(ev upgrade.ProgressEvent) {
		if ev.BytesTotal > 0 {
			pct := float64(ev.BytesDone) / float64(ev.BytesTotal) * 100
			fmt.Fprintf(w, "\r  downloading %3.0f%% (%s / %s)   ", pct, formatBytes(ev.BytesDone), formatBytes(ev.BytesTotal))
			return
		}
		fmt.Fprintf(w, "\r  downloading %s   ", formatBytes(ev.BytesDone))
	}
}

// formatBytes renders a byte count in binary units.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
