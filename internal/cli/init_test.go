package cli

import (
	"testing"

	"github.com/hoistdev/hoist/internal/toolspec"
)

// The starter file ships to users, so it has to parse and validate cleanly.
func TestStarterToolsFile(t *testing.T) {
	data := []byte(starterToolsFile())

	if got := toolspec.DetectFormat("tools.yaml", data); got != toolspec.FormatYAML {
		t.Fatalf("DetectFormat() = %v, want YAML", got)
	}

	file, err := toolspec.Parse(data, toolspec.FormatYAML)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(file.Tools) != 1 {
		t.Fatalf("starter file lists %d tools, want 1", len(file.Tools))
	}

	example := file.Tools[0]
	if example.Name != "example" || example.Repo != "owner/example" || example.Dir == "" {
		t.Errorf("starter entry = %+v", example)
	}
	if len(example.Assets) < 3 {
		t.Errorf("starter entry should map several platforms, got %v", example.Assets)
	}

	result, err := toolspec.Validate(data, toolspec.FormatYAML)
	if err != nil {
		t.Fatalf("Validate() error: %v", err)
	}
	if !result.Valid {
		t.Errorf("starter file fails its own schema: %+v", result.Issues)
	}
}
