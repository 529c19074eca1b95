package toolspec

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"go.yaml.in/yaml/v3"

	"github.com/hoistdev/hoist/internal/paths"
)

// Format represents the on-disk encoding of a tools file.
type Format int

const (
	FormatUnknown Format = iota
	FormatYAML
	FormatTOML
	FormatJSON
)

// String returns the conventional lowercase name of the format.
func (f Format) String() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatTOML:
		return "toml"
	case FormatJSON:
		return "json"
	default:
		return "unknown"
	}
}

// DetectFormat determines the tools-file format from the path extension,
// falling back to content sniffing for unrecognized extensions.
func DetectFormat(path string, content []byte) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	case ".json":
		return FormatJSON
	}
	return sniffFormat(content)
}

// sniffFormat attempts to detect the format from content alone.
func sniffFormat(content []byte) Format {
	trimmed := strings.TrimSpace(string(content))

	// JSON documents start with { or [.
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		return FormatJSON
	}

	// TOML uses [sections] and key = value; YAML uses key: value.
	for _, line := range strings.Split(trimmed, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "[") || strings.Contains(line, " = ") {
			return FormatTOML
		}
		if strings.Contains(line, ":") && !strings.Contains(line, "=") {
			return FormatYAML
		}
	}

	if strings.Contains(trimmed, ":") {
		return FormatYAML
	}
	return FormatUnknown
}

// Parse decodes tools-file content in the given format.
func Parse(data []byte, format Format) (*File, error) {
	var f File
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("YAML parse error: %w", err)
		}
	case FormatTOML:
		if err := toml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("TOML parse error: %w", err)
		}
	case FormatJSON:
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("JSON parse error: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown tools file format")
	}
	return &f, nil
}

// ParseFile reads a tools file, detects its format, and decodes it.
func ParseFile(path string) (*File, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	f, err := Parse(data, DetectFormat(path, data))
	if err != nil {
		return nil, fmt.Errorf("parsing tools file %s: %w", path, err)
	}
	return f, nil
}

// Load locates the tools file via the usual lookup (HOIST_TOOLS, then the
// hoist home) and parses it. The returned path is where the file was found.
func Load() (*File, string, error) {
	path, err := paths.ToolsFile()
	if err != nil {
		return nil, "", err
	}
	f, err := ParseFile(path)
	if err != nil {
		return nil, path, err
	}
	return f, path, nil
}

// Save encodes the tools file in the format implied by the path extension
// and writes it. Unrecognized extensions are written as YAML.
func Save(path string, f *File) error {
	var (
		data []byte
		err  error
	)
	switch DetectFormat(path, nil) {
	case FormatTOML:
		data, err = toml.Marshal(f)
	case FormatJSON:
		data, err = json.MarshalIndent(f, "", "  ")
		if err == nil {
			data = append(data, '\n')
		}
	default:
		data, err = yaml.Marshal(f)
	}
	if err != nil {
		return fmt.Errorf("encoding tools file: %w", err)
	}
	if err := os.WriteFile(path, data, paths.FilePermNormal); err != nil {
		return fmt.Errorf("writing tools file %s: %w", path, err)
	}
	return nil
}

// readFile reads the contents of a file at the given path.
func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}
	return data, nil
}
