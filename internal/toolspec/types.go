package toolspec

// File is the parsed tools file: the set of binaries hoist manages.
type File struct {
	Tools []ToolSpec `yaml:"tools" toml:"tools" json:"tools"`
}

// ToolSpec describes one managed tool.
type ToolSpec struct {
	Name        string            `yaml:"name" toml:"name" json:"name"`
	Repo        string            `yaml:"repo" toml:"repo" json:"repo"`
	Dir         string            `yaml:"dir" toml:"dir" json:"dir"`
	Assets      map[string]string `yaml:"assets" toml:"assets" json:"assets"`
	Prereleases bool              `yaml:"prereleases,omitempty" toml:"prereleases,omitempty" json:"prereleases,omitempty"`
	API         bool              `yaml:"api,omitempty" toml:"api,omitempty" json:"api,omitempty"`
	Verify      bool              `yaml:"verify,omitempty" toml:"verify,omitempty" json:"verify,omitempty"`
	Version     string            `yaml:"version,omitempty" toml:"version,omitempty" json:"version,omitempty"`
}

// Find returns the tool with the given name, or false when absent.
func (f *File) Find(name string) (*ToolSpec, bool) {
	for i := range f.Tools {
		if f.Tools[i].Name == name {
			return &f.Tools[i], true
		}
	}
	return nil, false
}

// Names returns the tool names in file order.
func (f *File) Names() []string {
	names := make([]string, 0, len(f.Tools))
	for i := range f.Tools {
		names = append(names, f.Tools[i].Name)
	}
	return names
}
