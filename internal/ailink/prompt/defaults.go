package prompt

import (
	"embed"
	"fmt"
)

//go:embed prompts/*.md
var defaultPromptsFS embed.FS

// LoadDefaults loads the embedded prompt set.
func LoadDefaults() ([]*Entry, error) {
	files, err := defaultPromptsFS.ReadDir("prompts")
	if err != nil {
		return nil, fmt.Errorf("read embedded prompts: %w", err)
	}
	results := make([]*Entry, 0, len(files))
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		data, err := defaultPromptsFS.ReadFile("prompts/" + file.Name())
		if err != nil {
			return nil, fmt.Errorf("read embedded prompt %s: %w", file.Name(), err)
		}
		entry, err := Load(file.Name(), data)
		if err != nil {
			return nil, err
		}
		results = append(results, entry)
	}
	return results, nil
}

// DefaultRegistry builds a registry from embedded prompts.
func DefaultRegistry() (*InMemoryRegistry, error) {
	entries, err := LoadDefaults()
	if err != nil {
		return nil, err
	}
	return NewRegistry(entries)
}

// NewRegistryWithOverrides builds the embedded registry with prompts from
// dir layered on top. An empty dir yields the defaults.
func NewRegistryWithOverrides(dir string) (*InMemoryRegistry, error) {
	entries, err := LoadDefaults()
	if err != nil {
		return nil, err
	}
	if dir != "" {
		overrides, err := LoadFromDir(dir)
		if err != nil {
			return nil, err
		}
		entries = Merge(entries, overrides)
	}
	return NewRegistry(entries)
}
