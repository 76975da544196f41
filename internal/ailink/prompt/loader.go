package prompt

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

// Load parses and validates a prompt definition from markdown with YAML
// frontmatter. The body is the user template unless user_template is set.
func Load(source string, data []byte) (*Entry, error) {
	config, body, err := parseYAMLWithFrontmatter(data)
	if err != nil {
		return nil, fmt.Errorf("parse prompt %s: %w", source, err)
	}

	if strings.TrimSpace(config.UserTemplate) == "" {
		config.UserTemplate = strings.TrimSpace(body)
	}
	config.SystemTemplate = strings.TrimSpace(config.SystemTemplate)

	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("validate prompt %s: %w", source, err)
	}

	entry, err := newEntry(config, source)
	if err != nil {
		return nil, fmt.Errorf("validate prompt %s: %w", source, err)
	}
	return entry, nil
}

// LoadFromDir reads all prompt files (.md with YAML frontmatter) from a directory.
func LoadFromDir(dir string) ([]*Entry, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.md"))
	if err != nil {
		return nil, fmt.Errorf("scan prompts: %w", err)
	}
	results := make([]*Entry, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path) // #nosec G304 -- prompt directory is operator-provided
		if err != nil {
			return nil, fmt.Errorf("read prompt %s: %w", path, err)
		}
		entry, err := Load(path, data)
		if err != nil {
			return nil, err
		}
		results = append(results, entry)
	}
	return results, nil
}

// Merge returns base with entries replaced or added by overrides, matched
// by slug.
func Merge(base, overrides []*Entry) []*Entry {
	index := make(map[string]int, len(base))
	merged := make([]*Entry, 0, len(base)+len(overrides))
	for _, entry := range base {
		index[entry.Slug] = len(merged)
		merged = append(merged, entry)
	}
	for _, entry := range overrides {
		if i, ok := index[entry.Slug]; ok {
			merged[i] = entry
			continue
		}
		index[entry.Slug] = len(merged)
		merged = append(merged, entry)
	}
	return merged
}

func parseYAMLWithFrontmatter(data []byte) (Config, string, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Config{}, "", fmt.Errorf("empty prompt")
	}

	lines := bufio.NewScanner(bytes.NewReader(trimmed))
	lines.Split(bufio.ScanLines)

	var (
		frontmatter []string
		body        []string
		inFront     bool
		headerSeen  bool
	)

	for lines.Scan() {
		line := lines.Text()
		switch {
		case !headerSeen && strings.TrimSpace(line) == "---":
			headerSeen = true
			inFront = true
		case headerSeen && inFront && strings.TrimSpace(line) == "---":
			inFront = false
		default:
			if inFront {
				frontmatter = append(frontmatter, line)
			} else {
				body = append(body, line)
			}
		}
	}
	if err := lines.Err(); err != nil {
		return Config{}, "", err
	}

	var cfg Config
	if headerSeen {
		if err := yaml.Unmarshal([]byte(strings.Join(frontmatter, "\n")), &cfg); err != nil {
			return Config{}, "", fmt.Errorf("invalid frontmatter: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(trimmed, &cfg); err != nil {
			return Config{}, "", fmt.Errorf("invalid yaml: %w", err)
		}
	}

	return cfg, strings.Join(body, "\n"), nil
}
