package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	toml "github.com/pelletier/go-toml/v2"
)

// ReloadDeclarationFile is the default filename for per-package reload
// declarations, placed next to the package being reloaded.
const ReloadDeclarationFile = "RELOAD.toml"

// Declaration represents a RELOAD.toml file. It lets a package pin reload
// behavior in the tree instead of per-host configuration.
type Declaration struct {
	// Version is the schema version
	Version int `toml:"version"`

	// Skip lists dotted module paths never reloaded, even in-boundary.
	// Typical entries are modules with load-once side effects.
	Skip []string `toml:"skip,omitempty"`
}

// ParseDeclaration parses a RELOAD.toml file from the given path
func ParseDeclaration(filePath string) (*Declaration, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read RELOAD.toml: %w", err)
	}

	var decl Declaration
	if err := toml.Unmarshal(data, &decl); err != nil {
		return nil, fmt.Errorf("failed to parse RELOAD.toml: %w", err)
	}

	if decl.Version < 1 {
		decl.Version = 1
	}
	return &decl, nil
}

// LoadDeclaration loads RELOAD.toml from dir if it exists. A missing file is
// not an error; it returns nil.
func LoadDeclaration(dir string) (*Declaration, error) {
	filePath := filepath.Join(dir, ReloadDeclarationFile)
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil, nil
	}
	return ParseDeclaration(filePath)
}

// WriteDeclaration writes a Declaration to the given path
func WriteDeclaration(filePath string, decl *Declaration) error {
	data, err := toml.Marshal(decl)
	if err != nil {
		return fmt.Errorf("failed to marshal RELOAD.toml: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write RELOAD.toml: %w", err)
	}
	return nil
}

// EffectiveSkip merges the configured skip list with a declaration's,
// deduplicated and sorted for stable downstream behavior.
func (c *Config) EffectiveSkip(decl *Declaration) []string {
	set := make(map[string]bool)
	for _, s := range c.Reload.Skip {
		set[s] = true
	}
	if decl != nil {
		for _, s := range decl.Skip {
			set[s] = true
		}
	}

	merged := make([]string, 0, len(set))
	for s := range set {
		merged = append(merged, s)
	}
	sort.Strings(merged)
	return merged
}
