// Package rules loads category and classification rule configuration from YAML.
package rules

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/emiliopalmerini/mfocus/internal/domain"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// File is the YAML document describing categories and rules.
type File struct {
	Categories []domain.Category `yaml:"categories"`
	Rules      []domain.Rule     `yaml:"rules"`
}

// CategorySet builds the category set described by the file.
func (f File) CategorySet() (*domain.CategorySet, error) {
	return domain.NewCategorySet(f.Categories)
}

// Parse decodes a rules document.
func Parse(data []byte) (File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("parsing rules: %w", err)
	}
	for i := range f.Rules {
		kind, err := domain.ParseMatchKind(string(f.Rules[i].Kind))
		if err != nil {
			return File{}, fmt.Errorf("rule %d: %w", i+1, err)
		}
		f.Rules[i].Kind = kind
	}
	return f, nil
}

// Default returns the built-in categories and rules.
func Default() File {
	f, err := Parse(defaultsYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded defaults.yaml is invalid: %v", err))
	}
	return f
}

// Load reads the rules file at path. An empty path returns Default.
func Load(path string) (File, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("reading rules file: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return File{}, fmt.Errorf("%s: %w", path, err)
	}
	if len(f.Categories) == 0 {
		f.Categories = Default().Categories
	}
	return f, nil
}

// Marshal encodes f as YAML.
func Marshal(f File) ([]byte, error) {
	return yaml.Marshal(f)
}
