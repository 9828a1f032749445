package suggest

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Question is one entry of the curated follow-up catalog.
type Question struct {
	ID       string `yaml:"id"`
	Question string `yaml:"question"`
	Category string `yaml:"category"`
}

// Snippet is one entry of the salon knowledge base backing semantic search.
type Snippet struct {
	ID      string `yaml:"id"`
	Content string `yaml:"content"`
	Topic   string `yaml:"topic"`
}

// SeedFile is the on-disk seed format: a question catalog plus optional
// knowledge snippets.
type SeedFile struct {
	Questions []Question `yaml:"questions"`
	Knowledge []Snippet  `yaml:"knowledge"`
}

// LoadSeedFile reads and parses a YAML seed file.
func LoadSeedFile(path string) (*SeedFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	var seed SeedFile
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	return &seed, nil
}
