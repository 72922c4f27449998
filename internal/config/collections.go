package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// CollectionConfig describes one document collection the slug engine manages.
type CollectionConfig struct {
	// Name is the collection identifier used in API requests.
	Name string `yaml:"name"`
	// Table overrides the backing table name; defaults to Name.
	Table string `yaml:"table,omitempty"`
}

type collectionsFile struct {
	Collections []CollectionConfig `yaml:"collections"`
}

// LoadCollections reads the collection registry from a YAML file.
// A missing file falls back to a single "pages" collection so a fresh
// checkout runs without configuration.
func LoadCollections(path string) ([]CollectionConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []CollectionConfig{{Name: "pages", Table: "pages"}}, nil
		}
		return nil, fmt.Errorf("read collections file: %w", err)
	}

	var f collectionsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse collections file: %w", err)
	}
	if len(f.Collections) == 0 {
		return nil, fmt.Errorf("collections file %s lists no collections", path)
	}

	for i := range f.Collections {
		if f.Collections[i].Name == "" {
			return nil, fmt.Errorf("collections file %s: entry %d has no name", path, i)
		}
		if f.Collections[i].Table == "" {
			f.Collections[i].Table = f.Collections[i].Name
		}
	}

	return f.Collections, nil
}
