package inventory

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// CatalogDocument is the on-disk layout of a catalog file.
type CatalogDocument struct {
	Items []ItemDefinition `json:"items" yaml:"items"`
}

// ParseCatalog decodes a YAML catalog document into a new Registry. Unlike
// NewRegistry, any invalid or conflicting definition fails the whole parse.
func ParseCatalog(data []byte) (*Registry, error) {
	var doc CatalogDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	reg := NewRegistry()
	for i, def := range doc.Items {
		if _, dup := reg.Lookup(def.ID); dup {
			return nil, fmt.Errorf("catalog item %d: duplicate id %d", i, def.ID)
		}
		for _, p := range def.Properties {
			if p.Default.Kind == "" {
				return nil, fmt.Errorf("catalog item %d: property %d has no kind", i, p.ID)
			}
		}
		if err := reg.Register(def); err != nil {
			return nil, fmt.Errorf("catalog item %d: %w", i, err)
		}
	}
	return reg, nil
}

// LoadCatalogFile reads and parses a YAML catalog file.
func LoadCatalogFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return ParseCatalog(data)
}
