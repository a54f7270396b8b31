package persona

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// catalogFile is the on-disk shape of a persona catalog.
type catalogFile struct {
	Personas []Persona `yaml:"personas"`
}

// ParseCatalogYAML decodes and validates a catalog payload.
func ParseCatalogYAML(data []byte) (*Catalog, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("persona: catalog payload is empty")
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("persona: decode catalog: %w", err)
	}

	return NewCatalog(file.Personas...)
}

// LoadCatalogFile reads a YAML catalog from disk.
func LoadCatalogFile(path string) (*Catalog, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("persona: stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("persona: %s is a directory", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("persona: read %s: %w", path, err)
	}

	c, err := ParseCatalogYAML(data)
	if err != nil {
		return nil, fmt.Errorf("persona: %s: %w", path, err)
	}
	return c, nil
}
