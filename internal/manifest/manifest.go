// Package manifest loads YAML batch manifests that list documents together
// with the source they should be attributed to.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Manifest lists the documents of one batch run.
type Manifest struct {
	Documents []Document `yaml:"documents"`
}

// Document is one manifest entry.
type Document struct {
	Path        string `yaml:"path"`
	SourceID    string `yaml:"source_id"`
	SourceLabel string `yaml:"source_label"`
}

// Load reads and validates the manifest at path. Relative document paths
// are resolved against the manifest's directory. Entries without a
// source_id get SRC_001, SRC_002, ... by position.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	base := filepath.Dir(path)
	for i := range m.Documents {
		if !filepath.IsAbs(m.Documents[i].Path) {
			m.Documents[i].Path = filepath.Join(base, m.Documents[i].Path)
		}
	}
	return m, nil
}

// Parse decodes and validates manifest YAML without touching the filesystem.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	for i := range m.Documents {
		d := &m.Documents[i]
		if d.SourceID == "" {
			d.SourceID = fmt.Sprintf("SRC_%03d", i+1)
		}
		if d.SourceLabel == "" {
			d.SourceLabel = filepath.Base(d.Path)
		}
	}
	return &m, m.Validate()
}

// Validate checks that the manifest is usable.
func (m *Manifest) Validate() error {
	if len(m.Documents) == 0 {
		return fmt.Errorf("no documents listed")
	}
	seen := make(map[string]int, len(m.Documents))
	for i, d := range m.Documents {
		if d.Path == "" {
			return fmt.Errorf("documents[%d]: path is required", i)
		}
		if prev, ok := seen[d.SourceID]; ok {
			return fmt.Errorf("documents[%d]: source_id %q already used by documents[%d]", i, d.SourceID, prev)
		}
		seen[d.SourceID] = i
	}
	return nil
}
