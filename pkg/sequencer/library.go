package sequencer

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
)

// Library resolves a pattern name to its fragment. A missing name must be
// a PatternNotFoundError, never a silent empty pattern.
type Library interface {
	Find(name string) (*Pattern, error)
}

// DirLibrary looks patterns up as <name>.yml files under a list of library
// root directories, first match wins.
type DirLibrary struct {
	Roots []string
}

// Find implements Library.
func (d DirLibrary) Find(name string) (*Pattern, error) {
	for _, root := range d.Roots {
		path := filepath.Join(root, name+".yml")
		if _, err := os.Stat(path); err == nil {
			return LoadPattern(path)
		}
	}
	return nil, &PatternNotFoundError{Name: name, Roots: d.Roots}
}

// MapLibrary serves patterns from memory, mainly for tests and embedding.
type MapLibrary map[string]Pattern

// Find implements Library.
func (m MapLibrary) Find(name string) (*Pattern, error) {
	p, ok := m[name]
	if !ok {
		return nil, &PatternNotFoundError{Name: name}
	}
	return &p, nil
}

// LoadPattern reads one pattern fragment from a YAML file.
func LoadPattern(path string) (*Pattern, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read pattern file %q: %w", path, err)
	}
	var p Pattern
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("cannot parse pattern file %q: %w", path, err)
	}
	return &p, nil
}

// LoadSequence parses a YAML bar sequence.
func LoadSequence(data []byte) (*Sequence, error) {
	var s Sequence
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("cannot parse sequence: %w", err)
	}
	return &s, nil
}

// LoadSequenceFile reads and parses a YAML bar sequence file.
func LoadSequenceFile(path string) (*Sequence, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read sequence file %q: %w", path, err)
	}
	return LoadSequence(data)
}
