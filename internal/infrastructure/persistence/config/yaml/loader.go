// Package yaml provides YAML profile-document loading infrastructure.
package yaml

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kodflow/testjig/internal/domain/profile"
)

// Loader loads a profile document from a YAML file.
type Loader struct {
	lastPath string
}

// New creates a new YAML profile loader.
func New() *Loader {
	return &Loader{}
}

// Load reads and parses a profile document from the given path.
func (l *Loader) Load(path string) (profile.Document, error) {
	data, err := os.ReadFile(path) // #nosec G304 - profile path is trusted input
	if err != nil {
		return profile.Document{}, fmt.Errorf("reading profile file: %w", err)
	}

	doc, err := l.Parse(data)
	if err != nil {
		return profile.Document{}, err
	}

	l.lastPath = path
	return doc, nil
}

// Parse parses a profile document from raw YAML bytes.
func (l *Loader) Parse(data []byte) (profile.Document, error) {
	var doc profile.Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return profile.Document{}, fmt.Errorf("parsing yaml: %w", err)
	}
	return doc, nil
}

// Reload reloads the profile document from the last loaded path.
func (l *Loader) Reload() (profile.Document, error) {
	if l.lastPath == "" {
		return profile.Document{}, ErrNoDocumentLoaded
	}
	return l.Load(l.lastPath)
}
