package style

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed styles.yaml
var builtinStyles []byte

// document is the top-level layout of a styles file
type document struct {
	Styles []Style `yaml:"styles"`
}

// Load decodes and validates a styles document
func Load(r io.Reader) (*Registry, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &InvalidStyleConfigError{Field: "styles", Reason: "empty document"}
		}
		return nil, &InvalidStyleConfigError{Field: "styles", Reason: fmt.Sprintf("failed to decode YAML: %v", err)}
	}
	if len(doc.Styles) == 0 {
		return nil, &InvalidStyleConfigError{Field: "styles", Reason: "no styles defined"}
	}

	return NewRegistry(doc.Styles...)
}

// LoadFile reads a styles file from disk
func LoadFile(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open styles file: %w", err)
	}
	defer f.Close()

	reg, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return reg, nil
}

var defaultRegistry = sync.OnceValues(func() (*Registry, error) {
	return Load(bytes.NewReader(builtinStyles))
})

// Default returns the built-in style registry
func Default() *Registry {
	reg, err := defaultRegistry()
	if err != nil {
		panic(fmt.Sprintf("built-in styles are invalid: %v", err))
	}
	return reg
}

// WithOverrides returns the built-in registry overlaid with styles from path; an empty path
// returns the built-ins unchanged.
func WithOverrides(path string) (*Registry, error) {
	if path == "" {
		return Default(), nil
	}
	extra, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return Default().Merge(extra), nil
}
