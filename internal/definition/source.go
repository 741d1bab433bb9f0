// internal/definition/source.go
package definition

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// DirSource loads definitions from <Dir>/<productcode>.yaml.
// Parsed definitions are cached per product code.
type DirSource struct {
	Dir string

	mu    sync.Mutex
	cache map[string]*Device
}

// NewDirSource returns a source reading from dir.
func NewDirSource(dir string) *DirSource {
	return &DirSource{Dir: dir, cache: make(map[string]*Device)}
}

// Lookup implements Source.
func (s *DirSource) Lookup(productCode string) (*Device, error) {
	key := strings.ToLower(productCode)

	s.mu.Lock()
	defer s.mu.Unlock()

	if d, ok := s.cache[key]; ok {
		return d, nil
	}

	path := filepath.Join(s.Dir, key+".yaml")
	d, err := LoadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, productCode)
	}
	if err != nil {
		return nil, err
	}

	if s.cache == nil {
		s.cache = make(map[string]*Device)
	}
	s.cache[key] = d
	return d, nil
}

// LoadFile parses and validates one definition file.
func LoadFile(path string) (*Device, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var d Device
	if err := yaml.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("definition: parse %s: %w", path, err)
	}
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &d, nil
}

// MapSource is an in-memory Source keyed by product code.
type MapSource map[string]*Device

// Lookup implements Source.
func (m MapSource) Lookup(productCode string) (*Device, error) {
	d, ok := m[strings.ToLower(productCode)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, productCode)
	}
	return d, nil
}
