package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Store is a flat, file-backed key/value map. Every Set rewrites the file.
type Store struct {
	mu     sync.Mutex
	path   string
	values map[string]string
}

func OpenStore(path string) (*Store, error) {
	s := &Store{
		path:   path,
		values: map[string]string{},
	}

	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read settings %s: %w", path, err)
	}

	if err := yaml.Unmarshal(b, &s.values); err != nil {
		return nil, fmt.Errorf("parse settings %s: %w", path, err)
	}
	if s.values == nil {
		s.values = map[string]string{}
	}

	return s, nil
}

func OpenScope(scope string) (*Store, error) {
	return OpenStore(ScopePath(scope))
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) Get(key, def string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.values[key]; ok {
		return v
	}

	return def
}

func (s *Store) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = value

	return s.flush()
}

// Clear drops every persisted value so the next read falls back to defaults.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values = map[string]string{}

	return s.flush()
}

func (s *Store) flush() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create settings directory: %w", err)
	}

	data, err := yaml.Marshal(s.values)
	if err != nil {
		return err
	}

	return os.WriteFile(s.path, data, 0644)
}
