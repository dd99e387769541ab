// Package theme holds the light/dark preference and its persistence.
package theme

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/viper"
)

// Theme is the display preference.
type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"
)

// Key is the preference key in the store.
const Key = "theme"

// Parse maps a stored value to a Theme. Only the exact string "light"
// selects Light; anything else, including "Light", is Dark.
func Parse(s string) Theme {
	if s == string(Light) {
		return Light
	}
	return Dark
}

// Toggle returns the opposite theme.
func (t Theme) Toggle() Theme {
	if t == Light {
		return Dark
	}
	return Light
}

// ButtonLabel is the label of the toggle control, naming the theme a press
// switches to.
func (t Theme) ButtonLabel() string {
	if t == Light {
		return "다크모드"
	}
	return "라이트모드"
}

// Store persists the preference.
type Store interface {
	Load() (Theme, error)
	Save(Theme) error
}

// FileStore keeps the preference in a small YAML file.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore returns a store backed by path. The file is created on the
// first Save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) read() (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigFile(s.path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return v, nil
		}
		var nf viper.ConfigFileNotFoundError
		if errors.As(err, &nf) {
			return v, nil
		}
		return nil, fmt.Errorf("read preferences %s: %w", s.path, err)
	}
	return v, nil
}

// Load returns the stored theme, Dark when nothing is stored.
func (s *FileStore) Load() (Theme, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, err := s.read()
	if err != nil {
		return Dark, err
	}
	return Parse(v.GetString(Key)), nil
}

// Save writes t, keeping any other keys in the file.
func (s *FileStore) Save(t Theme) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, err := s.read()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create preferences dir: %w", err)
	}
	v.Set(Key, string(t))
	if err := v.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("write preferences %s: %w", s.path, err)
	}
	return nil
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu sync.Mutex
	t  Theme
}

func (m *MemoryStore) Load() (Theme, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.t == "" {
		return Dark, nil
	}
	return m.t, nil
}

func (m *MemoryStore) Save(t Theme) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.t = t
	return nil
}

// Toggle flips the stored theme and persists the new value.
func Toggle(s Store) (Theme, error) {
	cur, err := s.Load()
	if err != nil {
		return cur, err
	}
	next := cur.Toggle()
	if err := s.Save(next); err != nil {
		return cur, err
	}
	return next, nil
}
