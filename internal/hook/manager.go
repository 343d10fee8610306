package hook

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// ErrHookNotFound is returned when a requested hook is not installed.
var ErrHookNotFound = errors.New("hook not found")

// Manager discovers hooks in a directory.
type Manager struct {
	dir   string
	hooks map[string]*Hook
	mu    sync.RWMutex
}

// NewManager creates a Manager for the given hook directory.
func NewManager(dir string) *Manager {
	return &Manager{
		dir:   dir,
		hooks: make(map[string]*Hook),
	}
}

// Discover rescans the hook directory. A missing directory means no hooks.
// Subdirectories without a readable manifest are skipped.
func (m *Manager) Discover() error {
	hooks := make(map[string]*Hook)

	entries, err := os.ReadDir(m.dir)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return fmt.Errorf("read hook dir: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(m.dir, entry.Name())
		h, err := load(dir)
		if err != nil {
			log.Printf("Skipping hook %s: %v", entry.Name(), err)
			continue
		}
		hooks[h.Manifest.Name] = h
	}

	m.mu.Lock()
	m.hooks = hooks
	m.mu.Unlock()
	return nil
}

func load(dir string) (*Hook, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		return nil, err
	}

	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("parse %s: %w", ManifestFile, err)
	}
	if manifest.Name == "" {
		manifest.Name = filepath.Base(dir)
	}
	if manifest.Executable == "" {
		return nil, errors.New("manifest has no executable")
	}

	return &Hook{
		Manifest:   manifest,
		Dir:        dir,
		Executable: filepath.Join(dir, manifest.Executable),
	}, nil
}

// Get returns a hook by name.
func (m *Manager) Get(name string) (*Hook, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	h, ok := m.hooks[name]
	if !ok {
		return nil, ErrHookNotFound
	}
	return h, nil
}

// List returns every discovered hook ordered by name.
func (m *Manager) List() []*Hook {
	m.mu.RLock()
	defer m.mu.RUnlock()

	hooks := make([]*Hook, 0, len(m.hooks))
	for _, h := range m.hooks {
		hooks = append(hooks, h)
	}
	sort.Slice(hooks, func(i, j int) bool {
		return hooks[i].Manifest.Name < hooks[j].Manifest.Name
	})
	return hooks
}

// For returns the hooks subscribed to command.
func (m *Manager) For(command string) []*Hook {
	var hooks []*Hook
	for _, h := range m.List() {
		if h.Wants(command) {
			hooks = append(hooks, h)
		}
	}
	return hooks
}

func (m *Manager) Dir() string {
	return m.dir
}
