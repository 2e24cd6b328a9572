package launch

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Manager handles loading, saving, and updating a launch file.
type Manager struct {
	mu       sync.RWMutex
	filePath string
	file     File
}

// NewManager loads the launch file at filePath, or starts from an empty
// document if the file does not exist. Returns an error on unexpected
// I/O failures or unparseable content.
func NewManager(filePath string) (*Manager, error) {
	m := &Manager{
		filePath: filePath,
		file:     File{Version: DefaultVersion, Configurations: []Preset{}},
	}
	if err := m.load(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Manager) load() error {
	data, err := os.ReadFile(m.filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			// Start with an empty document — no error.
			return nil
		}
		return err
	}
	f, err := Parse(data)
	if err != nil {
		return fmt.Errorf("parse %s: %w", m.filePath, err)
	}
	m.file = f
	return nil
}

// Reload re-reads the launch file from disk, picking up manual edits.
func (m *Manager) Reload() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.load()
}

// Path returns the launch file location.
func (m *Manager) Path() string { return m.filePath }

// Get returns a snapshot of the current document (safe copy under RLock).
func (m *Manager) Get() File {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.file.Clone()
}

// Find returns the first preset named name, or ErrNotFound.
func (m *Manager) Find(name string) (Preset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.file.Find(name)
	if !ok {
		return Preset{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return p.Clone(), nil
}

// Save atomically writes file to disk, then updates in-memory state.
func (m *Manager) Save(file File) error {
	if file.Version == "" {
		file.Version = DefaultVersion
	}
	if file.Configurations == nil {
		file.Configurations = []Preset{}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.writeAtomic(file); err != nil {
		return err
	}
	m.file = file
	return nil
}

// Add appends p to the document. Adding a name that is already present
// is refused here; hand-edited files may still carry duplicates.
func (m *Manager) Add(p Preset) error {
	if p.Name == "" {
		return errors.New("preset name must not be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.file.Find(p.Name); ok {
		return fmt.Errorf("%w: %s", ErrNameTaken, p.Name)
	}
	next := m.file.Clone()
	next.Configurations = append(next.Configurations, p.Clone())
	if err := m.writeAtomic(next); err != nil {
		return err
	}
	m.file = next
	return nil
}

// Remove deletes every preset named name, duplicates included.
func (m *Manager) Remove(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := m.file.Clone()
	kept := next.Configurations[:0]
	removed := false
	for _, p := range next.Configurations {
		if p.Name == name {
			removed = true
			continue
		}
		kept = append(kept, p)
	}
	if !removed {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	next.Configurations = kept
	if err := m.writeAtomic(next); err != nil {
		return err
	}
	m.file = next
	return nil
}

// writeAtomic writes to a temp file then renames it over filePath.
// Caller must hold m.mu if the in-memory document is being modified
// concurrently. Comments in a hand-edited file do not survive a
// programmatic write.
func (m *Manager) writeAtomic(file File) error {
	dir := filepath.Dir(m.filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp := m.filePath + ".tmp"
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, m.filePath)
}
