// Package adapter maps preset types to the command lines that run them.
package adapter

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"launchpad/launch"
)

// ErrNotLaunchable is returned for presets whose request is not "launch".
var ErrNotLaunchable = errors.New("preset is not launchable")

// Adapter turns a resolved preset into the argv to execute.
// Implementations must not mutate the preset.
type Adapter interface {
	Type() string
	Description() string
	Command(p launch.Preset) ([]string, error)
}

// Info describes an adapter for listings.
type Info struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

// Registry holds registered adapters keyed by preset type.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]Adapter
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]Adapter)}
}

// Register adds an adapter for its preset type, replacing any previous one.
func (r *Registry) Register(a Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[a.Type()] = a
}

// Resolve returns the adapter for a preset type.
func (r *Registry) Resolve(typeName string) (Adapter, error) {
	r.mu.RLock()
	a, ok := r.adapters[typeName]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown preset type: %s", typeName)
	}
	return a, nil
}

// Known reports whether a type has an adapter.
func (r *Registry) Known(typeName string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.adapters[typeName]
	return ok
}

// Types returns all registered preset types, sorted.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AllInfo returns descriptions for all registered adapters, sorted by type.
func (r *Registry) AllInfo() []Info {
	out := make([]Info, 0)
	for _, name := range r.Types() {
		a, err := r.Resolve(name)
		if err != nil {
			continue
		}
		out = append(out, Info{Type: a.Type(), Description: a.Description()})
	}
	return out
}

// Command resolves p's type and builds the argv for it. Attach presets
// and presets without a program are refused.
func (r *Registry) Command(p launch.Preset) ([]string, error) {
	if p.Request != launch.RequestLaunch {
		return nil, fmt.Errorf("%w: request %q", ErrNotLaunchable, p.Request)
	}
	if p.Program == "" {
		return nil, errors.New("preset has no program")
	}
	a, err := r.Resolve(p.Type)
	if err != nil {
		return nil, err
	}
	return a.Command(p)
}
