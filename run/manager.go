package run

import (
	"errors"
	"io"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("run not found")

// SpawnFunc starts r's process and arranges for onExit(r.ID) to be
// called after it ends. The default picks a PTY or plain pipes by the
// run's console mode.
type SpawnFunc func(r *Run, onExit func(id string)) error

// Spec is the resolved command for one preset launch.
type Spec struct {
	Preset string
	Argv   []string
	Dir    string
	Env    map[string]string
	UsePTY bool
}

type Manager struct {
	mu      sync.RWMutex
	runs    map[string]*Run
	spawnFn SpawnFunc // nil → spawn by console mode
}

func NewManager() *Manager {
	return &Manager{runs: make(map[string]*Run)}
}

// NewManagerWithSpawnFn creates a Manager with a custom spawn function.
// Pass MockSpawnFn for a pipe-based in-process mock (no real process).
func NewManagerWithSpawnFn(fn SpawnFunc) *Manager {
	return &Manager{runs: make(map[string]*Run), spawnFn: fn}
}

// MockSpawnFn is an os.Pipe-based spawn function for testing. It wires
// a pipe so data written via WriteInput is echoed back as output;
// closing the input side ends the run with exit code 0.
func MockSpawnFn(r *Run, onExit func(id string)) error {
	pr, pw, err := os.Pipe()
	if err != nil {
		return err
	}
	r.ptmx = pw
	go func() {
		defer pr.Close()
		buf := make([]byte, 4096)
		for {
			n, readErr := pr.Read(buf)
			if n > 0 {
				data := make([]byte, n)
				copy(data, buf[:n])
				r.scrollback.Write(data)
				r.touch()
				r.outMu.Lock()
				if r.outChan != nil {
					select {
					case r.outChan <- data:
					default:
					}
				}
				r.outMu.Unlock()
			}
			if readErr != nil {
				if readErr != io.EOF {
					_ = readErr // pipe errors are expected on close
				}
				r.finish(0)
				close(r.done)
				onExit(r.ID)
				return
			}
		}
	}()
	return nil
}

// Create starts spec's command and registers the run.
func (m *Manager) Create(spec Spec) (*Run, error) {
	if len(spec.Argv) == 0 {
		return nil, errors.New("empty command")
	}

	r := &Run{
		ID:         uuid.New().String(),
		Preset:     spec.Preset,
		Argv:       append([]string(nil), spec.Argv...),
		Dir:        spec.Dir,
		CreatedAt:  time.Now(),
		usePTY:     spec.UsePTY,
		env:        spec.Env,
		status:     StatusRunning,
		exitCode:   -1,
		lastActive: time.Now(),
		scrollback: newScrollbackBuf(),
		done:       make(chan struct{}),
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	spawn := m.spawnFn
	if spawn == nil {
		spawn = spawnDefault
	}
	if err := spawn(r, m.remove); err != nil {
		return nil, err
	}

	m.runs[r.ID] = r
	return r, nil
}

func spawnDefault(r *Run, onExit func(id string)) error {
	if r.usePTY {
		return spawnPTY(r, onExit)
	}
	return spawnPipe(r, onExit)
}

// List returns the active runs, oldest first.
func (m *Manager) List() []*Run {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := make([]*Run, 0, len(m.runs))
	for _, r := range m.runs {
		list = append(list, r)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
	return list
}

func (m *Manager) Get(id string) (*Run, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.runs[id]
	return r, ok
}

// Kill stops a run's process and removes it from the active set. The
// run keeps status killed for anyone still holding it.
func (m *Manager) Kill(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.runs[id]
	if !ok {
		return ErrNotFound
	}

	r.markKilled()
	if r.cmd != nil && r.cmd.Process != nil {
		r.cmd.Process.Kill()
	}
	if r.ptmx != nil {
		r.ptmx.Close()
	}
	if r.stdin != nil {
		r.stdin.Close()
	}
	delete(m.runs, id)
	return nil
}

func (m *Manager) remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.runs, id)
}
