package run

import (
	"encoding/json"
	"errors"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"
)

const maxScrollback = 1 << 20 // 1MB

// Status of a run's process.
type Status string

const (
	StatusRunning Status = "running"
	StatusExited  Status = "exited" // ended on its own with code 0
	StatusFailed  Status = "failed" // ended on its own with a non-zero code
	StatusKilled  Status = "killed" // stopped through the tool
)

// Run is one launched preset: the resolved command plus the live
// process state and its buffered output.
type Run struct {
	ID        string
	Preset    string
	Argv      []string
	Dir       string
	CreatedAt time.Time

	usePTY bool
	env    map[string]string

	stateMu    sync.Mutex
	status     Status
	exitCode   int
	lastActive time.Time

	cmd        *exec.Cmd
	ptmx       *os.File
	stdin      io.WriteCloser
	scrollback *scrollbackBuf
	outChan    chan []byte
	kickChan   chan struct{}
	outMu      sync.Mutex
	done       chan struct{}
}

type scrollbackBuf struct {
	mu   sync.Mutex
	data []byte
	max  int
}

func newScrollbackBuf() *scrollbackBuf {
	return &scrollbackBuf{max: maxScrollback}
}

func (s *scrollbackBuf) Write(p []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = append(s.data, p...)
	if len(s.data) > s.max {
		excess := len(s.data) - s.max
		s.data = s.data[excess:]
	}
}

func (s *scrollbackBuf) Snapshot() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.data) == 0 {
		return nil
	}
	cp := make([]byte, len(s.data))
	copy(cp, s.data)
	return cp
}

// SetClient registers a channel to receive live output. If a previous
// client is connected it is kicked: its kick channel is closed so ws.go
// can detect the displacement and close that WebSocket connection.
// Returns a kick channel that will be closed if this client is itself
// later displaced.
func (r *Run) SetClient(ch chan []byte) <-chan struct{} {
	r.outMu.Lock()
	defer r.outMu.Unlock()
	// Displace any existing client.
	if r.kickChan != nil {
		close(r.kickChan)
	}
	kick := make(chan struct{})
	r.kickChan = kick
	r.outChan = ch
	return kick
}

// ClearClient is called when a connection ends. It only updates run
// state if ch is still the current owner (guards against a displaced
// connection clearing a newer one). It always closes ch so the pump
// goroutine exits.
func (r *Run) ClearClient(ch chan []byte) {
	r.outMu.Lock()
	if r.outChan == ch {
		r.outChan = nil
		r.kickChan = nil
	}
	r.outMu.Unlock()
	close(ch)
}

// Connected reports whether a client is receiving live output.
func (r *Run) Connected() bool {
	r.outMu.Lock()
	defer r.outMu.Unlock()
	return r.outChan != nil
}

// ScrollbackSnapshot returns a copy of the scrollback buffer.
func (r *Run) ScrollbackSnapshot() []byte {
	return r.scrollback.Snapshot()
}

// Done returns a channel that is closed when the process exits.
func (r *Run) Done() <-chan struct{} {
	return r.done
}

// Status returns the current process status.
func (r *Run) Status() Status {
	r.stateMu.Lock()
	defer r.stateMu.Unlock()
	return r.status
}

// ExitCode returns the recorded exit code; ok is false while running.
// Killed runs and signal deaths record -1.
func (r *Run) ExitCode() (code int, ok bool) {
	r.stateMu.Lock()
	defer r.stateMu.Unlock()
	if r.status == StatusRunning {
		return 0, false
	}
	return r.exitCode, true
}

// Interactive reports whether the run is attached to a PTY.
func (r *Run) Interactive() bool {
	return r.usePTY
}

// WriteInput writes input bytes to the process: the PTY master for
// terminal runs, stdin for pipe runs.
func (r *Run) WriteInput(p []byte) (int, error) {
	if r.ptmx != nil {
		return r.ptmx.Write(p)
	}
	if r.stdin != nil {
		return r.stdin.Write(p)
	}
	return 0, errors.New("run accepts no input")
}

// PTY returns the PTY master for resize calls, or nil for pipe runs.
func (r *Run) PTY() *os.File {
	return r.ptmx
}

func (r *Run) touch() {
	r.stateMu.Lock()
	r.lastActive = time.Now()
	r.stateMu.Unlock()
}

// finish records the process end. The first terminal status wins, so a
// kill observed before the reaper keeps its killed status.
func (r *Run) finish(code int) {
	r.stateMu.Lock()
	defer r.stateMu.Unlock()
	if r.status != StatusRunning {
		return
	}
	r.exitCode = code
	if code == 0 {
		r.status = StatusExited
	} else {
		r.status = StatusFailed
	}
}

func (r *Run) markKilled() {
	r.stateMu.Lock()
	defer r.stateMu.Unlock()
	if r.status != StatusRunning {
		return
	}
	r.status = StatusKilled
	r.exitCode = -1
}

// MarshalJSON serializes a consistent snapshot of the run.
func (r *Run) MarshalJSON() ([]byte, error) {
	type view struct {
		ID         string    `json:"id"`
		Preset     string    `json:"preset"`
		Argv       []string  `json:"argv"`
		Dir        string    `json:"dir,omitempty"`
		PTY        bool      `json:"pty"`
		CreatedAt  time.Time `json:"created_at"`
		LastActive time.Time `json:"last_active"`
		Connected  bool      `json:"connected"`
		Status     Status    `json:"status"`
		ExitCode   *int      `json:"exit_code,omitempty"`
	}
	v := view{
		ID:        r.ID,
		Preset:    r.Preset,
		Argv:      r.Argv,
		Dir:       r.Dir,
		PTY:       r.usePTY,
		CreatedAt: r.CreatedAt,
		Connected: r.Connected(),
	}
	r.stateMu.Lock()
	v.LastActive = r.lastActive
	v.Status = r.status
	if r.status != StatusRunning {
		code := r.exitCode
		v.ExitCode = &code
	}
	r.stateMu.Unlock()
	return json.Marshal(v)
}
