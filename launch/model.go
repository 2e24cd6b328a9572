package launch

import "errors"

// DefaultVersion is the schema version written to new launch files.
const DefaultVersion = "0.2.0"

// Request kinds. Only launch presets can be started by this tool;
// attach entries are parsed and listed but refused at run time.
const (
	RequestLaunch = "launch"
	RequestAttach = "attach"
)

// Console destinations for a launched program's input and output.
const (
	ConsoleIntegrated = "integratedTerminal"
	ConsoleInternal   = "internalConsole"
	ConsoleExternal   = "externalTerminal"
)

// Preset is a single launch configuration: which program to start, the
// exact argument tokens to pass, and how to run it. Each preset is
// self-contained; nothing in it refers to another entry.
type Preset struct {
	Name        string            `json:"name" yaml:"name" validate:"required"`
	Type        string            `json:"type" yaml:"type" validate:"required"`
	Request     string            `json:"request" yaml:"request" validate:"required,oneof=launch attach"`
	Program     string            `json:"program" yaml:"program" validate:"required"`
	Console     string            `json:"console,omitempty" yaml:"console,omitempty" validate:"omitempty,oneof=integratedTerminal internalConsole externalTerminal"`
	Args        []string          `json:"args,omitempty" yaml:"args,omitempty"`
	Cwd         string            `json:"cwd,omitempty" yaml:"cwd,omitempty"`
	Env         map[string]string `json:"env,omitempty" yaml:"env,omitempty"`
	StopOnEntry bool              `json:"stopOnEntry,omitempty" yaml:"stopOnEntry,omitempty"`
}

// File is the full on-disk document: a schema version plus an ordered
// list of presets.
type File struct {
	Version        string   `json:"version" yaml:"version"`
	Configurations []Preset `json:"configurations" yaml:"configurations"`
}

var (
	ErrNotFound  = errors.New("preset not found")
	ErrNameTaken = errors.New("preset name already in use")
)

// EffectiveConsole returns the preset's console, defaulting to
// integratedTerminal when unset.
func (p Preset) EffectiveConsole() string {
	if p.Console == "" {
		return ConsoleIntegrated
	}
	return p.Console
}

// Clone returns a deep copy of p.
func (p Preset) Clone() Preset {
	q := p
	if p.Args != nil {
		q.Args = make([]string, len(p.Args))
		copy(q.Args, p.Args)
	}
	if p.Env != nil {
		q.Env = make(map[string]string, len(p.Env))
		for k, v := range p.Env {
			q.Env[k] = v
		}
	}
	return q
}

// Find returns the first preset with the given name. Duplicate names
// are tolerated in hand-edited files; lookup always resolves to the
// earliest entry.
func (f File) Find(name string) (Preset, bool) {
	for _, p := range f.Configurations {
		if p.Name == name {
			return p, true
		}
	}
	return Preset{}, false
}

// Clone returns a deep copy of f.
func (f File) Clone() File {
	g := f
	g.Configurations = make([]Preset, len(f.Configurations))
	for i, p := range f.Configurations {
		g.Configurations[i] = p.Clone()
	}
	return g
}
