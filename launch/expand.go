package launch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Vars resolves ${...} references in preset fields before launch. The
// supported names follow the editor convention: workspaceFolder,
// workspaceFolderBasename, userHome, pathSeparator and env:NAME.
type Vars struct {
	Workspace string
	Home      string
	LookupEnv func(string) (string, bool)
}

// NewVars builds a resolver rooted at workspace, using the current
// process environment and home directory.
func NewVars(workspace string) Vars {
	home, _ := os.UserHomeDir()
	return Vars{Workspace: workspace, Home: home, LookupEnv: os.LookupEnv}
}

// Expand substitutes every ${...} reference in s. Unknown and
// unterminated references are errors; a preset must not start with a
// token silently left unresolved.
func (v Vars) Expand(s string) (string, error) {
	if !strings.Contains(s, "${") {
		return s, nil
	}
	var b strings.Builder
	for {
		i := strings.Index(s, "${")
		if i < 0 {
			b.WriteString(s)
			return b.String(), nil
		}
		b.WriteString(s[:i])
		rest := s[i+2:]
		j := strings.Index(rest, "}")
		if j < 0 {
			return "", fmt.Errorf("unterminated variable reference %q", s[i:])
		}
		val, err := v.resolve(rest[:j])
		if err != nil {
			return "", err
		}
		b.WriteString(val)
		s = rest[j+1:]
	}
}

func (v Vars) resolve(name string) (string, error) {
	if env, ok := strings.CutPrefix(name, "env:"); ok {
		lookup := v.LookupEnv
		if lookup == nil {
			lookup = os.LookupEnv
		}
		val, ok := lookup(env)
		if !ok {
			return "", fmt.Errorf("environment variable %q is not set", env)
		}
		return val, nil
	}
	switch name {
	case "workspaceFolder":
		return v.Workspace, nil
	case "workspaceFolderBasename":
		return filepath.Base(v.Workspace), nil
	case "userHome":
		return v.Home, nil
	case "pathSeparator":
		return string(os.PathSeparator), nil
	}
	return "", fmt.Errorf("unknown variable ${%s}", name)
}

// ExpandPreset returns a copy of p with variables substituted in
// program, args, cwd and env values. Arg tokens are otherwise passed
// through verbatim; no splitting or quoting is applied.
func (v Vars) ExpandPreset(p Preset) (Preset, error) {
	q := p.Clone()
	var err error
	if q.Program, err = v.Expand(p.Program); err != nil {
		return Preset{}, fmt.Errorf("program: %w", err)
	}
	for i, a := range q.Args {
		if q.Args[i], err = v.Expand(a); err != nil {
			return Preset{}, fmt.Errorf("args[%d]: %w", i, err)
		}
	}
	if q.Cwd, err = v.Expand(p.Cwd); err != nil {
		return Preset{}, fmt.Errorf("cwd: %w", err)
	}
	for k, val := range q.Env {
		if q.Env[k], err = v.Expand(val); err != nil {
			return Preset{}, fmt.Errorf("env[%s]: %w", k, err)
		}
	}
	return q, nil
}
