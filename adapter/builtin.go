package adapter

import "launchpad/launch"

const (
	defaultPython = "python3"
	defaultListen = "127.0.0.1:5678"
)

// Options configures the builtin adapters.
type Options struct {
	// PythonExecutable runs python and debugpy presets. Defaults to python3.
	PythonExecutable string
	// DebugListen is the host:port debugpy listens on. Defaults to 127.0.0.1:5678.
	DebugListen string
}

// NewDefaultRegistry returns a registry with the builtin adapters:
// python, debugpy, node and shell.
func NewDefaultRegistry(opts Options) *Registry {
	if opts.PythonExecutable == "" {
		opts.PythonExecutable = defaultPython
	}
	if opts.DebugListen == "" {
		opts.DebugListen = defaultListen
	}
	r := NewRegistry()
	r.Register(Python{Executable: opts.PythonExecutable})
	r.Register(Debugpy{Executable: opts.PythonExecutable, Listen: opts.DebugListen})
	r.Register(Node{})
	r.Register(Shell{})
	return r
}

// Python runs the program with the plain interpreter.
type Python struct {
	Executable string
}

func (a Python) Type() string        { return "python" }
func (a Python) Description() string { return "Run the program with the Python interpreter." }

func (a Python) Command(p launch.Preset) ([]string, error) {
	argv := []string{a.Executable, p.Program}
	return append(argv, p.Args...), nil
}

// Debugpy runs the program under the debugpy debug server so an editor
// can attach. stopOnEntry maps to --wait-for-client: the process blocks
// before the first line until a client connects.
type Debugpy struct {
	Executable string
	Listen     string
}

func (a Debugpy) Type() string        { return "debugpy" }
func (a Debugpy) Description() string { return "Run the program under the debugpy debug server." }

func (a Debugpy) Command(p launch.Preset) ([]string, error) {
	argv := []string{a.Executable, "-m", "debugpy", "--listen", a.Listen}
	if p.StopOnEntry {
		argv = append(argv, "--wait-for-client")
	}
	argv = append(argv, p.Program)
	return append(argv, p.Args...), nil
}

// Node runs the program with node.
type Node struct{}

func (a Node) Type() string        { return "node" }
func (a Node) Description() string { return "Run the program with node." }

func (a Node) Command(p launch.Preset) ([]string, error) {
	argv := []string{"node", p.Program}
	return append(argv, p.Args...), nil
}

// Shell executes the program directly with its args.
type Shell struct{}

func (a Shell) Type() string        { return "shell" }
func (a Shell) Description() string { return "Execute the program directly." }

func (a Shell) Command(p launch.Preset) ([]string, error) {
	argv := []string{p.Program}
	return append(argv, p.Args...), nil
}
