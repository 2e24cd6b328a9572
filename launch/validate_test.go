package launch_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"launchpad/launch"
)

func knownTypes(name string) bool {
	switch name {
	case "python", "debugpy":
		return true
	}
	return false
}

func TestValidateCleanFile(t *testing.T) {
	f := launch.File{
		Version: "0.2.0",
		Configurations: []launch.Preset{
			{Name: "train dit", Type: "debugpy", Request: "launch", Program: "train.py", Console: "integratedTerminal"},
			{Name: "visualize dataset", Type: "python", Request: "launch", Program: "visualize_dataset.py"},
		},
	}
	r := launch.ValidateFile(f, launch.LintOptions{KnownType: knownTypes})
	if !r.OK() {
		t.Fatalf("unexpected errors: %v", r.Errors)
	}
	if len(r.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", r.Warnings)
	}
}

func TestValidateMissingFields(t *testing.T) {
	f := launch.File{
		Version:        "0.2.0",
		Configurations: []launch.Preset{{Name: "half-done"}},
	}
	r := launch.ValidateFile(f, launch.LintOptions{})
	if r.OK() {
		t.Fatal("expected errors")
	}
	joined := strings.Join(r.Errors, "\n")
	for _, want := range []string{"type is required", "request is required", "program is required"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("missing %q in:\n%s", want, joined)
		}
	}
	if !strings.Contains(joined, `"half-done"`) {
		t.Fatalf("errors should carry the preset name:\n%s", joined)
	}
}

func TestValidateBadEnums(t *testing.T) {
	f := launch.File{
		Version: "0.2.0",
		Configurations: []launch.Preset{
			{Name: "n", Type: "python", Request: "detach", Program: "p.py", Console: "holographicTerminal"},
		},
	}
	r := launch.ValidateFile(f, launch.LintOptions{})
	joined := strings.Join(r.Errors, "\n")
	if !strings.Contains(joined, "request must be one of") {
		t.Fatalf("missing request enum error:\n%s", joined)
	}
	if !strings.Contains(joined, "console must be one of") {
		t.Fatalf("missing console enum error:\n%s", joined)
	}
}

func TestValidateVersion(t *testing.T) {
	r := launch.ValidateFile(launch.File{}, launch.LintOptions{})
	if r.OK() {
		t.Fatal("expected version error")
	}

	r = launch.ValidateFile(launch.File{Version: "1.0.0"}, launch.LintOptions{})
	if !r.OK() {
		t.Fatalf("unexpected errors: %v", r.Errors)
	}
	if len(r.Warnings) != 1 || !strings.Contains(r.Warnings[0], `"1.0.0"`) {
		t.Fatalf("expected version warning, got %v", r.Warnings)
	}
}

func TestValidateDuplicateNames(t *testing.T) {
	f := launch.File{
		Version: "0.2.0",
		Configurations: []launch.Preset{
			{Name: "dup", Type: "python", Request: "launch", Program: "a.py"},
			{Name: "dup", Type: "python", Request: "launch", Program: "b.py"},
		},
	}
	r := launch.ValidateFile(f, launch.LintOptions{})
	if !r.OK() {
		t.Fatalf("duplicates must not be errors: %v", r.Errors)
	}
	if len(r.Warnings) != 1 || !strings.Contains(r.Warnings[0], "duplicate name") {
		t.Fatalf("expected one duplicate warning, got %v", r.Warnings)
	}
	if !strings.Contains(r.Warnings[0], "configurations[0]") {
		t.Fatalf("warning should point at the first entry: %v", r.Warnings[0])
	}
}

func TestValidateUnknownTypeAndAttach(t *testing.T) {
	f := launch.File{
		Version: "0.2.0",
		Configurations: []launch.Preset{
			{Name: "mystery", Type: "ruby", Request: "launch", Program: "p.rb"},
			{Name: "remote", Type: "debugpy", Request: "attach", Program: "train.py"},
		},
	}
	r := launch.ValidateFile(f, launch.LintOptions{KnownType: knownTypes})
	if !r.OK() {
		t.Fatalf("unexpected errors: %v", r.Errors)
	}
	joined := strings.Join(r.Warnings, "\n")
	if !strings.Contains(joined, `no adapter registered for type "ruby"`) {
		t.Fatalf("missing unknown type warning:\n%s", joined)
	}
	if !strings.Contains(joined, "attach presets") {
		t.Fatalf("missing attach warning:\n%s", joined)
	}
}

func TestValidateProgramProbe(t *testing.T) {
	ws := t.TempDir()
	real := filepath.Join(ws, "scripts")
	if err := os.MkdirAll(real, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(real, "train.py"), []byte("print('hi')\n"), 0644); err != nil {
		t.Fatal(err)
	}

	f := launch.File{
		Version: "0.2.0",
		Configurations: []launch.Preset{
			{Name: "ok", Type: "python", Request: "launch", Program: "scripts/train.py"},
			{Name: "gone", Type: "python", Request: "launch", Program: "scripts/missing.py"},
			{Name: "unexpanded", Type: "python", Request: "launch", Program: "${workspaceFolder}/scripts/train.py"},
		},
	}
	r := launch.ValidateFile(f, launch.LintOptions{Workspace: ws})
	joined := strings.Join(r.Warnings, "\n")
	if strings.Contains(joined, `"ok"`) {
		t.Fatalf("existing program flagged:\n%s", joined)
	}
	if !strings.Contains(joined, "scripts/missing.py not found") {
		t.Fatalf("missing program not flagged:\n%s", joined)
	}
	// Programs with unresolved variables are not probed.
	if strings.Contains(joined, `"unexpanded"`) {
		t.Fatalf("variable program should be skipped:\n%s", joined)
	}
}
