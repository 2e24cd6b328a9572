package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"launchpad/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	oldwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(oldwd) })

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load with no config file: %v", err)
	}
	cwd, _ := os.Getwd()
	if cfg.Workspace != cwd {
		t.Fatalf("workspace = %q, want cwd %q", cfg.Workspace, cwd)
	}
	if cfg.Server.Port != 8080 {
		t.Fatalf("port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Python.Executable != "python3" {
		t.Fatalf("python = %q", cfg.Python.Executable)
	}
	if cfg.Debug.Listen != "127.0.0.1:5678" {
		t.Fatalf("debug listen = %q", cfg.Debug.Listen)
	}
	if cfg.History.DBPath == "" {
		t.Fatal("history db path must have a default")
	}
}

func TestLoadFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	path := filepath.Join(dir, "launchpad.yaml")
	content := `workspace: /home/robo/lerobot
launch_file: /home/robo/lerobot/.vscode/launch.json
server:
  port: 9191
python:
  executable: /opt/venv/bin/python
history:
  db_path: /tmp/launchpad-test.db
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Workspace != "/home/robo/lerobot" {
		t.Fatalf("workspace = %q", cfg.Workspace)
	}
	if cfg.Server.Port != 9191 {
		t.Fatalf("port = %d", cfg.Server.Port)
	}
	if cfg.Python.Executable != "/opt/venv/bin/python" {
		t.Fatalf("python = %q", cfg.Python.Executable)
	}
	if cfg.History.DBPath != "/tmp/launchpad-test.db" {
		t.Fatalf("db path = %q", cfg.History.DBPath)
	}
	// Unset keys keep their defaults.
	if cfg.Debug.Listen != "127.0.0.1:5678" {
		t.Fatalf("debug listen = %q", cfg.Debug.Listen)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := config.Load(t.TempDir() + "/nope.yaml"); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	oldwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(oldwd) })
	t.Setenv("LAUNCHPAD_SERVER_PORT", "7777")
	t.Setenv("LAUNCHPAD_HISTORY_DB_PATH", "/tmp/env-override.db")

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 7777 {
		t.Fatalf("env port override ignored: %d", cfg.Server.Port)
	}
	if cfg.History.DBPath != "/tmp/env-override.db" {
		t.Fatalf("env db path override ignored: %q", cfg.History.DBPath)
	}
}

func TestResolvedLaunchFile(t *testing.T) {
	cfg := &config.Config{Workspace: "/home/robo/lerobot"}
	want := filepath.Join("/home/robo/lerobot", ".vscode", "launch.json")
	if got := cfg.ResolvedLaunchFile(); got != want {
		t.Fatalf("ResolvedLaunchFile = %q, want %q", got, want)
	}

	cfg.LaunchFile = "/elsewhere/launch.json"
	if got := cfg.ResolvedLaunchFile(); got != "/elsewhere/launch.json" {
		t.Fatalf("explicit launch file not honored: %q", got)
	}
}
