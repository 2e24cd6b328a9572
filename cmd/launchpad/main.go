package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"launchpad/adapter"
	"launchpad/config"
	"launchpad/launch"
)

var (
	cfgFile        string
	launchFileFlag string
	workspaceFlag  string
)

var rootCmd = &cobra.Command{
	Use:   "launchpad",
	Short: "Launchpad - run and manage debugger launch presets",
	Long: `Launchpad works with the editor-style launch.json of a project: list and
lint its presets, start them as supervised local processes, follow their
output live, and keep a history of every launch.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default ./launchpad.yaml or ~/.launchpad/launchpad.yaml)")
	rootCmd.PersistentFlags().StringVar(&launchFileFlag, "launch-file", "", "Launch file to operate on (default <workspace>/.vscode/launch.json)")
	rootCmd.PersistentFlags().StringVar(&workspaceFlag, "workspace", "", "Folder ${workspaceFolder} expands to (default current directory)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		var ec exitCodeError
		if errors.As(err, &ec) {
			// The child's exit status speaks for itself.
			os.Exit(ec.code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies flag overrides on top.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if workspaceFlag != "" {
		cfg.Workspace = workspaceFlag
	}
	if launchFileFlag != "" {
		cfg.LaunchFile = launchFileFlag
	}
	return cfg, nil
}

// openLaunchFile loads the configured launch file.
func openLaunchFile() (*config.Config, *launch.Manager, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	lm, err := launch.NewManager(cfg.ResolvedLaunchFile())
	if err != nil {
		return nil, nil, err
	}
	return cfg, lm, nil
}

func newRegistry(cfg *config.Config) *adapter.Registry {
	return adapter.NewDefaultRegistry(adapter.Options{
		PythonExecutable: cfg.Python.Executable,
		DebugListen:      cfg.Debug.Listen,
	})
}
