// Package config loads launchpad settings from launchpad.yaml, the
// LAUNCHPAD_* environment, and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

type HistoryConfig struct {
	DBPath string `mapstructure:"db_path"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

type PythonConfig struct {
	Executable string `mapstructure:"executable"`
}

type DebugConfig struct {
	Listen string `mapstructure:"listen"`
}

type Config struct {
	Workspace    string        `mapstructure:"workspace"`
	LaunchFile   string        `mapstructure:"launch_file"`
	TemplatesDir string        `mapstructure:"templates_dir"`
	History      HistoryConfig `mapstructure:"history"`
	Server       ServerConfig  `mapstructure:"server"`
	Python       PythonConfig  `mapstructure:"python"`
	Debug        DebugConfig   `mapstructure:"debug"`
}

// Load reads the config file at path, or searches . and ~/.launchpad
// for launchpad.yaml when path is empty. A missing file during search
// is not an error; every key has a default. Environment variables with
// the LAUNCHPAD_ prefix override file values (LAUNCHPAD_SERVER_PORT,
// LAUNCHPAD_HISTORY_DB_PATH, ...).
func Load(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("launchpad")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.launchpad")
	}

	v.SetEnvPrefix("LAUNCHPAD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("resolving working directory: %w", err)
	}
	home, _ := os.UserHomeDir()

	v.SetDefault("workspace", cwd)
	v.SetDefault("launch_file", "")
	v.SetDefault("templates_dir", filepath.Join(home, ".launchpad", "templates"))
	v.SetDefault("history.db_path", filepath.Join(home, ".launchpad", "history.db"))
	v.SetDefault("server.port", 8080)
	v.SetDefault("python.executable", "python3")
	v.SetDefault("debug.listen", "127.0.0.1:5678")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// ResolvedLaunchFile returns the configured launch file, falling back
// to the editor's conventional location under the workspace.
func (c *Config) ResolvedLaunchFile() string {
	if c.LaunchFile != "" {
		return c.LaunchFile
	}
	return filepath.Join(c.Workspace, ".vscode", "launch.json")
}
