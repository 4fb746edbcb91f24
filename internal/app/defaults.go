package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// Environment variables that override the default locations.
const (
	EnvConfigPath = "SGB_CONFIG_PATH"
	EnvHome       = "SGB_HOME"
)

// Defaults are the locations sgb uses when nothing else is configured.
type Defaults struct {
	ConfigPath string // $SGB_CONFIG_PATH or ~/.config/sgb.toml
	BaseDir    string // $SGB_HOME or ~/.local/share/sgb
}

// LogDir is where the operation log is written.
func (d Defaults) LogDir() string {
	return filepath.Join(d.BaseDir, "log")
}

// GetDefaults resolves Defaults from the environment and the home directory.
// The home directory is only consulted for values the environment leaves unset.
func GetDefaults() (Defaults, error) {
	d := Defaults{
		ConfigPath: os.Getenv(EnvConfigPath),
		BaseDir:    os.Getenv(EnvHome),
	}
	if d.ConfigPath != "" && d.BaseDir != "" {
		return d, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return Defaults{}, fmt.Errorf("cannot determine home directory: %w", err)
	}
	if d.ConfigPath == "" {
		d.ConfigPath = filepath.Join(home, ".config", "sgb.toml")
	}
	if d.BaseDir == "" {
		d.BaseDir = filepath.Join(home, ".local", "share", "sgb")
	}
	return d, nil
}
