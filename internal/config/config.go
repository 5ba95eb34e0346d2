// Package config loads and saves persisted scan preferences.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Preference keys.
const (
	KeyLastDirectory = "last_directory"
	KeyRecursive     = "recursive"
	KeyBackup        = "backup"
)

const envPrefix = "MODUP"

// Preferences are the persisted settings that seed a scan. They are loaded
// once at startup and passed explicitly to whichever front end needs them;
// nothing in the core depends on where they are stored.
type Preferences struct {
	LastDirectory string `mapstructure:"last_directory" yaml:"last_directory"`
	Recursive     bool   `mapstructure:"recursive" yaml:"recursive"`
	Backup        bool   `mapstructure:"backup" yaml:"backup"`
}

// Defaults returns the preferences used when nothing is persisted yet.
func Defaults() Preferences {
	return Preferences{Recursive: true, Backup: true}
}

// DefaultPath returns the standard preferences file location:
// $XDG_CONFIG_HOME/modup/config.yaml, falling back to ~/.config.
func DefaultPath() (string, error) {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("determining home directory: %w", err)
		}
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, "modup", "config.yaml"), nil
}

// Load reads preferences from path with precedence defaults < file <
// MODUP_* environment variables. A missing file is not an error; the
// defaults (plus environment) apply.
func Load(path string) (Preferences, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	defaults := Defaults()
	v.SetDefault(KeyLastDirectory, defaults.LastDirectory)
	v.SetDefault(KeyRecursive, defaults.Recursive)
	v.SetDefault(KeyBackup, defaults.Backup)

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Preferences{}, fmt.Errorf("reading %s: %w", path, err)
	}

	var p Preferences
	if err := v.Unmarshal(&p); err != nil {
		return Preferences{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	return p, nil
}

// Save writes preferences to path, creating parent directories as needed.
func Save(path string, p Preferences) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.Set(KeyLastDirectory, p.LastDirectory)
	v.Set(KeyRecursive, p.Recursive)
	v.Set(KeyBackup, p.Backup)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
