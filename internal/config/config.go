// Copyright (c) 2025 Keywarden Team
// Keywarden - workspace encryption key manager
// This source code is licensed under the MIT license found in the LICENSE file.

// package config loads and writes the Keywarden configuration. Values
// come from (in order of precedence) bound cobra flags, KEYWARDEN_*
// environment variables, a keywarden.yaml config file, and defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config is the top-level Keywarden configuration.
type Config struct {
	// Workspace names the workspace whose master key and vault this
	// device uses. One keychain entry and one vault file exist per
	// workspace.
	Workspace string `mapstructure:"workspace" yaml:"workspace"`
	// VaultPath is the SQLite vault location. Empty means the default
	// path under the user config directory.
	VaultPath string `mapstructure:"vault_path" yaml:"vault_path"`
	Language  string `mapstructure:"language" yaml:"language"`
	Debug     bool   `mapstructure:"debug" yaml:"debug"`
}

// Defaults returns the default configuration values keyed for viper.
func Defaults() map[string]any {
	return map[string]any{
		"workspace":  "default",
		"vault_path": "",
		"language":   "en",
		"debug":      false,
	}
}

// getConfigPath returns the full path for the configuration file.
func getConfigPath(system bool) (string, error) {
	var configDir string
	var err error

	if system {
		switch runtime.GOOS {
		case "windows":
			configDir = filepath.Join(os.Getenv("ProgramData"), "Keywarden")
		default: // Linux, macOS, etc.
			configDir = "/etc/keywarden"
		}
	} else {
		configDir, err = os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("could not get user config directory: %w", err)
		}
		configDir = filepath.Join(configDir, "keywarden")
	}

	return filepath.Join(configDir, "keywarden.yaml"), nil
}

// UserConfigPath returns the location of the per-user config file.
func UserConfigPath() (string, error) {
	return getConfigPath(false)
}

// DefaultVaultPath returns the vault location used when the config does
// not name one: <user config dir>/keywarden/<workspace>.vault.db.
func DefaultVaultPath(workspace string) (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("could not get user config directory: %w", err)
	}
	return filepath.Join(configDir, "keywarden", workspace+".vault.db"), nil
}

// LoadConfig assembles the configuration for the given command. An
// explicit config file path (from --config) takes precedence over the
// standard search locations.
func LoadConfig[T any](cmd *cobra.Command, defaults map[string]any, additionalConfigFilePath *string) (T, error) {
	var c T
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName("keywarden")
	v.SetConfigType("yaml")

	if additionalConfigFilePath != nil && *additionalConfigFilePath != "" {
		v.SetConfigFile(*additionalConfigFilePath)
	}

	if userConfigPath, err := getConfigPath(false); err == nil {
		v.AddConfigPath(filepath.Dir(userConfigPath))
	}
	if systemConfigPath, err := getConfigPath(true); err == nil {
		v.AddConfigPath(filepath.Dir(systemConfigPath))
	}
	v.AddConfigPath(".") // keywarden.yaml in current dir

	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine; anything else is fatal.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return c, err
		}
	}

	v.AutomaticEnv()
	v.AllowEmptyEnv(true)
	v.SetEnvPrefix("keywarden")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if cmd != nil {
		if err := v.BindPFlags(cmd.Flags()); err != nil {
			return c, err
		}
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}

	return c, nil
}

// WriteConfigFile persists the configuration as YAML. The file is
// written 0600 since the config may name sensitive vault locations.
func WriteConfigFile[T any](c *T, system bool) error {
	path, err := getConfigPath(system)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	configDir := filepath.Dir(path)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("could not create config directory %s: %w", configDir, err)
	}

	return os.WriteFile(path, data, 0600)
}
