// Copyright (c) 2026 Keymaster Team
// Keymaster - SSH key management system
// This source code is licensed under the MIT license found in the LICENSE file.

// Package config loads authkeys settings from defaults, config files,
// AUTHKEYS_* environment variables and command line flags, in that order of
// increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config is the full authkeys configuration.
type Config struct {
	// File is the authorized_keys file to operate on.
	File     string         `mapstructure:"file" yaml:"file"`
	Language string         `mapstructure:"language" yaml:"language"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
	Parse    ParseConfig    `mapstructure:"parse" yaml:"parse"`
	Backup   BackupConfig   `mapstructure:"backup" yaml:"backup"`
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
}

type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
}

type ParseConfig struct {
	// KeyTypePrefixes are the first-field prefixes that mark a modern key.
	KeyTypePrefixes []string `mapstructure:"key_type_prefixes" yaml:"key_type_prefixes"`
}

type BackupConfig struct {
	// Enabled takes a compressed copy of the key file before every save.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	// Dir holds the backups; empty means next to the key file.
	Dir string `mapstructure:"dir" yaml:"dir"`
}

type DatabaseConfig struct {
	Type string `mapstructure:"type" yaml:"type"`
	Dsn  string `mapstructure:"dsn" yaml:"dsn"`
}

// DefaultKeyFile returns ~/.ssh/authorized_keys for the current user.
func DefaultKeyFile() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".ssh", "authorized_keys"), nil
}

// Defaults returns the built-in settings keyed by their viper names.
func Defaults() map[string]any {
	d := map[string]any{
		"language":                "en",
		"log.level":               "info",
		"parse.key_type_prefixes": []string{"ssh-"},
		"backup.enabled":          false,
		"backup.dir":              "",
		"database.type":           "sqlite",
		"database.dsn":            "./authkeys.db",
	}
	if f, err := DefaultKeyFile(); err == nil {
		d["file"] = f
	}
	return d
}

// GetConfigPath returns the full path for the configuration file.
func GetConfigPath(system bool) (string, error) {
	var configDir string
	var err error

	if system {
		switch runtime.GOOS {
		case "windows":
			configDir = filepath.Join(os.Getenv("ProgramData"), "authkeys")
		default:
			configDir = "/etc/authkeys"
		}
	} else {
		configDir, err = os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("could not get user config directory: %w", err)
		}
		configDir = filepath.Join(configDir, "authkeys")
	}

	return filepath.Join(configDir, "authkeys.yaml"), nil
}

// LoadConfig builds a T from defaults, the first authkeys.yaml found (or
// the explicit file at configFile), AUTHKEYS_* environment variables and the
// flags of cmd. A missing config file is reported as
// viper.ConfigFileNotFoundError alongside the otherwise complete result.
func LoadConfig[T any](cmd *cobra.Command, defaults map[string]any, configFile *string) (T, error) {
	var c T
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName("authkeys")
	v.SetConfigType("yaml")
	if configFile != nil && *configFile != "" {
		v.SetConfigFile(*configFile)
	}
	if userConfigPath, err := GetConfigPath(false); err == nil {
		v.AddConfigPath(filepath.Dir(userConfigPath))
	}
	if systemConfigPath, err := GetConfigPath(true); err == nil {
		v.AddConfigPath(filepath.Dir(systemConfigPath))
	}
	v.AddConfigPath(".")

	var notFound error
	if err := v.ReadInConfig(); err != nil {
		// Only a failed search is tolerated; an explicit file must exist.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return c, err
		}
		notFound = err
	}

	mergeLocalConfig(v)

	v.SetEnvPrefix("authkeys")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cmd != nil {
		if err := v.BindPFlags(cmd.Flags()); err != nil {
			return c, err
		}
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}
	return c, notFound
}

// mergeLocalConfig merges a `.authkeys.yaml` in the current directory on top
// of the primary config, so a project can pin its own key file.
func mergeLocalConfig(v *viper.Viper) {
	const localConfigFile = ".authkeys.yaml"
	if _, err := os.Stat(localConfigFile); err != nil {
		return
	}
	v.SetConfigFile(localConfigFile)
	// A malformed local file should not prevent startup.
	_ = v.MergeInConfig()
	v.SetConfigFile("")
}

// WriteConfigFile writes c as YAML to the user (or system) config path.
func WriteConfigFile[T any](c *T, system bool) (string, error) {
	path, err := GetConfigPath(system)
	if err != nil {
		return "", err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return "", err
	}

	configDir := filepath.Dir(path)
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return "", fmt.Errorf("could not create config directory %s: %w", configDir, err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", err
	}
	return path, nil
}
