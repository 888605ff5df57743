package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of every environment variable the tool reads.
const EnvPrefix = "CATALOG_IMPORT"

// configFilePath stores the path to the loaded config file
var configFilePath string

// Init initializes the configuration subsystem.
// A .env file in the working directory is loaded first; variables that are
// already set win. When configFile is empty, config.yaml is searched for in:
//  1. Directory specified by CATALOG_IMPORT_CONFIG_DIR environment variable
//  2. ~/.config/catalog-import/
//  3. Current working directory (.)
//
// If no config file is found, defaults and environment variables are used.
// If a config file exists but is invalid or unreadable, Init returns an error.
func Init(configFile string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env file; %w", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if configFile != "" {
		viper.SetConfigFile(expandHome(configFile))
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config from %s; %w", configFile, err)
		}
		configFilePath = viper.ConfigFileUsed()
		slog.Debug("config initialized", "file", configFilePath)
		return nil
	}

	if envPath := os.Getenv(EnvPrefix + "_CONFIG_DIR"); envPath != "" {
		viper.AddConfigPath(envPath)
	}

	if home := os.Getenv("HOME"); home != "" {
		viper.AddConfigPath(filepath.Join(home, ".config", "catalog-import"))
	}

	viper.AddConfigPath(".")

	err := viper.ReadInConfig()
	if err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			configFilePath = ""
			return nil
		}
		return fmt.Errorf("failed to read config; %w", err)
	}

	configFilePath = viper.ConfigFileUsed()
	slog.Debug("config initialized", "file", configFilePath)

	return nil
}

// Get unmarshals and validates the typed configuration.
func Get() (*Config, error) {
	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config; %w", err)
	}

	cfg.LogFile = expandHome(cfg.LogFile)
	cfg.Platform.Root = expandHome(cfg.Platform.Root)
	cfg.GCS.CredentialsFile = expandHome(cfg.GCS.CredentialsFile)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ConfigFilePath returns the path to the loaded config file,
// or empty string if using defaults only.
func ConfigFilePath() string {
	return configFilePath
}

// Reset clears the configuration state for testing purposes.
func Reset() {
	viper.Reset()
	configFilePath = ""
}

// GetString returns the string value for the given key.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns the integer value for the given key.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// Set sets a value for the given key, overriding defaults and config file values.
// Primarily used for testing.
func Set(key string, value any) {
	viper.Set(key, value)
}

// GetPath returns the string value for the given key with ~ expanded to $HOME.
func GetPath(key string) string {
	return expandHome(viper.GetString(key))
}

// DefaultConfigPath returns where a new config file is created: the first
// location Init searches that does not depend on the working directory.
func DefaultConfigPath() string {
	if dir := os.Getenv(EnvPrefix + "_CONFIG_DIR"); dir != "" {
		return filepath.Join(dir, "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(home, ".config", "catalog-import", "config.yaml")
}

// expandHome expands a leading ~ in path to the user's home directory.
// Only "~" alone or "~/..." is expanded.
func expandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}

	if len(path) > 1 && path[1] != '/' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	if len(path) == 1 {
		return home
	}

	return filepath.Join(home, path[2:])
}
