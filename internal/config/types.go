package config

import (
	"os"
	"time"
)

// Config is the root configuration structure for the application.
type Config struct {
	LogLevel      string         `yaml:"log_level" mapstructure:"log_level"`
	LogFile       string         `yaml:"log_file" mapstructure:"log_file"`
	LogMaxSizeMB  int            `yaml:"log_max_size_mb" mapstructure:"log_max_size_mb"`
	LogMaxBackups int            `yaml:"log_max_backups" mapstructure:"log_max_backups"`
	LogMaxAgeDays int            `yaml:"log_max_age_days" mapstructure:"log_max_age_days"`
	Platform      PlatformConfig `yaml:"platform" mapstructure:"platform"`
	Pipeline      PipelineConfig `yaml:"pipeline" mapstructure:"pipeline"`
	History       HistoryConfig  `yaml:"history" mapstructure:"history"`
	GCS           GCSConfig      `yaml:"gcs" mapstructure:"gcs"`
}

// PlatformConfig locates the platform installation.
type PlatformConfig struct {
	Root       string `yaml:"root" mapstructure:"root"`
	StagingDir string `yaml:"staging_dir" mapstructure:"staging_dir"`
	Area       string `yaml:"area" mapstructure:"area"`
}

// PipelineConfig holds the platform import endpoint configuration.
type PipelineConfig struct {
	Endpoint       string `yaml:"endpoint" mapstructure:"endpoint"`
	TimeoutSeconds int    `yaml:"timeout_seconds" mapstructure:"timeout_seconds"`
	TokenEnv       string `yaml:"token_env" mapstructure:"token_env"`
}

// Timeout returns the per-request timeout.
func (c *PipelineConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ResolveToken returns the API token from the configured environment variable.
func (c *PipelineConfig) ResolveToken() string {
	if c.TokenEnv == "" {
		return ""
	}
	return os.Getenv(c.TokenEnv)
}

// HistoryConfig controls import history recording.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	DSNEnv  string `yaml:"dsn_env" mapstructure:"dsn_env"`
}

// ResolveDSN returns the database DSN from the configured environment variable.
func (c *HistoryConfig) ResolveDSN() string {
	if c.DSNEnv == "" {
		return ""
	}
	return os.Getenv(c.DSNEnv)
}

// GCSConfig holds Google Cloud Storage settings for gs:// sources.
type GCSConfig struct {
	CredentialsFile string `yaml:"credentials_file" mapstructure:"credentials_file"`
}
