package config

import "github.com/spf13/viper"

// Default configuration values.
const (
	DefaultLogLevel       = "info"
	DefaultLogFile        = "~/.config/catalog-import/catalog-import.log"
	DefaultLogMaxSizeMB   = 10
	DefaultLogMaxBackups  = 3
	DefaultLogMaxAgeDays  = 28
	DefaultPlatformRoot   = "."
	DefaultStagingDir     = "var/importexport"
	DefaultArea           = "adminhtml"
	DefaultEndpoint       = "http://127.0.0.1:8080/api"
	DefaultTimeoutSeconds = 60
	DefaultTokenEnv       = "CATALOG_IMPORT_TOKEN"
	DefaultHistoryDSNEnv  = "CATALOG_IMPORT_HISTORY_DSN"
)

// setDefaults registers all default configuration values with viper.
// Called during Init() before reading config files.
func setDefaults() {
	viper.SetDefault("log_level", DefaultLogLevel)
	viper.SetDefault("log_file", DefaultLogFile)
	viper.SetDefault("log_max_size_mb", DefaultLogMaxSizeMB)
	viper.SetDefault("log_max_backups", DefaultLogMaxBackups)
	viper.SetDefault("log_max_age_days", DefaultLogMaxAgeDays)

	viper.SetDefault("platform.root", DefaultPlatformRoot)
	viper.SetDefault("platform.staging_dir", DefaultStagingDir)
	viper.SetDefault("platform.area", DefaultArea)

	viper.SetDefault("pipeline.endpoint", DefaultEndpoint)
	viper.SetDefault("pipeline.timeout_seconds", DefaultTimeoutSeconds)
	viper.SetDefault("pipeline.token_env", DefaultTokenEnv)

	viper.SetDefault("history.enabled", false)
	viper.SetDefault("history.dsn_env", DefaultHistoryDSNEnv)

	viper.SetDefault("gcs.credentials_file", "")
}

// NewDefaultConfig returns a Config populated with default values.
func NewDefaultConfig() Config {
	return Config{
		LogLevel:       DefaultLogLevel,
		LogFile:        DefaultLogFile,
		LogMaxSizeMB:   DefaultLogMaxSizeMB,
		LogMaxBackups:  DefaultLogMaxBackups,
		LogMaxAgeDays:  DefaultLogMaxAgeDays,
		Platform: PlatformConfig{
			Root:       DefaultPlatformRoot,
			StagingDir: DefaultStagingDir,
			Area:       DefaultArea,
		},
		Pipeline: PipelineConfig{
			Endpoint:       DefaultEndpoint,
			TimeoutSeconds: DefaultTimeoutSeconds,
			TokenEnv:       DefaultTokenEnv,
		},
		History: HistoryConfig{
			DSNEnv: DefaultHistoryDSNEnv,
		},
	}
}
