package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/designcoil/catalog-import/internal/logging"
)

// ValidationError represents a config validation failure.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors represents multiple validation failures.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var b strings.Builder
	b.WriteString("config validation failed:\n")
	for _, err := range e {
		b.WriteString("  - ")
		b.WriteString(err.Error())
		b.WriteString("\n")
	}
	return b.String()
}

// Validate checks the configuration for errors.
// Returns ValidationErrors if validation fails.
func Validate(cfg *Config) error {
	var errs ValidationErrors

	if _, ok := logging.ParseLevel(cfg.LogLevel); !ok {
		errs = append(errs, ValidationError{
			Field:   "log_level",
			Message: fmt.Sprintf("must be one of debug, info, warn, error; got %q", cfg.LogLevel),
		})
	}

	limits := []struct {
		field string
		value int
	}{
		{"log_max_size_mb", cfg.LogMaxSizeMB},
		{"log_max_backups", cfg.LogMaxBackups},
		{"log_max_age_days", cfg.LogMaxAgeDays},
	}
	for _, l := range limits {
		if l.value < 0 {
			errs = append(errs, ValidationError{
				Field:   l.field,
				Message: fmt.Sprintf("must not be negative, got %d", l.value),
			})
		}
	}

	if cfg.Platform.Root == "" {
		errs = append(errs, ValidationError{Field: "platform.root", Message: "must not be empty"})
	}

	if cfg.Platform.StagingDir == "" {
		errs = append(errs, ValidationError{Field: "platform.staging_dir", Message: "must not be empty"})
	}

	if cfg.Platform.Area == "" {
		errs = append(errs, ValidationError{Field: "platform.area", Message: "must not be empty"})
	}

	if u, err := url.Parse(cfg.Pipeline.Endpoint); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, ValidationError{
			Field:   "pipeline.endpoint",
			Message: fmt.Sprintf("must be an http(s) URL, got %q", cfg.Pipeline.Endpoint),
		})
	}

	if cfg.Pipeline.TimeoutSeconds < 1 {
		errs = append(errs, ValidationError{
			Field:   "pipeline.timeout_seconds",
			Message: fmt.Sprintf("must be at least 1 second, got %d", cfg.Pipeline.TimeoutSeconds),
		})
	}

	if cfg.History.Enabled && cfg.History.DSNEnv == "" {
		errs = append(errs, ValidationError{
			Field:   "history.dsn_env",
			Message: "must be set when history is enabled",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
