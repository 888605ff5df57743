package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrConfigExists is returned by Write when the target file exists and
// overwrite was not requested.
var ErrConfigExists = errors.New("config file already exists")

// Render returns cfg as a YAML document preceded by a comment header naming
// the environment variables secrets are read from. Secrets themselves are
// never part of Config.
func Render(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config; %w", err)
	}

	header := fmt.Sprintf("# catalog-import configuration\n"+
		"#\n"+
		"# Secrets are read from the environment:\n"+
		"#   pipeline token: $%s\n"+
		"#   history DSN:    $%s\n"+
		"# Any key can be overridden with %s_<KEY>, dots replaced by underscores.\n\n",
		cfg.Pipeline.TokenEnv, cfg.History.DSNEnv, EnvPrefix)

	return append([]byte(header), data...), nil
}

// Write renders cfg to path. The parent directory is created with 0700 and
// the file is written with 0600. An existing file is replaced only when
// overwrite is true; otherwise ErrConfigExists is returned and the file is
// left untouched.
func Write(cfg *Config, path string, overwrite bool) error {
	path = expandHome(path)

	content, err := Render(cfg)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory %s; %w", dir, err)
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_EXCL
	if overwrite {
		flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}

	f, err := os.OpenFile(path, flags, 0600)
	if errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("%w: %s", ErrConfigExists, path)
	}
	if err != nil {
		return fmt.Errorf("failed to open config file %s; %w", path, err)
	}
	defer f.Close()

	if err := f.Chmod(0600); err != nil {
		return fmt.Errorf("failed to set permissions on %s; %w", path, err)
	}
	if _, err := f.Write(content); err != nil {
		return fmt.Errorf("failed to write config file %s; %w", path, err)
	}

	return f.Close()
}
