// Package testutil provides testing utilities for isolated test environments.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/designcoil/catalog-import/internal/config"
)

// TestEnv provides an isolated test environment: its own config directory
// and a fake platform root with an empty staging area.
type TestEnv struct {
	t            *testing.T
	ConfigDir    string
	PlatformRoot string
}

// NewTestEnv creates an isolated test environment.
// Environment variables override every path-bearing setting, and config is
// reinitialized from them. Cleanup is automatic via t.Cleanup.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	base := t.TempDir()
	configDir := filepath.Join(base, "config")
	platformRoot := filepath.Join(base, "shop")
	for _, dir := range []string{configDir, platformRoot} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("failed to create test dir %s: %v", dir, err)
		}
	}

	t.Setenv("HOME", base)
	t.Setenv("CATALOG_IMPORT_CONFIG_DIR", configDir)
	t.Setenv("CATALOG_IMPORT_LOG_FILE", filepath.Join(configDir, "catalog-import.log"))
	t.Setenv("CATALOG_IMPORT_PLATFORM_ROOT", platformRoot)
	t.Setenv("CATALOG_IMPORT_HISTORY_ENABLED", "false")
	t.Chdir(base)

	config.Reset()
	if err := config.Init(""); err != nil {
		t.Fatalf("failed to initialize test config: %v", err)
	}

	t.Cleanup(config.Reset)

	return &TestEnv{
		t:            t,
		ConfigDir:    configDir,
		PlatformRoot: platformRoot,
	}
}

// StagingDir returns the default staging directory under the platform root.
func (e *TestEnv) StagingDir() string {
	return filepath.Join(e.PlatformRoot, config.DefaultStagingDir)
}

// CreateTestDir creates a directory outside the platform root.
// Returns the absolute path to the created directory.
func (e *TestEnv) CreateTestDir(name string) string {
	e.t.Helper()

	dir := filepath.Join(e.t.TempDir(), "testdata", name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		e.t.Fatalf("failed to create test dir %s: %v", name, err)
	}
	return dir
}

// CreateTestFile creates a file with the given content.
// Returns the absolute path to the created file.
func (e *TestEnv) CreateTestFile(dir, name, content string) string {
	e.t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		e.t.Fatalf("failed to create dir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		e.t.Fatalf("failed to create test file %s: %v", path, err)
	}
	return path
}

// ProductCSV returns a catalog_product CSV with n data rows.
func ProductCSV(n int) string {
	var b strings.Builder
	b.WriteString("sku,name,price,attribute_set_code,product_type\n")
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, "SKU-%d,Product %d,9.99,Default,simple\n", i, i)
	}
	return b.String()
}
