package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/designcoil/catalog-import/internal/testutil"
)

func TestRootCommand_Subcommands(t *testing.T) {
	want := [][]string{
		{"product:import:run"},
		{"product:import:validate"},
		{"version"},
		{"config", "init"},
		{"config", "show"},
		{"config", "validate"},
	}

	for _, path := range want {
		cmd, _, err := rootCmd.Find(path)
		if err != nil {
			t.Errorf("Find(%v) error = %v", path, err)
			continue
		}
		if name := path[len(path)-1]; cmd.Name() != name {
			t.Errorf("Find(%v) = %q, want %q", path, cmd.Name(), name)
		}
	}
}

func TestRunInitialize_UpgradesLogging(t *testing.T) {
	env := testutil.NewTestEnv(t)
	t.Cleanup(func() { _ = logManager.Close() })

	if err := runInitialize(rootCmd, nil); err != nil {
		t.Fatalf("runInitialize() error = %v", err)
	}

	logManager.Logger().Info("initialized")

	logFile := filepath.Join(env.ConfigDir, "catalog-import.log")
	info, err := os.Stat(logFile)
	if err != nil {
		t.Fatalf("expected log file at %s: %v", logFile, err)
	}
	if info.Size() == 0 {
		t.Error("expected log file to contain the JSON record")
	}
}

func TestRunInitialize_ExplicitConfigFile(t *testing.T) {
	env := testutil.NewTestEnv(t)
	t.Cleanup(func() {
		configFile = ""
		_ = logManager.Close()
	})

	configFile = env.CreateTestFile(env.CreateTestDir("conf"), "custom.yaml", "log_level: verbose\n")

	if err := runInitialize(rootCmd, nil); err != nil {
		t.Fatalf("runInitialize() with unknown log level should fall back, got error = %v", err)
	}
}

func TestRunInitialize_MissingConfigFile(t *testing.T) {
	testutil.NewTestEnv(t)
	t.Cleanup(func() { configFile = "" })

	configFile = filepath.Join(t.TempDir(), "absent.yaml")

	if err := runInitialize(rootCmd, nil); err == nil {
		t.Error("expected error for a missing explicit config file")
	}
}
