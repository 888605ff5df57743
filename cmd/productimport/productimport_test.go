package productimport

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/designcoil/catalog-import/internal/cmdutil"
	"github.com/designcoil/catalog-import/internal/config"
	"github.com/designcoil/catalog-import/internal/history"
	"github.com/designcoil/catalog-import/internal/importconfig"
	"github.com/designcoil/catalog-import/internal/pipeline"
	"github.com/designcoil/catalog-import/internal/pipeline/pipelinetest"
	"github.com/designcoil/catalog-import/internal/testutil"
)

// useFake routes new sessions to fake and disables history for the test.
func useFake(t *testing.T, fake *pipelinetest.Fake) {
	t.Helper()
	origPipeline, origRecorder := newPipeline, newRecorder
	newPipeline = func(*config.Config, string, *slog.Logger) pipeline.Pipeline { return fake }
	newRecorder = func(context.Context, *config.Config, *slog.Logger) (history.Recorder, error) {
		return history.NopRecorder{}, nil
	}
	t.Cleanup(func() {
		newPipeline, newRecorder = origPipeline, origRecorder
	})
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRunCmd_ImportsValidFile(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.CreateTestFile(env.PlatformRoot, "products.csv", testutil.ProductCSV(10))
	fake := &pipelinetest.Fake{Rows: 10, Result: pipeline.Counters{Created: 10}}
	useFake(t, fake)

	out, err := execute(t, NewRunCmd(), "--entity=catalog_product", "--file=products.csv", "--behavior=append")
	if err != nil {
		t.Fatalf("run command failed: %v\n%s", err, out)
	}

	for _, want := range []string{
		"Validation passed. Importing 10 row(s) in 1 batch(es)...",
		"Import completed successfully.",
		"  Created: 10",
		"Rows processed:       10",
		"Invalid rows:         0",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	staged := filepath.Join(env.StagingDir(), "catalog_product.csv")
	data, err := os.ReadFile(staged)
	if err != nil {
		t.Fatalf("staged file missing: %v", err)
	}
	if string(data) != testutil.ProductCSV(10) {
		t.Error("staged file content differs from source")
	}
	if got := fake.Config().Behavior(); got != importconfig.BehaviorAppend {
		t.Errorf("behavior = %q, want append", got)
	}
}

func TestValidateCmd_RelativePlatformRoot(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.CreateTestFile(env.PlatformRoot, "products.csv", testutil.ProductCSV(3))
	t.Setenv("CATALOG_IMPORT_PLATFORM_ROOT", ".")
	t.Chdir(env.PlatformRoot)
	fake := &pipelinetest.Fake{Rows: 3}
	useFake(t, fake)

	out, err := execute(t, NewValidateCmd(), "--entity=catalog_product", "--file=products.csv")
	if err != nil {
		t.Fatalf("validate command failed: %v\n%s", err, out)
	}

	got := fake.Source().Path
	if !filepath.IsAbs(got) {
		t.Fatalf("source path sent to the platform = %q, want absolute", got)
	}
	if want := filepath.Join("var", "importexport", "catalog_product.csv"); !strings.HasSuffix(got, string(filepath.Separator)+want) {
		t.Errorf("source path = %q, want it to end in %s", got, want)
	}
}

func TestRunCmd_MissingFile(t *testing.T) {
	env := testutil.NewTestEnv(t)
	useFake(t, &pipelinetest.Fake{Rows: 10})

	out, err := execute(t, NewRunCmd(), "--entity=catalog_product", "--file=missing.csv")
	if err == nil {
		t.Fatal("expected run command to fail for a missing file")
	}
	if !cmdutil.IsReported(err) {
		t.Errorf("error should be marked as reported: %v", err)
	}
	if !strings.Contains(out, "import file not found") {
		t.Errorf("output missing input error:\n%s", out)
	}
	if _, statErr := os.Stat(env.StagingDir()); !os.IsNotExist(statErr) {
		t.Errorf("staging directory should not exist, stat error = %v", statErr)
	}
}

func TestValidateCmd_SkipErrorsUnderLimit(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.CreateTestFile(env.PlatformRoot, "products.csv", testutil.ProductCSV(10))
	useFake(t, &pipelinetest.Fake{Rows: 10, RowErrors: []pipelinetest.RowError{
		{Row: 2, Message: "SKU is required"},
		{Row: 5, Message: "SKU is required"},
		{Row: 8, Message: "Price is invalid"},
	}})

	out, err := execute(t, NewValidateCmd(),
		"--entity=catalog_product",
		"--file=products.csv",
		"--validation-strategy=validation-skip-errors",
		"--allowed-error-count=5")
	if err != nil {
		t.Fatalf("validate command failed: %v\n%s", err, out)
	}

	for _, want := range []string{
		"Validation result: OK",
		"Total errors:         3",
		"Error limit exceeded: No",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestValidateCmd_Rejected(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.CreateTestFile(env.PlatformRoot, "products.csv", testutil.ProductCSV(6))
	fake := &pipelinetest.Fake{Rows: 6, RowErrors: []pipelinetest.RowError{
		{Row: 2, Message: "SKU is required"},
		{Row: 5, Message: "SKU is required"},
	}}
	useFake(t, fake)

	out, err := execute(t, NewValidateCmd(), "--entity=catalog_product", "--file=products.csv")
	if err == nil {
		t.Fatal("expected validate command to fail")
	}
	if !strings.Contains(out, "SKU is required in row(s): 2, 5") {
		t.Errorf("output missing grouped error:\n%s", out)
	}
	if fake.Called("ImportSource") {
		t.Error("validate must not import")
	}
}

func TestValidateCmd_ReportFile(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.CreateTestFile(env.PlatformRoot, "products.csv", testutil.ProductCSV(1))
	useFake(t, &pipelinetest.Fake{Rows: 1})

	reportPath := filepath.Join(env.ConfigDir, "report.yaml")
	if _, err := execute(t, NewValidateCmd(), "--entity=catalog_product", "--file=products.csv", "--report-file="+reportPath); err != nil {
		t.Fatalf("validate command failed: %v", err)
	}

	data, err := os.ReadFile(reportPath)
	if err != nil {
		t.Fatalf("report file missing: %v", err)
	}
	if !strings.Contains(string(data), "command: product:import:validate") {
		t.Errorf("unexpected report:\n%s", data)
	}
}

func TestImportFlags_Options(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		wantImages *string
		wantLocale *string
	}{
		{
			name: "optional values omitted",
			args: []string{"--entity=catalog_product"},
		},
		{
			name:       "optional values provided",
			args:       []string{"--entity=catalog_product", "--images-file-dir=pub/media/import", "--locale=de_DE"},
			wantImages: ptr("pub/media/import"),
			wantLocale: ptr("de_DE"),
		},
		{
			name:       "provided empty",
			args:       []string{"--entity=catalog_product", "--images-file-dir="},
			wantImages: ptr(""),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flags := &importFlags{}
			cmd := &cobra.Command{Use: "test"}
			flags.register(cmd)
			if err := cmd.ParseFlags(tt.args); err != nil {
				t.Fatalf("ParseFlags() error = %v", err)
			}

			opts := flags.options(cmd)
			if opts.Behavior != "append" || opts.AllowedErrorCount != "10" || opts.Enclosure != `"` {
				t.Errorf("unexpected defaults: %+v", opts)
			}
			if !equalPtr(opts.ImagesFileDir, tt.wantImages) {
				t.Errorf("ImagesFileDir = %v, want %v", opts.ImagesFileDir, tt.wantImages)
			}
			if !equalPtr(opts.Locale, tt.wantLocale) {
				t.Errorf("Locale = %v, want %v", opts.Locale, tt.wantLocale)
			}
		})
	}
}

func ptr(s string) *string { return &s }

func equalPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
