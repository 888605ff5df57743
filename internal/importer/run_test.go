package importer

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/designcoil/catalog-import/internal/pipeline"
	"github.com/designcoil/catalog-import/internal/pipeline/pipelinetest"
	"github.com/designcoil/catalog-import/internal/report"
)

func TestRun_Success(t *testing.T) {
	h := newHarness(t, &pipelinetest.Fake{Rows: 10, BunchSize: 4, Result: pipeline.Counters{Created: 10}})
	h.writeSource(t, "products.csv", 10)

	if err := NewRunner(h.workflow).Run(context.Background(), productRequest("products.csv")); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	out := h.out.String()
	wantOutput(t, out,
		"Validating import data...",
		"Validation passed. Importing 10 row(s) in 3 batch(es)...",
		"\r  100% ["+strings.Repeat("=", 28)+"] (3/3) \n",
		"Import completed successfully.",
		"  Created: 10",
		"  Updated: 0",
		"  Deleted: 0",
		"Rows processed:       10",
		"Invalid rows:         0")
	rejectOutput(t, out, "Errors:")

	if h.fake.Fetched() != 3 {
		t.Errorf("Fetched() = %d, want 3", h.fake.Fetched())
	}
	want := []string{"SetArea", "Configure", "ValidateSource", "ImportSource", "InvalidateIndex"}
	if got := h.fake.Calls(); !reflect.DeepEqual(got, want) {
		t.Errorf("Calls() = %v, want %v", got, want)
	}

	if len(h.recorder.entries) != 1 {
		t.Fatalf("recorded %d history entries, want 1", len(h.recorder.entries))
	}
	entry := h.recorder.entries[0]
	if entry.Command != RunCommand {
		t.Errorf("entry.Command = %q, want %q", entry.Command, RunCommand)
	}
	if entry.Status != report.StatusSucceeded {
		t.Errorf("entry.Status = %q, want %q", entry.Status, report.StatusSucceeded)
	}
	if entry.Behavior != "append" {
		t.Errorf("entry.Behavior = %q, want append", entry.Behavior)
	}
	if entry.StagedFile != h.stagedPath() {
		t.Errorf("entry.StagedFile = %q, want %q", entry.StagedFile, h.stagedPath())
	}
	if len(entry.Checksum) != 64 {
		t.Errorf("entry.Checksum = %q, want a sha256 hex digest", entry.Checksum)
	}
	if entry.ProcessedRows != 10 {
		t.Errorf("entry.ProcessedRows = %d, want 10", entry.ProcessedRows)
	}
}

func TestRun_ReusedRunnerObservesEachBatchOnce(t *testing.T) {
	h := newHarness(t, &pipelinetest.Fake{Rows: 10, BunchSize: 4, Result: pipeline.Counters{Created: 10}})
	h.writeSource(t, "products.csv", 10)

	runner := NewRunner(h.workflow)
	for i := 1; i <= 2; i++ {
		if err := runner.Run(context.Background(), productRequest("products.csv")); err != nil {
			t.Fatalf("run %d: Run() error = %v", i, err)
		}
		if got := runner.progress.Advanced(); got != 3 {
			t.Errorf("run %d: Advanced() = %d, want 3", i, got)
		}
		if got := h.fake.Fetched(); got != 3 {
			t.Errorf("run %d: Fetched() = %d, want 3", i, got)
		}
	}
}

func TestRun_MissingFile(t *testing.T) {
	h := newHarness(t, &pipelinetest.Fake{Rows: 10})

	err := NewRunner(h.workflow).Run(context.Background(), productRequest(filepath.Join(h.root, "nope.csv")))

	if err == nil {
		t.Fatal("Run() expected error")
	}
	wantOutput(t, h.out.String(), "import file not found")
	if h.stagingDirExists() {
		t.Error("staging directory must not be created")
	}
	if h.fake.Called("ImportSource") {
		t.Error("ImportSource must not be called")
	}

	if len(h.recorder.entries) != 1 {
		t.Fatalf("recorded %d history entries, want 1", len(h.recorder.entries))
	}
	if got := h.recorder.entries[0].Status; got != report.StatusFailed {
		t.Errorf("entry.Status = %q, want %q", got, report.StatusFailed)
	}
}

func TestRun_ValidationRejected(t *testing.T) {
	h := newHarness(t, &pipelinetest.Fake{Rows: 10, RowErrors: []pipelinetest.RowError{{Row: 3, Message: "Invalid value in Price column"}}})
	h.writeSource(t, "products.csv", 10)

	err := NewRunner(h.workflow).Run(context.Background(), productRequest("products.csv"))

	if !errors.Is(err, ErrValidationFailed) {
		t.Errorf("Run() error = %v, want ErrValidationFailed", err)
	}
	wantOutput(t, h.out.String(),
		"Validation failed. Import aborted.",
		"Invalid value in Price column in row(s): 3",
		"Summary:")
	if h.fake.Called("ImportSource") {
		t.Error("ImportSource must not be called")
	}
}

func TestRun_ValidationException(t *testing.T) {
	h := newHarness(t, &pipelinetest.Fake{ValidateErr: pipelinetest.ErrPlatform})
	h.writeSource(t, "products.csv", 1)

	err := NewRunner(h.workflow).Run(context.Background(), productRequest("products.csv"))

	if !errors.Is(err, ErrValidationFailed) {
		t.Errorf("Run() error = %v, want ErrValidationFailed", err)
	}
	wantOutput(t, h.out.String(), "Validation failed: platform failure", "Summary:")
}

func TestRun_ImportException(t *testing.T) {
	h := newHarness(t, &pipelinetest.Fake{Rows: 5, ImportErr: pipelinetest.ErrPlatform})
	h.writeSource(t, "products.csv", 5)

	runner := NewRunner(h.workflow)
	err := runner.Run(context.Background(), productRequest("products.csv"))

	if !errors.Is(err, ErrImportFailed) || !errors.Is(err, pipelinetest.ErrPlatform) {
		t.Errorf("Run() error = %v, want ErrImportFailed wrapping ErrPlatform", err)
	}
	wantOutput(t, h.out.String(), "Import failed: platform failure")
	if runner.progress.IsActive() {
		t.Error("progress should be finished after a failed import")
	}
	if h.fake.Called("InvalidateIndex") {
		t.Error("InvalidateIndex must not be called")
	}
}

func TestRun_ImportReturnsFailure(t *testing.T) {
	h := newHarness(t, &pipelinetest.Fake{Rows: 5, ImportFails: true})
	h.writeSource(t, "products.csv", 5)

	runner := NewRunner(h.workflow)
	err := runner.Run(context.Background(), productRequest("products.csv"))

	if !errors.Is(err, ErrImportFailed) {
		t.Errorf("Run() error = %v, want ErrImportFailed", err)
	}
	wantOutput(t, h.out.String(), "Import execution returned failure.")
	if runner.progress.IsActive() {
		t.Error("progress should be finished after a failed import")
	}
}

func TestRun_CriticalErrors(t *testing.T) {
	h := newHarness(t, &pipelinetest.Fake{Rows: 5, Terminate: true})
	h.writeSource(t, "products.csv", 5)

	err := NewRunner(h.workflow).Run(context.Background(), productRequest("products.csv"))

	if !errors.Is(err, ErrImportFailed) {
		t.Errorf("Run() error = %v, want ErrImportFailed", err)
	}
	wantOutput(t, h.out.String(), "Import completed with critical errors.")
	if h.fake.Called("InvalidateIndex") {
		t.Error("InvalidateIndex must not be called")
	}
}

func TestRun_IndexFailure(t *testing.T) {
	h := newHarness(t, &pipelinetest.Fake{Rows: 5, IndexErr: pipelinetest.ErrPlatform})
	h.writeSource(t, "products.csv", 5)

	err := NewRunner(h.workflow).Run(context.Background(), productRequest("products.csv"))

	if !errors.Is(err, ErrImportFailed) {
		t.Errorf("Run() error = %v, want ErrImportFailed", err)
	}
	wantOutput(t, h.out.String(), "Index invalidation failed: platform failure")
	rejectOutput(t, h.out.String(), "Import completed successfully.")
}

func TestRun_SuccessWithTolerableErrors(t *testing.T) {
	h := newHarness(t, &pipelinetest.Fake{Rows: 10, RowErrors: []pipelinetest.RowError{{Row: 4, Message: "URL key is duplicated"}}})
	h.writeSource(t, "products.csv", 10)

	req := productRequest("products.csv")
	req.Options.ValidationStrategy = "validation-skip-errors"

	if err := NewRunner(h.workflow).Run(context.Background(), req); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	wantOutput(t, h.out.String(),
		"Import completed successfully.",
		"URL key is duplicated in row(s): 4",
		"Total errors:         1")
}

func TestRun_EmptySource(t *testing.T) {
	h := newHarness(t, &pipelinetest.Fake{Rows: 0})
	h.writeSource(t, "products.csv", 0)

	if err := NewRunner(h.workflow).Run(context.Background(), productRequest("products.csv")); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	wantOutput(t, h.out.String(),
		"Importing 0 row(s) in 0 batch(es)...",
		"\r  100% ["+strings.Repeat("=", 28)+"] (0/0) \n")
}

func TestRun_WritesJSONReport(t *testing.T) {
	h := newHarness(t, &pipelinetest.Fake{Rows: 2, Result: pipeline.Counters{Updated: 2}})
	h.writeSource(t, "products.csv", 2)

	req := productRequest("products.csv")
	req.ReportFile = filepath.Join(t.TempDir(), "run.json")

	if err := NewRunner(h.workflow).Run(context.Background(), req); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	data, err := os.ReadFile(req.ReportFile)
	if err != nil {
		t.Fatalf("report file not written: %v", err)
	}
	var doc report.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("report is not JSON: %v", err)
	}
	if doc.Command != RunCommand {
		t.Errorf("Command = %q, want %q", doc.Command, RunCommand)
	}
	if doc.Counters.Updated != 2 {
		t.Errorf("Counters.Updated = %d, want 2", doc.Counters.Updated)
	}
	if doc.StagedFile != h.stagedPath() {
		t.Errorf("StagedFile = %q, want %q", doc.StagedFile, h.stagedPath())
	}
	if len(doc.Checksum) != 64 {
		t.Errorf("Checksum = %q, want a sha256 hex digest", doc.Checksum)
	}
	if doc.FinishedAt.Before(doc.StartedAt) {
		t.Errorf("FinishedAt %v before StartedAt %v", doc.FinishedAt, doc.StartedAt)
	}
}
