// Package importer sequences configuration, staging, the platform pipeline
// and reporting into the validate and run workflows.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/designcoil/catalog-import/internal/history"
	"github.com/designcoil/catalog-import/internal/importconfig"
	"github.com/designcoil/catalog-import/internal/pipeline"
	"github.com/designcoil/catalog-import/internal/report"
	"github.com/designcoil/catalog-import/internal/staging"
)

var (
	// ErrValidationFailed is returned when the platform rejects the data or
	// validation itself fails.
	ErrValidationFailed = errors.New("validation failed")

	// ErrImportFailed is returned when the import step fails, returns a
	// negative result or ends with critical errors.
	ErrImportFailed = errors.New("import failed")
)

// Request is one command invocation.
type Request struct {
	Options importconfig.Options
	// ReportFile, when set, receives a YAML or JSON report of the outcome.
	ReportFile string
}

// Deps are the collaborators shared by both workflows.
type Deps struct {
	Pipeline pipeline.Pipeline
	Stager   *staging.Stager
	Out      io.Writer
	Area     string
	RunID    string
	Logger   *slog.Logger
	Recorder history.Recorder
}

// Workflow holds the steps common to validate and run: area setup,
// configuration, staging, reporting and bookkeeping.
type Workflow struct {
	pipeline pipeline.Pipeline
	stager   *staging.Stager
	reporter *report.Reporter
	area     string
	runID    string
	logger   *slog.Logger
	recorder history.Recorder
	now      func() time.Time
}

// NewWorkflow creates a Workflow from deps.
func NewWorkflow(d Deps) *Workflow {
	w := &Workflow{
		pipeline: d.Pipeline,
		stager:   d.Stager,
		reporter: report.New(d.Out),
		area:     d.Area,
		runID:    d.RunID,
		logger:   d.Logger,
		recorder: d.Recorder,
		now:      time.Now,
	}
	if w.area == "" {
		w.area = pipeline.AreaAdminhtml
	}
	if w.logger == nil {
		w.logger = slog.Default()
	}
	if w.recorder == nil {
		w.recorder = history.NopRecorder{}
	}
	return w
}

// run tracks one invocation for the report file and history.
type run struct {
	doc    report.Document
	failed error
}

func (w *Workflow) begin(command string, req Request) *run {
	return &run{doc: report.Document{
		Command:    command,
		RunID:      w.runID,
		Entity:     req.Options.Entity,
		Behavior:   req.Options.Behavior,
		SourceFile: req.Options.File,
		StartedAt:  w.now().UTC(),
	}}
}

// bootstrap sets the area, builds and applies the configuration, and stages
// the source file. Failures are printed before returning.
func (w *Workflow) bootstrap(ctx context.Context, r *run, opts importconfig.Options) (staging.StagedSource, error) {
	if err := w.pipeline.SetArea(ctx, w.area); err != nil && !errors.Is(err, pipeline.ErrAreaAlreadySet) {
		w.logger.Warn("failed to set platform area", "area", w.area, "error", err)
	}

	staged, err := w.prepare(ctx, r, opts)
	if err != nil {
		w.reporter.Error(err.Error())
		return staging.StagedSource{}, err
	}
	return staged, nil
}

func (w *Workflow) prepare(ctx context.Context, r *run, opts importconfig.Options) (staging.StagedSource, error) {
	cfg, err := importconfig.Build(opts)
	if err != nil {
		return staging.StagedSource{}, err
	}
	r.doc.Behavior = string(cfg.Behavior())

	if opts.File == "" {
		return staging.StagedSource{}, fmt.Errorf("%w: --%s is required", importconfig.ErrInvalidOption, importconfig.OptFile)
	}

	if err := w.pipeline.Configure(cfg); err != nil {
		return staging.StagedSource{}, fmt.Errorf("failed to configure import; %w", err)
	}

	staged, err := w.stager.Stage(ctx, staging.Request{
		SourcePath: opts.File,
		EntityCode: cfg.Entity(),
		Delimiter:  cfg.FieldSeparator(),
		Enclosure:  cfg.Enclosure(),
	})
	if err != nil {
		return staging.StagedSource{}, err
	}
	r.doc.StagedFile = staged.StagingPath
	r.doc.Checksum = staged.Checksum

	w.logger.Debug("import source staged",
		"entity", cfg.Entity(),
		"source", staged.SourcePath,
		"staged", staged.StagingPath)

	return staged, nil
}

// renderOutcome prints the error groups, when any, and the summary.
func (w *Workflow) renderOutcome(withErrors bool) {
	agg := w.pipeline.ErrorAggregator()
	if withErrors {
		w.reporter.Errors(agg)
	}
	c := w.pipeline.Counters()
	w.reporter.Summary(c.ProcessedRows, c.ProcessedEntities, agg)
}

// finish completes the report file and history entry for r.
func (w *Workflow) finish(ctx context.Context, r *run, reportFile string, record bool) {
	r.doc.FinishedAt = w.now().UTC()
	r.doc.Status = report.StatusSucceeded
	if r.failed != nil {
		r.doc.Status = report.StatusFailed
		r.doc.Message = r.failed.Error()
	}
	r.doc.Fill(w.pipeline.Counters(), w.pipeline.ErrorAggregator())

	if reportFile != "" {
		if err := report.WriteFile(reportFile, &r.doc); err != nil {
			w.logger.Warn("failed to write report file", "path", reportFile, "error", err)
		}
	}

	if !record {
		return
	}
	err := w.recorder.Record(ctx, history.Entry{
		RunID:              r.doc.RunID,
		Command:            r.doc.Command,
		Entity:             r.doc.Entity,
		Behavior:           r.doc.Behavior,
		SourceFile:         r.doc.SourceFile,
		StagedFile:         r.doc.StagedFile,
		Checksum:           r.doc.Checksum,
		Status:             r.doc.Status,
		Message:            r.doc.Message,
		ProcessedRows:      r.doc.Counters.ProcessedRows,
		ProcessedEntities:  r.doc.Counters.ProcessedEntities,
		InvalidRows:        r.doc.InvalidRows,
		TotalErrors:        r.doc.TotalErrors,
		ErrorLimitExceeded: r.doc.ErrorLimitExceeded,
		StartedAt:          r.doc.StartedAt,
		FinishedAt:         r.doc.FinishedAt,
	})
	if err != nil {
		w.logger.Warn("failed to record import history", "run_id", r.doc.RunID, "error", err)
	}
}
