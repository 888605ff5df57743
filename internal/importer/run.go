package importer

import (
	"context"
	"fmt"

	"github.com/designcoil/catalog-import/internal/cmdutil"
	"github.com/designcoil/catalog-import/internal/progress"
)

// RunCommand is the command name recorded for import runs.
const RunCommand = "product:import:run"

// Runner runs the full validate, import and reindex workflow.
type Runner struct {
	w        *Workflow
	progress *progress.Coordinator
}

// NewRunner returns a Runner using w and registers its batch observer on the
// workflow's pipeline. Batch progress is drawn on the workflow's output. A
// Runner may be reused, but at most one Runner should exist per pipeline.
func NewRunner(w *Workflow) *Runner {
	rn := &Runner{w: w, progress: progress.NewCoordinator()}
	w.pipeline.InterceptBatches(progress.Observer(rn.progress))
	return rn
}

// Run validates and imports the source. Any returned error has already
// been printed.
func (rn *Runner) Run(ctx context.Context, req Request) error {
	w := rn.w
	r := w.begin(RunCommand, req)
	defer func() { w.finish(ctx, r, req.ReportFile, true) }()

	fail := func(err error) error {
		r.failed = err
		return cmdutil.Reported(err)
	}

	staged, err := w.bootstrap(ctx, r, req.Options)
	if err != nil {
		return fail(err)
	}

	w.reporter.Info("Validating import data...")

	ok, err := w.pipeline.ValidateSource(ctx, staged.Source())
	if err != nil {
		w.reporter.Error(fmt.Sprintf("Validation failed: %s", err))
		w.renderOutcome(true)
		return fail(fmt.Errorf("%w: %w", ErrValidationFailed, err))
	}
	if !ok {
		w.reporter.Error("Validation failed. Import aborted.")
		w.renderOutcome(true)
		return fail(ErrValidationFailed)
	}

	batches := len(w.pipeline.ValidatedIDs())
	w.reporter.Info(fmt.Sprintf("Validation passed. Importing %d row(s) in %d batch(es)...",
		w.pipeline.Counters().ProcessedRows, batches))

	rn.progress.Start(progress.TerminalSink(w.reporter.Writer()), batches)

	ok, err = w.pipeline.ImportSource(ctx)
	rn.progress.Finish()

	switch {
	case err != nil:
		w.reporter.Error(fmt.Sprintf("Import failed: %s", err))
		w.renderOutcome(true)
		return fail(fmt.Errorf("%w: %w", ErrImportFailed, err))
	case !ok:
		w.reporter.Error("Import execution returned failure.")
		w.renderOutcome(true)
		return fail(fmt.Errorf("%w: platform returned failure", ErrImportFailed))
	case w.pipeline.ErrorAggregator().HasToBeTerminated():
		w.reporter.Error("Import completed with critical errors.")
		w.renderOutcome(true)
		return fail(fmt.Errorf("%w: critical errors", ErrImportFailed))
	}

	if err := w.pipeline.InvalidateIndex(ctx); err != nil {
		w.reporter.Error(fmt.Sprintf("Index invalidation failed: %s", err))
		w.renderOutcome(true)
		return fail(fmt.Errorf("%w: %w", ErrImportFailed, err))
	}

	w.logger.Debug("import completed", "batches", batches)

	w.reporter.Blank()
	w.reporter.Info("Import completed successfully.")
	w.reporter.Results(w.pipeline.Counters())

	w.renderOutcome(w.pipeline.ErrorAggregator().ErrorsCount() > 0)
	return nil
}
