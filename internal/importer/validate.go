package importer

import (
	"context"
	"fmt"

	"github.com/designcoil/catalog-import/internal/cmdutil"
)

// ValidateCommand is the command name recorded for validate runs.
const ValidateCommand = "product:import:validate"

// Validator runs the validate-only workflow.
type Validator struct {
	w *Workflow
}

// NewValidator returns a Validator using w.
func NewValidator(w *Workflow) *Validator {
	return &Validator{w: w}
}

// Validate stages the source and asks the platform to validate it. Any
// returned error has already been printed.
func (v *Validator) Validate(ctx context.Context, req Request) error {
	w := v.w
	r := w.begin(ValidateCommand, req)
	defer func() { w.finish(ctx, r, req.ReportFile, false) }()

	staged, err := w.bootstrap(ctx, r, req.Options)
	if err != nil {
		r.failed = err
		return cmdutil.Reported(err)
	}

	ok, err := w.pipeline.ValidateSource(ctx, staged.Source())
	if err != nil {
		w.reporter.Error(fmt.Sprintf("Validation failed: %s", err))
		r.failed = fmt.Errorf("%w: %w", ErrValidationFailed, err)
		return cmdutil.Reported(r.failed)
	}

	if !ok {
		w.reporter.Error("Validation result: FAILED")
		w.renderOutcome(true)
		r.failed = ErrValidationFailed
		return cmdutil.Reported(r.failed)
	}

	w.reporter.Info("Validation result: OK")
	w.renderOutcome(false)
	return nil
}
