package productimport

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/designcoil/catalog-import/internal/config"
	"github.com/designcoil/catalog-import/internal/history"
	"github.com/designcoil/catalog-import/internal/importer"
	"github.com/designcoil/catalog-import/internal/pipeline"
	"github.com/designcoil/catalog-import/internal/pipeline/httpapi"
	"github.com/designcoil/catalog-import/internal/staging"
)

// PipelineFactory builds the platform pipeline for one command invocation.
type PipelineFactory func(cfg *config.Config, runID string, logger *slog.Logger) pipeline.Pipeline

// RecorderFactory opens the history recorder for one import run.
type RecorderFactory func(ctx context.Context, cfg *config.Config, logger *slog.Logger) (history.Recorder, error)

// Replaced in tests.
var (
	newPipeline PipelineFactory = httpPipeline
	newRecorder RecorderFactory = openRecorder
)

func httpPipeline(cfg *config.Config, runID string, logger *slog.Logger) pipeline.Pipeline {
	return httpapi.New(cfg.Pipeline.Endpoint,
		httpapi.WithTimeout(cfg.Pipeline.Timeout()),
		httpapi.WithToken(cfg.Pipeline.ResolveToken()),
		httpapi.WithRunID(runID),
		httpapi.WithLogger(logger),
	)
}

func openRecorder(ctx context.Context, cfg *config.Config, logger *slog.Logger) (history.Recorder, error) {
	if !cfg.History.Enabled {
		return history.NopRecorder{}, nil
	}
	dsn := cfg.History.ResolveDSN()
	if dsn == "" {
		return nil, fmt.Errorf("history is enabled but %s is not set", cfg.History.DSNEnv)
	}
	return history.NewPostgresRecorder(ctx, dsn, logger)
}

// session is everything one command invocation needs.
type session struct {
	workflow *importer.Workflow
	cleanup  func()
}

func newSession(ctx context.Context, out io.Writer, record bool) (*session, error) {
	cfg, err := config.Get()
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	logger := slog.Default().With("run_id", runID)

	gcs := staging.NewGCSFetcher(cfg.GCS.CredentialsFile)
	stager, err := staging.NewStager(cfg.Platform.Root, cfg.Platform.StagingDir, logger, gcs)
	if err != nil {
		_ = gcs.Close()
		return nil, err
	}
	cleanups := []func(){func() { _ = gcs.Close() }}

	var recorder history.Recorder = history.NopRecorder{}
	if record {
		r, err := newRecorder(ctx, cfg, logger)
		if err != nil {
			logger.Warn("import history disabled", "error", err)
		} else {
			recorder = r
			cleanups = append(cleanups, r.Close)
		}
	}

	workflow := importer.NewWorkflow(importer.Deps{
		Pipeline: newPipeline(cfg, runID, logger),
		Stager:   stager,
		Out:      out,
		Area:     cfg.Platform.Area,
		RunID:    runID,
		Logger:   logger,
		Recorder: recorder,
	})

	logger.Debug("import session created",
		"endpoint", cfg.Pipeline.Endpoint,
		"platform_root", stager.Root(),
		"staging_dir", stager.Dir())

	return &session{
		workflow: workflow,
		cleanup: func() {
			for _, fn := range cleanups {
				fn()
			}
		},
	}, nil
}
