package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/designcoil/catalog-import/internal/pipeline"
)

// Status values recorded in a Document.
const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// Document is the machine-readable outcome of one command invocation.
type Document struct {
	Command            string                `json:"command" yaml:"command"`
	RunID              string                `json:"run_id" yaml:"run_id"`
	Entity             string                `json:"entity" yaml:"entity"`
	Behavior           string                `json:"behavior,omitempty" yaml:"behavior,omitempty"`
	SourceFile         string                `json:"source_file" yaml:"source_file"`
	StagedFile         string                `json:"staged_file,omitempty" yaml:"staged_file,omitempty"`
	Checksum           string                `json:"checksum,omitempty" yaml:"checksum,omitempty"`
	Status             string                `json:"status" yaml:"status"`
	Message            string                `json:"message,omitempty" yaml:"message,omitempty"`
	Counters           pipeline.Counters     `json:"counters" yaml:"counters"`
	InvalidRows        int                   `json:"invalid_rows" yaml:"invalid_rows"`
	TotalErrors        int                   `json:"total_errors" yaml:"total_errors"`
	ErrorLimitExceeded bool                  `json:"error_limit_exceeded" yaml:"error_limit_exceeded"`
	Errors             []pipeline.ErrorGroup `json:"errors,omitempty" yaml:"errors,omitempty"`
	StartedAt          time.Time             `json:"started_at" yaml:"started_at"`
	FinishedAt         time.Time             `json:"finished_at" yaml:"finished_at"`
}

// Fill copies counters and aggregator state into the document.
func (d *Document) Fill(c pipeline.Counters, agg pipeline.ErrorAggregator) {
	d.Counters = c
	if agg == nil {
		return
	}
	d.InvalidRows = agg.InvalidRowsCount()
	d.TotalErrors = agg.ErrorsCount(pipeline.LevelCritical, pipeline.LevelNotCritical)
	d.ErrorLimitExceeded = agg.IsErrorLimitExceeded()
	d.Errors = agg.RowsGroupedByMessage()
}

// WriteFile writes doc to path as JSON when the extension is .json and as
// YAML otherwise.
func WriteFile(path string, doc *Document) error {
	var (
		data []byte
		err  error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		data, err = json.MarshalIndent(doc, "", "  ")
		data = append(data, '\n')
	default:
		data, err = yaml.Marshal(doc)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal report; %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create report directory %s; %w", dir, err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report file %s; %w", path, err)
	}
	return nil
}
