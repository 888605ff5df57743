// Package pipeline defines the contract of the platform's import pipeline.
//
// The pipeline itself (row parsing, entity validation, persistence and index
// maintenance) lives in the platform. This package only describes the surface
// the command layer drives: configuration, validate/import entry points,
// counters, the error aggregator, and the batch-fetch extension point that
// progress reporting hooks into.
package pipeline

import (
	"context"
	"errors"

	"github.com/designcoil/catalog-import/internal/importconfig"
)

// AreaAdminhtml is the operating area import entity adapters resolve under.
const AreaAdminhtml = "adminhtml"

// ErrAreaAlreadySet is returned by SetArea when an area was set earlier.
// Callers treat it as success.
var ErrAreaAlreadySet = errors.New("area code is already set")

// Pipeline is the platform import engine as seen by the command layer.
type Pipeline interface {
	// SetArea sets the platform operating area.
	SetArea(ctx context.Context, area string) error

	// Configure hands the run configuration to the pipeline.
	Configure(cfg importconfig.ImportConfiguration) error

	// ValidateSource validates the staged source. A false result with a nil
	// error means the data was rejected; details are in the ErrorAggregator.
	ValidateSource(ctx context.Context, src Source) (bool, error)

	// ImportSource imports the previously validated data. Batch fetches made
	// while importing pass through every registered BatchInterceptor.
	ImportSource(ctx context.Context) (bool, error)

	// InvalidateIndex marks indexes affected by the import as invalid.
	InvalidateIndex(ctx context.Context) error

	// ErrorAggregator returns the errors collected so far.
	ErrorAggregator() ErrorAggregator

	// Counters returns the processed/created/updated/deleted counters.
	Counters() Counters

	// ValidatedIDs returns the IDs of the validated bunches. Its length is the
	// number of batches the import will fetch.
	ValidatedIDs() []int

	// InterceptBatches registers an interceptor around the batch source used
	// by ImportSource.
	InterceptBatches(interceptor BatchInterceptor)
}

// Source is the source adapter bound to a staged file.
type Source struct {
	Path      string `json:"path" yaml:"path"`
	Delimiter string `json:"delimiter" yaml:"delimiter"`
	Enclosure string `json:"enclosure" yaml:"enclosure"`
}

// Counters are the pipeline's row and entity counters.
type Counters struct {
	ProcessedRows     int `json:"processed_rows" yaml:"processed_rows"`
	ProcessedEntities int `json:"processed_entities" yaml:"processed_entities"`
	Created           int `json:"created" yaml:"created"`
	Updated           int `json:"updated" yaml:"updated"`
	Deleted           int `json:"deleted" yaml:"deleted"`
}
