// Package pipelinetest provides an in-memory pipeline.Pipeline for tests.
package pipelinetest

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/designcoil/catalog-import/internal/importconfig"
	"github.com/designcoil/catalog-import/internal/pipeline"
)

// RowError is one error the fake reports for a data row during validation.
type RowError struct {
	Row     int
	Message string
	Level   pipeline.ErrorLevel
}

// Fake is an in-memory pipeline. Zero values are usable; set fields before
// handing the fake to the code under test.
type Fake struct {
	// Rows is the number of data rows in the source.
	Rows int
	// Entities overrides the processed entities counter. Defaults to Rows.
	Entities int
	// BunchSize is the number of rows per batch. Defaults to 100.
	BunchSize int
	// RowErrors are reported by ValidateSource.
	RowErrors []RowError
	// Result is added to the counters by a successful ImportSource.
	Result pipeline.Counters
	// Unique makes ImportSource fetch with NextUniqueBunch.
	Unique bool

	AreaErr     error
	ConfigErr   error
	ValidateErr error
	ImportErr   error
	IndexErr    error
	// ImportFails makes ImportSource return false without an error.
	ImportFails bool
	// Terminate forces HasToBeTerminated after import.
	Terminate bool

	mu           sync.Mutex
	calls        []string
	cfg          importconfig.ImportConfiguration
	source       pipeline.Source
	interceptors []pipeline.BatchInterceptor
	agg          *pipeline.Aggregation
	counters     pipeline.Counters
	validatedIDs []int
	fetched      int
}

var _ pipeline.Pipeline = (*Fake)(nil)

// SetArea implements pipeline.Pipeline.
func (f *Fake) SetArea(ctx context.Context, area string) error {
	f.record("SetArea")
	return f.AreaErr
}

// Configure implements pipeline.Pipeline.
func (f *Fake) Configure(cfg importconfig.ImportConfiguration) error {
	f.record("Configure")
	if f.ConfigErr != nil {
		return f.ConfigErr
	}
	f.mu.Lock()
	f.cfg = cfg
	f.mu.Unlock()
	return nil
}

// ValidateSource implements pipeline.Pipeline.
func (f *Fake) ValidateSource(ctx context.Context, src pipeline.Source) (bool, error) {
	f.record("ValidateSource")
	if f.ValidateErr != nil {
		return false, f.ValidateErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.source = src
	f.agg = aggregate(f.RowErrors, f.cfg.AllowedErrorCount())

	entities := f.Entities
	if entities == 0 {
		entities = f.Rows
	}
	f.counters = pipeline.Counters{ProcessedRows: f.Rows, ProcessedEntities: entities}

	total := f.agg.ErrorsCount()
	ok := total == 0
	if f.cfg.ValidationStrategy() == importconfig.StrategySkipErrors {
		ok = !f.agg.ErrorLimitExceeded
	}
	if ok {
		f.validatedIDs = bunchIDs(f.Rows, f.bunchSize())
	} else {
		f.validatedIDs = nil
	}
	return ok, nil
}

// ImportSource implements pipeline.Pipeline.
func (f *Fake) ImportSource(ctx context.Context) (bool, error) {
	f.record("ImportSource")
	if f.ImportErr != nil {
		return false, f.ImportErr
	}

	f.mu.Lock()
	src := pipeline.Chain(&bunches{rows: f.Rows, size: f.bunchSize()}, f.interceptors...)
	f.mu.Unlock()

	fetched, err := pipeline.Drain(ctx, src, f.Unique)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetched = fetched
	if err != nil {
		return false, err
	}
	if f.ImportFails {
		return false, nil
	}
	if f.Terminate {
		if f.agg == nil {
			f.agg = &pipeline.Aggregation{}
		}
		f.agg.Terminate = true
	}
	f.counters.Created += f.Result.Created
	f.counters.Updated += f.Result.Updated
	f.counters.Deleted += f.Result.Deleted
	return true, nil
}

// InvalidateIndex implements pipeline.Pipeline.
func (f *Fake) InvalidateIndex(ctx context.Context) error {
	f.record("InvalidateIndex")
	return f.IndexErr
}

// ErrorAggregator implements pipeline.Pipeline.
func (f *Fake) ErrorAggregator() pipeline.ErrorAggregator {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.agg == nil {
		return &pipeline.Aggregation{}
	}
	return f.agg
}

// Counters implements pipeline.Pipeline.
func (f *Fake) Counters() pipeline.Counters {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.counters
}

// ValidatedIDs implements pipeline.Pipeline.
func (f *Fake) ValidatedIDs() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.validatedIDs
}

// InterceptBatches implements pipeline.Pipeline.
func (f *Fake) InterceptBatches(interceptor pipeline.BatchInterceptor) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.interceptors = append(f.interceptors, interceptor)
}

// Calls returns the pipeline methods invoked so far, in order.
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// Called reports whether method was invoked.
func (f *Fake) Called(method string) bool {
	for _, c := range f.Calls() {
		if c == method {
			return true
		}
	}
	return false
}

// Config returns the configuration last passed to Configure.
func (f *Fake) Config() importconfig.ImportConfiguration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cfg
}

// Source returns the source last passed to ValidateSource.
func (f *Fake) Source() pipeline.Source {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.source
}

// Fetched returns how many bunches the last import pulled.
func (f *Fake) Fetched() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetched
}

// ErrPlatform is a convenience error for injected failures.
var ErrPlatform = errors.New("platform failure")

func (f *Fake) record(method string) {
	f.mu.Lock()
	f.calls = append(f.calls, method)
	f.mu.Unlock()
}

func (f *Fake) bunchSize() int {
	if f.BunchSize <= 0 {
		return 100
	}
	return f.BunchSize
}

func aggregate(rowErrors []RowError, allowed int) *pipeline.Aggregation {
	agg := &pipeline.Aggregation{Counts: map[pipeline.ErrorLevel]int{}}
	index := map[string]int{}
	invalid := map[int]struct{}{}

	for _, e := range rowErrors {
		level := e.Level
		if level == "" {
			level = pipeline.LevelNotCritical
		}
		agg.Counts[level]++
		invalid[e.Row] = struct{}{}

		i, ok := index[e.Message]
		if !ok {
			i = len(agg.Groups)
			index[e.Message] = i
			agg.Groups = append(agg.Groups, pipeline.ErrorGroup{Message: e.Message})
		}
		agg.Groups[i].Rows = appendRow(agg.Groups[i].Rows, e.Row)
	}

	agg.InvalidRows = len(invalid)
	agg.ErrorLimitExceeded = len(rowErrors) > allowed
	return agg
}

func appendRow(rows []int, row int) []int {
	i := sort.SearchInts(rows, row)
	if i < len(rows) && rows[i] == row {
		return rows
	}
	rows = append(rows, 0)
	copy(rows[i+1:], rows[i:])
	rows[i] = row
	return rows
}

func bunchIDs(rows, size int) []int {
	n := (rows + size - 1) / size
	ids := make([]int, n)
	for i := range ids {
		ids[i] = i + 1
	}
	return ids
}

type bunches struct {
	rows int
	size int
	next int
}

func (b *bunches) NextBunch(ctx context.Context) (*pipeline.Bunch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := b.next * b.size
	if start >= b.rows {
		return nil, nil
	}
	b.next++
	return &pipeline.Bunch{ID: b.next, Rows: min(b.size, b.rows-start)}, nil
}

func (b *bunches) NextUniqueBunch(ctx context.Context) (*pipeline.Bunch, error) {
	return b.NextBunch(ctx)
}
