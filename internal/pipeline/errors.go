package pipeline

// ErrorLevel is the severity of a processing error.
type ErrorLevel string

// Severity levels reported by the platform's error aggregator.
const (
	LevelCritical    ErrorLevel = "critical"
	LevelNotCritical ErrorLevel = "not-critical"
)

// ErrorGroup is one error message together with the rows it affected.
type ErrorGroup struct {
	Message string `json:"message" yaml:"message"`
	Rows    []int  `json:"rows" yaml:"rows"`
}

// ErrorAggregator is the read-only query surface of the platform's error
// aggregator.
type ErrorAggregator interface {
	// RowsGroupedByMessage returns errors grouped by message, in the order the
	// platform reported them.
	RowsGroupedByMessage() []ErrorGroup

	// ErrorsCount returns the number of errors at the given levels, or at all
	// levels when none are given.
	ErrorsCount(levels ...ErrorLevel) int

	InvalidRowsCount() int
	IsErrorLimitExceeded() bool

	// HasToBeTerminated reports whether critical errors exceeded tolerance.
	HasToBeTerminated() bool
}

// Aggregation is a snapshot of an error aggregator. Platform clients decode
// it from the wire; it also serves as a plain in-memory ErrorAggregator.
type Aggregation struct {
	Groups             []ErrorGroup       `json:"groups"`
	Counts             map[ErrorLevel]int `json:"errors_count"`
	InvalidRows        int                `json:"invalid_rows"`
	ErrorLimitExceeded bool               `json:"error_limit_exceeded"`
	Terminate          bool               `json:"has_to_be_terminated"`
}

var _ ErrorAggregator = (*Aggregation)(nil)

// RowsGroupedByMessage implements ErrorAggregator.
func (a *Aggregation) RowsGroupedByMessage() []ErrorGroup {
	if a == nil {
		return nil
	}
	return a.Groups
}

// ErrorsCount implements ErrorAggregator.
func (a *Aggregation) ErrorsCount(levels ...ErrorLevel) int {
	if a == nil {
		return 0
	}
	if len(levels) == 0 {
		total := 0
		for _, n := range a.Counts {
			total += n
		}
		return total
	}
	total := 0
	for _, level := range levels {
		total += a.Counts[level]
	}
	return total
}

// InvalidRowsCount implements ErrorAggregator.
func (a *Aggregation) InvalidRowsCount() int {
	if a == nil {
		return 0
	}
	return a.InvalidRows
}

// IsErrorLimitExceeded implements ErrorAggregator.
func (a *Aggregation) IsErrorLimitExceeded() bool {
	return a != nil && a.ErrorLimitExceeded
}

// HasToBeTerminated implements ErrorAggregator.
func (a *Aggregation) HasToBeTerminated() bool {
	return a != nil && a.Terminate
}
