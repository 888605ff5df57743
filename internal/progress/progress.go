// Package progress renders a live batch progress bar while the platform
// pipeline imports data.
//
// The pipeline's import loop has no return channel to the command other than
// the batch-fetch extension point, so the Coordinator created by a command is
// shared with the Observer registered on that pipeline. One Coordinator serves
// exactly one import at a time and is not safe for concurrent use.
package progress

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/k0kubun/go-ansi"
	"github.com/schollz/progressbar/v3"
)

// barWidth is the number of cells between the brackets.
const barWidth = 28

// indicator is the visual part of the coordinator.
type indicator interface {
	Add(n int) error
	Finish() error
}

// Coordinator tracks the number of batches fetched during an import and keeps
// a progress indicator in sync with it.
type Coordinator struct {
	sink     io.Writer
	bar      indicator
	total    int
	advanced int
	active   bool
}

// NewCoordinator returns an inactive Coordinator.
func NewCoordinator() *Coordinator {
	return &Coordinator{}
}

// Start binds the output sink and the expected number of batches, resets the
// advanced count and activates the coordinator. A zero total renders a
// completed (0/0) indicator on Finish.
func (c *Coordinator) Start(sink io.Writer, totalBatches int) {
	if totalBatches < 0 {
		totalBatches = 0
	}

	c.sink = sink
	c.total = totalBatches
	c.advanced = 0
	c.active = true

	if totalBatches == 0 {
		c.bar = &emptyBar{sink: sink}
		return
	}

	c.bar = progressbar.NewOptions(totalBatches,
		progressbar.OptionSetWriter(sink),
		progressbar.OptionSetDescription(" "),
		progressbar.OptionSetWidth(barWidth),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionSetElapsedTime(false),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}

// Advance records one fetched batch and re-renders the indicator. It is a
// no-op while inactive. Calls beyond the total are counted but the indicator
// stays at 100%.
func (c *Coordinator) Advance() {
	if !c.active {
		return
	}

	c.advanced++
	if c.advanced <= c.total {
		_ = c.bar.Add(1)
	}
}

// Finish renders the completed indicator followed by a newline, then releases
// the sink and indicator. Calling Finish while inactive does nothing.
func (c *Coordinator) Finish() {
	if !c.active {
		return
	}

	_ = c.bar.Finish()
	fmt.Fprintln(c.sink)

	c.bar = nil
	c.sink = nil
	c.active = false
}

// IsActive reports whether an import is currently being tracked.
func (c *Coordinator) IsActive() bool {
	return c.active
}

// Advanced returns the number of batches recorded since Start.
func (c *Coordinator) Advanced() int {
	return c.advanced
}

// Total returns the batch count passed to Start.
func (c *Coordinator) Total() int {
	return c.total
}

// emptyBar stands in for a progress bar when there is nothing to import. Its
// single frame has the same layout as a finished progressbar frame.
type emptyBar struct {
	sink io.Writer
}

func (b *emptyBar) Add(int) error { return nil }

func (b *emptyBar) Finish() error {
	_, err := fmt.Fprintf(b.sink, "\r  100%% [%s] (0/0) ", strings.Repeat("=", barWidth))
	return err
}

// TerminalSink returns an ANSI-capable writer when w is the process stdout,
// so the bar redraws correctly on Windows consoles. Other writers are
// returned unchanged.
func TerminalSink(w io.Writer) io.Writer {
	if f, ok := w.(*os.File); ok && f == os.Stdout {
		return ansi.NewAnsiStdout()
	}
	return w
}
