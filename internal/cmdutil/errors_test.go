package cmdutil

import (
	"errors"
	"fmt"
	"testing"
)

var errBoom = errors.New("boom")

func TestReported(t *testing.T) {
	if Reported(nil) != nil {
		t.Error("Reported(nil) should be nil")
	}

	err := Reported(errBoom)
	if !IsReported(err) {
		t.Error("IsReported() = false for a reported error")
	}
	if !errors.Is(err, errBoom) {
		t.Error("reported error should unwrap to the cause")
	}
	if err.Error() != "boom" {
		t.Errorf("Error() = %q, want boom", err.Error())
	}

	wrapped := fmt.Errorf("command failed; %w", err)
	if !IsReported(wrapped) {
		t.Error("IsReported() should see through wrapping")
	}

	if IsReported(errBoom) {
		t.Error("IsReported() = true for an unmarked error")
	}
}
