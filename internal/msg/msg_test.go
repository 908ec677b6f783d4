package msg

import (
	"errors"
	"testing"
)

func TestInfo(t *testing.T) {
	m := Info("Copied %s", "path")
	if m.Message != "Copied path" || m.IsError || m.Duration != InfoDuration {
		t.Errorf("Info() = %+v", m)
	}
}

func TestFailure(t *testing.T) {
	m := Failure("Copy failed: %v", errors.New("no clipboard"))
	if m.Message != "Copy failed: no clipboard" {
		t.Errorf("message = %q", m.Message)
	}
	if !m.IsError || m.Duration != FailureDuration {
		t.Errorf("Failure() = %+v", m)
	}
}
