package types

import (
	"errors"
	"strings"
	"testing"
)

func TestStageErrorWrapping(t *testing.T) {
	inner := errors.New("quota exceeded")
	err := &StageError{Stage: StageContent, Fatal: true, Err: inner}
	if !errors.Is(err, inner) {
		t.Fatal("StageError must unwrap to its cause")
	}
	msg := err.Error()
	if !strings.Contains(msg, StageContent) || !strings.Contains(msg, "fatal") {
		t.Fatalf("unexpected message %q", msg)
	}

	err = &StageError{Stage: StageDiagramRender, Err: inner}
	if !strings.Contains(err.Error(), "recoverable") {
		t.Fatalf("non-fatal stage errors are recoverable: %q", err.Error())
	}
}
