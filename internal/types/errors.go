package types

import (
	"errors"
	"fmt"
)

// ValidationError reports malformed orchestrator input. It is the one error
// class surfaced to the caller before a PipelineRunResult exists.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation: " + e.Reason
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Reason)
}

// StageError wraps a stage's failure with its fatality classification.
type StageError struct {
	Stage string
	Fatal bool
	Err   error
}

func (e *StageError) Error() string {
	kind := "recoverable"
	if e.Fatal {
		kind = "fatal"
	}
	return fmt.Sprintf("stage %s (%s): %v", e.Stage, kind, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
