package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Client is the minimal LLM contract every stage depends on. Implementations
// must return syntactically valid JSON or an error.
type Client interface {
	Name() string
	GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error)
	Close() error
}

// ErrInvalidJSON reports a model response that is not parseable JSON.
var ErrInvalidJSON = errors.New("llm: invalid JSON from model")

// PermanentError marks failures that must not be retried
// (validation-class errors, as opposed to network/timeout-class ones).
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return fmt.Sprintf("permanent: %v", e.Err) }
func (e *PermanentError) Unwrap() error { return e.Err }

// Permanent wraps err as non-retryable. Returns nil when err is nil.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// IsPermanent reports whether err is marked non-retryable.
func IsPermanent(err error) bool {
	var pe *PermanentError
	return errors.As(err, &pe)
}
