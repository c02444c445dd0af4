package llm

import (
	"context"
	"encoding/json"
)

// PromptHook observes LLM calls around GenerateJSON. Useful for persisting
// prompts and raw responses for debugging.
type PromptHook interface {
	Before(ctx context.Context, stage, prompt string, input any)
	After(ctx context.Context, stage string, raw json.RawMessage, err error)
}

type ctxKeyHook struct{}
type ctxKeyStage struct{}

// WithStage tags the context with the pipeline stage issuing the call.
func WithStage(ctx context.Context, stage string) context.Context {
	return context.WithValue(ctx, ctxKeyStage{}, stage)
}

// StageFrom returns the stage stored in the context.
func StageFrom(ctx context.Context) string {
	if v := ctx.Value(ctxKeyStage{}); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return "unknown"
}

// WithPromptHook attaches a hook to the context used by GenerateJSON.
func WithPromptHook(ctx context.Context, hook PromptHook) context.Context {
	return context.WithValue(ctx, ctxKeyHook{}, hook)
}

// HookFrom returns the hook stored in the context, if any.
func HookFrom(ctx context.Context) PromptHook {
	if v := ctx.Value(ctxKeyHook{}); v != nil {
		if h, ok := v.(PromptHook); ok {
			return h
		}
	}
	return nil
}
