// Package llm abstracts the external text-generation service behind a small
// capability interface so the pipeline can be tested with deterministic
// stubs.
package llm

import "context"

// Generator produces text from a prompt. When structured is true the
// implementation should request strictly structured (JSON) output from the
// backing service. Implementations must honor ctx cancellation and return a
// fully failed call on timeout; partial output is never returned.
type Generator interface {
	Generate(ctx context.Context, prompt string, structured bool) (string, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, prompt string, structured bool) (string, error)

// Generate implements Generator.
func (f GeneratorFunc) Generate(ctx context.Context, prompt string, structured bool) (string, error) {
	return f(ctx, prompt, structured)
}
