package generation

import "context"

// TextGenerator sends a prompt to a language model and returns its raw text answer.
// Implementations wrap failures with the sentinel errors of this package so
// callers can tell transient failures from permanent ones.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
