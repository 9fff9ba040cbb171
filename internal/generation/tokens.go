package generation

import (
	"fmt"

	"github.com/tiktoken-go/tokenizer"
)

// TokenBudget counts and trims text with a tiktoken encoding.
type TokenBudget struct {
	codec tokenizer.Codec
	max   int
}

// NewTokenBudget returns a budget of max tokens counted with cl100k_base.
func NewTokenBudget(max int) (*TokenBudget, error) {
	if max <= 0 {
		return nil, fmt.Errorf("%w: token budget must be positive, got %d", ErrInvalidConfig, max)
	}
	codec, err := tokenizer.Get(tokenizer.Cl100kBase)
	if err != nil {
		return nil, fmt.Errorf("failed to get tokenizer encoding: %w", err)
	}
	return &TokenBudget{codec: codec, max: max}, nil
}

// Max returns the budget size in tokens.
func (b *TokenBudget) Max() int { return b.max }

// Count returns the number of tokens in s. Encoding failures count as one
// token per byte, which overestimates.
func (b *TokenBudget) Count(s string) int {
	n, err := b.codec.Count(s)
	if err != nil {
		return len(s)
	}
	return n
}

// Fits reports whether s is within the budget.
func (b *TokenBudget) Fits(s string) bool {
	return b.Count(s) <= b.max
}

// Truncate returns the longest token prefix of s holding at most n tokens.
func (b *TokenBudget) Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	ids, _, err := b.codec.Encode(s)
	if err != nil || len(ids) <= n {
		return s
	}
	out, err := b.codec.Decode(ids[:n])
	if err != nil {
		return s
	}
	return out
}
