// Package generation turns a career profile into LLM prompts and turns the
// model's free-text answers back into domain values. The TextGenerator
// interface is the boundary to the external model; backends live under
// internal/platform.
package generation
