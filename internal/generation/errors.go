package generation

import "errors"

// Errors shared by TextGenerator backends. Callers match them with errors.Is;
// backends wrap them with provider detail.
var (
	// ErrGenerationFailed covers failures that fit no narrower category.
	ErrGenerationFailed = errors.New("failed to generate content")

	// ErrInvalidResponse means the model answered but the answer was empty or unreadable.
	ErrInvalidResponse = errors.New("invalid response from language model")

	// ErrContentBlocked means the provider's safety filters refused the prompt or answer.
	ErrContentBlocked = errors.New("content blocked by language model safety filters")

	// ErrTransientFailure marks rate limits, 5xx answers and timeouts. Only
	// these are retried by WithRetry.
	ErrTransientFailure = errors.New("transient error during generation")

	// ErrInvalidConfig is returned by backend constructors.
	ErrInvalidConfig = errors.New("invalid generator configuration")
)
