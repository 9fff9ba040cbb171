package stream

// DefaultErrorText is sent in error payloads when no cause is available.
const DefaultErrorText = "unknown error"

// ConnectedPayload is the data of the connected event.
type ConnectedPayload struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

// ProgressPayload is the data of processing, task and completed events.
// Data is set only on task completion events.
type ProgressPayload struct {
	Message  string `json:"message"`
	Progress int    `json:"progress"`
	Data     any    `json:"data,omitempty"`
}

// ErrorPayload is the data of the error event.
type ErrorPayload struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// NewErrorPayload builds an error payload, substituting DefaultErrorText for an empty cause.
func NewErrorPayload(message, cause string) ErrorPayload {
	if cause == "" {
		cause = DefaultErrorText
	}
	return ErrorPayload{Message: message, Error: cause}
}
