package stream

import (
	"errors"
	"fmt"
	"time"
)

// Event names sent on a channel. Per-producer events are built with TaskStart
// and TaskComplete.
const (
	EventConnected       = "connected"
	EventProcessingStart = "processing_start"
	EventCompleted       = "completed"
	EventError           = "error"
)

// TaskStart returns the name of the event announcing that task has started.
func TaskStart(task string) string { return task + "_start" }

// TaskComplete returns the name of the event carrying task's result.
func TaskComplete(task string) string { return task + "_complete" }

// Event is one numbered message delivered to the consumer.
type Event struct {
	// ID increases by one for every event sent on a channel, starting at 1.
	ID uint64 `json:"id"`
	// Name is the event type, e.g. "interview_complete".
	Name string `json:"event"`
	// Data is the JSON-serializable payload.
	Data any `json:"data"`
	// Retry is the reconnect hint for the client.
	Retry time.Duration `json:"-"`
}

// ErrChannelClosed is returned by Send after the channel has terminated.
var ErrChannelClosed = errors.New("event channel closed")

// ErrTimeout is the termination cause of a channel that exceeded its timeout.
var ErrTimeout = errors.New("event channel timed out")

// DeliveryError reports that an event could not be delivered to the consumer.
type DeliveryError struct {
	Event string
	Err   error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("failed to deliver event %q: %v", e.Event, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// IsDeliveryError reports whether err is a *DeliveryError.
func IsDeliveryError(err error) bool {
	var de *DeliveryError
	return errors.As(err, &de)
}
