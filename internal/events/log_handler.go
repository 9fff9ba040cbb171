package events

import (
	"context"
	"log/slog"
)

// LogHandler writes every event to a structured log.
type LogHandler struct {
	logger *slog.Logger
}

// NewLogHandler creates a LogHandler.
func NewLogHandler(logger *slog.Logger) *LogHandler {
	return &LogHandler{logger: logger.With("component", "session_event_log")}
}

// HandleEvent implements EventHandler.
func (h *LogHandler) HandleEvent(ctx context.Context, event *SessionEvent) error {
	h.logger.InfoContext(ctx, "session ended",
		"event_id", event.ID.String(),
		"event_type", event.Type,
		"session_id", event.SessionID,
		"payload", string(event.Payload))
	return nil
}
