package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/phrazzld/career-coach/internal/session"
)

// emitTimeout bounds delivery of one lifecycle event to all handlers.
const emitTimeout = 5 * time.Second

// SessionEndedPayload is the payload of every session lifecycle event.
type SessionEndedPayload struct {
	Status     session.Status `json:"status"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DurationMS int64          `json:"duration_ms"`
}

// TypeForStatus maps a final session status to an event type.
// Sessions removed before reaching a terminal status count as expired.
func TypeForStatus(status session.Status) string {
	switch status {
	case session.StatusCompleted:
		return TypeSessionCompleted
	case session.StatusError:
		return TypeSessionFailed
	default:
		return TypeSessionExpired
	}
}

// SessionListener returns a session.Registry listener that emits one event
// per removed session. Emission runs in the background so the registry
// never waits on handlers.
func SessionListener(emitter EventEmitter, logger *slog.Logger) func(session.Info) {
	logger = logger.With("component", "session_events")

	return func(info session.Info) {
		event, err := NewSessionEvent(TypeForStatus(info.Status), info.ID, SessionEndedPayload{
			Status:     info.Status,
			CreatedAt:  info.CreatedAt,
			UpdatedAt:  info.UpdatedAt,
			DurationMS: info.UpdatedAt.Sub(info.CreatedAt).Milliseconds(),
		})
		if err != nil {
			logger.Error("failed to build session event", "session_id", info.ID, "error", err)
			return
		}

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), emitTimeout)
			defer cancel()
			if err := emitter.EmitEvent(ctx, event); err != nil {
				logger.Warn("failed to emit session event",
					"session_id", info.ID,
					"event_type", event.Type,
					"error", err)
			}
		}()
	}
}
