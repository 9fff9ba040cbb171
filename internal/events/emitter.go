package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/phrazzld/career-coach/internal/redact"
)

// InMemoryEventEmitter delivers each session event to every registered
// handler in registration order.
type InMemoryEventEmitter struct {
	mu       sync.RWMutex
	handlers []EventHandler
	logger   *slog.Logger
}

var _ EventEmitter = (*InMemoryEventEmitter)(nil)

// NewInMemoryEventEmitter creates an emitter with no handlers.
func NewInMemoryEventEmitter(logger *slog.Logger) *InMemoryEventEmitter {
	return &InMemoryEventEmitter{
		logger: logger.With("component", "session_event_emitter"),
	}
}

// RegisterHandler adds handler. Handlers registered while an event is being
// emitted only see later events.
func (e *InMemoryEventEmitter) RegisterHandler(handler EventHandler) {
	e.mu.Lock()
	e.handlers = append(e.handlers, handler)
	n := len(e.handlers)
	e.mu.Unlock()

	e.logger.Debug("session event handler registered",
		"handler", fmt.Sprintf("%T", handler),
		"handler_count", n)
}

// EmitEvent hands event to every handler. A failing handler does not stop
// the rest; all failures are joined into the returned error.
func (e *InMemoryEventEmitter) EmitEvent(ctx context.Context, event *SessionEvent) error {
	e.mu.RLock()
	handlers := append([]EventHandler(nil), e.handlers...)
	e.mu.RUnlock()

	var errs []error
	for _, handler := range handlers {
		if err := handler.HandleEvent(ctx, event); err != nil {
			e.logger.WarnContext(ctx, "session event handler failed",
				"handler", fmt.Sprintf("%T", handler),
				"session_id", event.SessionID,
				"event_type", event.Type,
				"error", redact.Error(err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
