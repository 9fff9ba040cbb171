package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/phrazzld/career-coach/internal/domain"
	"github.com/phrazzld/career-coach/internal/platform/logger"
	"github.com/phrazzld/career-coach/internal/redact"
	"github.com/phrazzld/career-coach/internal/session"
	"github.com/phrazzld/career-coach/internal/stream"
	"github.com/phrazzld/career-coach/internal/task"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// Progress values carried by stream events.
const (
	ProgressStarted   = 0
	ProgressTaskStart = 10
	ProgressTaskDone  = 50
	ProgressCompleted = 100
)

// FailureMessage is the user-facing message of the terminal error event.
const FailureMessage = "An error occurred while processing the request"

// ErrSessionEnded is returned by Run when the channel terminated before the
// orchestrator could finish the session.
var ErrSessionEnded = errors.New("session ended before orchestration finished")

// StatusUpdater advances session status; *session.Registry satisfies it.
type StatusUpdater interface {
	UpdateStatus(id string, status session.Status) bool
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithTracer sets the tracer used for orchestration and producer spans.
func WithTracer(t trace.Tracer) Option {
	return func(o *Orchestrator) { o.tracer = t }
}

// Orchestrator runs a fixed set of producers for each session.
type Orchestrator struct {
	sessions  StatusUpdater
	producers []task.Producer
	tracer    trace.Tracer
	logger    *slog.Logger
}

// New creates an Orchestrator. It panics if sessions is nil or no producers are given.
func New(sessions StatusUpdater, producers []task.Producer, logger *slog.Logger, opts ...Option) *Orchestrator {
	if sessions == nil {
		panic("sessions cannot be nil")
	}
	if len(producers) == 0 {
		panic("at least one producer is required")
	}

	o := &Orchestrator{
		sessions:  sessions,
		producers: producers,
		tracer:    otel.Tracer("github.com/phrazzld/career-coach/internal/orchestrator"),
		logger:    logger.With("component", "orchestrator"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run drives one session to a terminal state and terminates ch.
//
// It returns nil when every producer succeeded, the first producer error
// when any failed, and ErrSessionEnded when the channel was terminated by
// someone else first. Delivery failures are logged, never returned.
func (o *Orchestrator) Run(ctx context.Context, sessionID string, ch *stream.Channel, profile domain.CareerProfile) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Producers stop when the session's channel goes away.
	go func() {
		select {
		case <-ch.Done():
			cancel()
		case <-ctx.Done():
		}
	}()

	ctx, span := o.tracer.Start(ctx, "orchestrator.Run", trace.WithAttributes(
		attribute.String("session.id", sessionID),
		attribute.Int("producer.count", len(o.producers)),
	))
	defer span.End()

	log := o.logger.With("session_id", sessionID)
	ctx = logger.WithLogger(ctx, log)
	start := time.Now()

	o.sessions.UpdateStatus(sessionID, session.StatusProcessing)
	if !o.send(ctx, ch, stream.EventProcessingStart, stream.ProgressPayload{
		Message:  "Generating interview questions and learning path in parallel...",
		Progress: ProgressStarted,
	}) {
		span.SetStatus(codes.Error, ErrSessionEnded.Error())
		return ErrSessionEnded
	}

	var g errgroup.Group
	for _, p := range o.producers {
		g.Go(func() error {
			return o.runProducer(ctx, ch, p, profile)
		})
	}
	err := g.Wait()

	select {
	case <-ch.Done():
		log.Info("session ended before orchestration finished",
			"termination", ch.Termination().String(),
			"duration", time.Since(start))
		span.SetStatus(codes.Error, ErrSessionEnded.Error())
		return ErrSessionEnded
	default:
	}

	if err != nil {
		log.Error("session failed",
			"error", redact.Error(err),
			"duration", time.Since(start))
		span.RecordError(err)
		span.SetStatus(codes.Error, "producer failed")

		o.send(ctx, ch, stream.EventError, stream.NewErrorPayload(FailureMessage, redact.Error(err)))
		o.sessions.UpdateStatus(sessionID, session.StatusError)
		ch.CompleteWithError(err)
		return err
	}

	o.send(ctx, ch, stream.EventCompleted, stream.ProgressPayload{
		Message:  "All tasks completed",
		Progress: ProgressCompleted,
	})
	o.sessions.UpdateStatus(sessionID, session.StatusCompleted)
	ch.Complete()

	log.Info("session completed", "duration", time.Since(start))
	span.SetStatus(codes.Ok, "session completed")
	return nil
}

// runProducer runs p and sends its start and complete events. Only the
// producer's own failure is returned; delivery failures are logged. A panic
// in p is returned as the producer's failure.
func (o *Orchestrator) runProducer(
	ctx context.Context,
	ch *stream.Channel,
	p task.Producer,
	profile domain.CareerProfile,
) error {
	ctx, span := o.tracer.Start(ctx, "producer."+p.Name(),
		trace.WithAttributes(attribute.String("producer.name", p.Name())))
	defer span.End()

	log := logger.FromContextOrDefault(ctx, o.logger).With("producer", p.Name())
	start := time.Now()

	result, err := o.callProducer(ctx, p, profile)
	if err != nil {
		log.Warn("producer failed",
			"error", redact.Error(err),
			"duration", time.Since(start))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	// Start and complete are sent back to back so no other event of this
	// producer can fall between them.
	if o.send(ctx, ch, stream.TaskStart(p.Name()), stream.ProgressPayload{
		Message:  fmt.Sprintf("Generating %s...", p.Label()),
		Progress: ProgressTaskStart,
	}) {
		o.send(ctx, ch, stream.TaskComplete(p.Name()), stream.ProgressPayload{
			Message:  fmt.Sprintf("Finished generating %s", p.Label()),
			Progress: ProgressTaskDone,
			Data:     result,
		})
	}

	log.Debug("producer finished", "duration", time.Since(start))
	span.SetStatus(codes.Ok, "")
	return nil
}

// callProducer runs p, converting a panic into an error. errgroup does not
// recover panics.
func (o *Orchestrator) callProducer(ctx context.Context, p task.Producer, profile domain.CareerProfile) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.FromContextOrDefault(ctx, o.logger).Error("producer panicked",
				"producer", p.Name(),
				"panic", fmt.Sprint(r),
				"stack", string(debug.Stack()))
			err = fmt.Errorf("producer %s panicked: %v", p.Name(), r)
		}
	}()
	return p.Run(ctx, profile)
}

// send writes an event and reports whether it was delivered.
func (o *Orchestrator) send(ctx context.Context, ch *stream.Channel, name string, data any) bool {
	err := ch.Send(name, data)
	if err == nil {
		return true
	}

	log := logger.FromContextOrDefault(ctx, o.logger)
	if errors.Is(err, stream.ErrChannelClosed) {
		log.Debug("event dropped, channel closed", "event", name)
	} else {
		log.Warn("event delivery failed", "event", name, "error", redact.Error(err))
	}
	return false
}
