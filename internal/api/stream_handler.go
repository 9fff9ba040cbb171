package api

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/phrazzld/career-coach/internal/api/shared"
	"github.com/phrazzld/career-coach/internal/domain"
	"github.com/phrazzld/career-coach/internal/orchestrator"
	"github.com/phrazzld/career-coach/internal/platform/logger"
	"github.com/phrazzld/career-coach/internal/session"
	"github.com/phrazzld/career-coach/internal/stream"
	"github.com/phrazzld/career-coach/internal/task"
)

// ErrClientDisconnected terminates a session whose client went away.
var ErrClientDisconnected = errors.New("client disconnected")

// Runner drives one streaming session to completion; *orchestrator.Orchestrator satisfies it.
type Runner interface {
	Run(ctx context.Context, sessionID string, ch *stream.Channel, profile domain.CareerProfile) error
}

// Submitter accepts background jobs; *task.Pool satisfies it.
type Submitter interface {
	Submit(job task.Job) error
}

// StreamOptions tunes the channels created per session.
type StreamOptions struct {
	ChannelTimeout time.Duration
	ReconnectHint  time.Duration
	WriteTimeout   time.Duration
}

// StreamHandler serves the SSE and WebSocket streaming endpoints.
type StreamHandler struct {
	sessions *session.Registry
	runner   Runner
	jobs     Submitter
	opts     StreamOptions
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewStreamHandler creates a new StreamHandler.
func NewStreamHandler(
	sessions *session.Registry,
	runner Runner,
	jobs Submitter,
	opts StreamOptions,
	logger *slog.Logger,
) *StreamHandler {
	if sessions == nil || runner == nil || jobs == nil {
		panic("stream handler dependencies cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &StreamHandler{
		sessions: sessions,
		runner:   runner,
		jobs:     jobs,
		opts:     opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		logger: logger.With(slog.String("component", "stream_handler")),
	}
}

// StreamSSE handles POST /stream. The profile is validated before any
// session exists; after that the response stays open until the session ends.
func (h *StreamHandler) StreamSSE(w http.ResponseWriter, r *http.Request) {
	profile, ok := decodeProfile(w, r)
	if !ok {
		return
	}
	// The server only watches for a client disconnect once the body hit EOF.
	_, _ = io.Copy(io.Discard, io.LimitReader(r.Body, shared.MaxBodyBytes))

	sink, err := stream.NewSSEWriter(w, h.opts.WriteTimeout)
	if err != nil {
		// Headers are already on the wire; nothing more can be reported.
		logger.FromContextOrDefault(r.Context(), h.logger).
			Error("cannot stream response", slog.String("error", err.Error()))
		return
	}

	h.serve(r.Context(), sink, profile)
}

// StreamWebSocket handles GET /stream/ws. The first client message carries
// the profile JSON; events are sent back as JSON text frames.
func (h *StreamHandler) StreamWebSocket(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied with an HTTP error.
		log.Debug("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}
	defer func() { _ = conn.Close() }()
	conn.SetReadLimit(shared.MaxBodyBytes)

	var profile domain.CareerProfile
	if err := conn.ReadJSON(&profile); err != nil {
		log.Debug("invalid websocket request", slog.String("error", err.Error()))
		closeWithReason(conn, websocket.CloseUnsupportedData, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(profile); err != nil {
		closeWithReason(conn, websocket.ClosePolicyViolation, GetSafeErrorMessage(err, "Validation error"))
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// The request context of a hijacked connection does not observe the
	// peer going away; reading does.
	go func() {
		for {
			if _, _, err := conn.NextReader(); err != nil {
				cancel()
				return
			}
		}
	}()

	sink := stream.NewWebSocketSink(conn, h.opts.WriteTimeout)
	h.serve(ctx, sink, profile)
	_ = sink.Close()
}

// serve registers a session for sink, hands it to the worker pool and blocks
// until the channel terminates or ctx ends.
func (h *StreamHandler) serve(ctx context.Context, sink stream.Sink, profile domain.CareerProfile) {
	id := session.NewID()
	log := logger.FromContextOrDefault(ctx, h.logger).With(slog.String("session_id", id))

	ch := stream.NewChannel(sink,
		stream.WithTimeout(h.opts.ChannelTimeout),
		stream.WithReconnectHint(h.opts.ReconnectHint),
		stream.WithLogger(log),
	)

	if err := h.sessions.CreateSession(id, ch); err != nil {
		log.Error("failed to register session", slog.String("error", err.Error()))
		ch.CompleteWithError(err)
		return
	}

	err := ch.Send(stream.EventConnected, stream.ConnectedPayload{
		SessionID: id,
		Message:   "Connected to career coach stream",
	})
	if err != nil {
		log.Warn("failed to send connected event", slog.String("error", err.Error()))
		return
	}

	err = h.jobs.Submit(task.JobFunc{
		JobID: id,
		Fn: func(jobCtx context.Context) error {
			return h.runner.Run(logger.WithLogger(jobCtx, log), id, ch, profile)
		},
	})
	if err != nil {
		log.Warn("failed to schedule session", slog.String("error", err.Error()))
		_ = ch.Send(stream.EventError, stream.NewErrorPayload(
			orchestrator.FailureMessage, GetSafeErrorMessage(err, "")))
		ch.CompleteWithError(err)
	}

	select {
	case <-ch.Done():
	case <-ctx.Done():
		log.Info("client disconnected before session ended")
		ch.CompleteWithError(ErrClientDisconnected)
	}
	ch.Drain()
}

func closeWithReason(conn *websocket.Conn, code int, reason string) {
	// Control frame payloads are limited to 125 bytes, two of which hold the code.
	if len(reason) > 123 {
		reason = reason[:123]
	}
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(code, reason), time.Now().Add(time.Second))
}
