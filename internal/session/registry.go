package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/phrazzld/career-coach/internal/stream"
)

// Defaults for NewRegistry.
const (
	DefaultTTL           = 300 * time.Second
	DefaultSweepInterval = 60 * time.Second
)

type entry struct {
	info    Info
	channel *stream.Channel
}

// Option configures a Registry.
type Option func(*Registry)

// WithTTL sets the maximum session age enforced by lookups and the sweep.
func WithTTL(d time.Duration) Option {
	return func(r *Registry) { r.ttl = d }
}

// WithSweepInterval sets how often the background sweep runs.
func WithSweepInterval(d time.Duration) Option {
	return func(r *Registry) { r.sweepInterval = d }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// WithListener registers fn to receive the final snapshot of every removed session.
// fn runs on the goroutine that removed the session and must not block.
func WithListener(fn func(Info)) Option {
	return func(r *Registry) { r.listeners = append(r.listeners, fn) }
}

// Registry is a concurrent store of active sessions keyed by id.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*entry

	ttl           time.Duration
	sweepInterval time.Duration
	now           func() time.Time
	listeners     []func(Info)
	logger        *slog.Logger

	lifecycleMu sync.Mutex
	cancel      context.CancelFunc
	wg          sync.WaitGroup
}

// NewRegistry creates an empty registry. Call Start to run the sweep.
func NewRegistry(logger *slog.Logger, opts ...Option) *Registry {
	r := &Registry{
		sessions:      make(map[string]*entry),
		ttl:           DefaultTTL,
		sweepInterval: DefaultSweepInterval,
		now:           time.Now,
		logger:        logger.With("component", "session_registry"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// CreateSession registers a CONNECTED session bound to ch and hooks the
// channel's lifecycle so that completion, timeout or error update the status
// and remove the session.
func (r *Registry) CreateSession(id string, ch *stream.Channel) error {
	if id == "" {
		return ErrInvalidSessionID
	}
	if ch == nil {
		return ErrNilChannel
	}

	now := r.now()
	r.mu.Lock()
	if _, exists := r.sessions[id]; exists {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrDuplicateSession, id)
	}
	r.sessions[id] = &entry{
		info:    Info{ID: id, Status: StatusConnected, CreatedAt: now, UpdatedAt: now},
		channel: ch,
	}
	r.mu.Unlock()

	ch.OnCompletion(func() { r.finalize(id, StatusCompleted) })
	ch.OnTimeout(func() { r.finalize(id, StatusTimeout) })
	ch.OnError(func(err error) {
		r.logger.Debug("session channel failed", "session_id", id, "error", err)
		r.finalize(id, StatusError)
	})

	// The channel may have terminated before its hooks were registered.
	select {
	case <-ch.Done():
		r.finalize(id, terminalStatus(ch.Termination()))
	default:
	}

	r.logger.Debug("session created", "session_id", id)
	return nil
}

// GetChannel returns the channel of a live session. An expired session is
// removed and reported as not found.
func (r *Registry) GetChannel(id string) (*stream.Channel, bool) {
	r.mu.RLock()
	e, ok := r.sessions[id]
	var expired bool
	var ch *stream.Channel
	if ok {
		expired = r.expired(e.info)
		ch = e.channel
	}
	r.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if expired {
		r.expire(id)
		return nil, false
	}
	return ch, true
}

// IsValid reports whether id names a live, unexpired session.
func (r *Registry) IsValid(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.sessions[id]
	return ok && !r.expired(e.info)
}

// Info returns a snapshot of the session.
func (r *Registry) Info(id string) (Info, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.sessions[id]
	if !ok {
		return Info{}, false
	}
	return e.info, true
}

// UpdateStatus advances the session's status along CONNECTED -> PROCESSING ->
// terminal. Missing sessions and moves that do not advance (backwards, same
// status, or out of a terminal status) are ignored. It reports whether the
// status changed.
func (r *Registry) UpdateStatus(id string, status Status) bool {
	if !status.valid() {
		r.logger.Warn("ignoring unknown session status", "session_id", id, "status", string(status))
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.sessions[id]
	if !ok {
		r.logger.Debug("status update for missing session", "session_id", id, "status", string(status))
		return false
	}
	if status.rank() <= e.info.Status.rank() {
		r.logger.Debug("refusing non-advancing status update",
			"session_id", id,
			"current", string(e.info.Status),
			"requested", string(status))
		return false
	}

	e.info.Status = status
	e.info.UpdatedAt = r.now()
	return true
}

// RemoveSession evicts the session and completes its channel. Removing a
// missing session is a no-op.
func (r *Registry) RemoveSession(id string) {
	r.mu.Lock()
	e, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
	}
	r.mu.Unlock()

	if !ok {
		return
	}

	// Complete is a no-op when the transport already ended the channel.
	e.channel.Complete()

	r.logger.Debug("session removed",
		"session_id", id,
		"status", string(e.info.Status),
		"age", r.now().Sub(e.info.CreatedAt))

	for _, fn := range r.listeners {
		fn(e.info)
	}
}

// ActiveCount returns the number of registered sessions.
func (r *Registry) ActiveCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep removes every session older than the TTL regardless of status and
// returns how many were removed.
func (r *Registry) Sweep() int {
	r.mu.RLock()
	var expired []string
	for id, e := range r.sessions {
		if r.expired(e.info) {
			expired = append(expired, id)
		}
	}
	r.mu.RUnlock()

	for _, id := range expired {
		r.expire(id)
	}
	if len(expired) > 0 {
		r.logger.Info("expired sessions swept",
			"removed", len(expired),
			"active", r.ActiveCount())
	}
	return len(expired)
}

// Start runs the periodic sweep until ctx is done or Stop is called.
// Calling Start on a running registry has no effect.
func (r *Registry) Start(ctx context.Context) {
	r.lifecycleMu.Lock()
	defer r.lifecycleMu.Unlock()
	if r.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ticker := time.NewTicker(r.sweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.Sweep()
			}
		}
	}()
	r.logger.Info("session sweep started",
		"ttl", r.ttl,
		"interval", r.sweepInterval)
}

// Stop halts the sweep and waits for it to exit.
func (r *Registry) Stop() {
	r.lifecycleMu.Lock()
	cancel := r.cancel
	r.cancel = nil
	r.lifecycleMu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	r.wg.Wait()
}

// Shutdown removes every remaining session, completing their channels.
func (r *Registry) Shutdown() {
	r.mu.RLock()
	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	for _, id := range ids {
		r.RemoveSession(id)
	}
}

func (r *Registry) expired(info Info) bool {
	return r.now().Sub(info.CreatedAt) > r.ttl
}

func (r *Registry) expire(id string) {
	r.UpdateStatus(id, StatusTimeout)
	r.RemoveSession(id)
}

func (r *Registry) finalize(id string, status Status) {
	r.UpdateStatus(id, status)
	r.RemoveSession(id)
}

func terminalStatus(t stream.Termination) Status {
	switch t {
	case stream.TerminationTimeout:
		return StatusTimeout
	case stream.TerminationError:
		return StatusError
	default:
		return StatusCompleted
	}
}
