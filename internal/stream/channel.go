package stream

import (
	"log/slog"
	"sync"
	"time"
)

// Defaults for NewChannel.
const (
	DefaultTimeout       = 120 * time.Second
	DefaultReconnectHint = time.Second
)

// Sink is the transport behind a Channel. WriteEvent is never called
// concurrently and must return in bounded time.
type Sink interface {
	WriteEvent(ev Event) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ev Event) error

// WriteEvent implements Sink.
func (f SinkFunc) WriteEvent(ev Event) error { return f(ev) }

// Termination describes how a channel ended.
type Termination int

// Termination values. TerminationNone means the channel is still open.
const (
	TerminationNone Termination = iota
	TerminationCompleted
	TerminationTimeout
	TerminationError
)

func (t Termination) String() string {
	switch t {
	case TerminationCompleted:
		return "completed"
	case TerminationTimeout:
		return "timeout"
	case TerminationError:
		return "error"
	default:
		return "open"
	}
}

// Option configures a Channel.
type Option func(*Channel)

// WithTimeout bounds the channel's lifetime. Zero or negative disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *Channel) { c.timeout = d }
}

// WithReconnectHint sets the retry hint attached to every event.
func WithReconnectHint(d time.Duration) Option {
	return func(c *Channel) { c.reconnect = d }
}

// WithLogger sets the channel's logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Channel) { c.logger = l }
}

// Channel delivers an ordered event sequence to one consumer.
//
// Send serializes writers with a mutex. Termination is guarded by a
// sync.Once and never takes the write lock, so a slow consumer cannot block
// Complete, CompleteWithError or the timeout.
type Channel struct {
	sink      Sink
	timeout   time.Duration
	reconnect time.Duration
	logger    *slog.Logger

	writeMu sync.Mutex
	nextID  uint64

	once   sync.Once
	done   chan struct{}
	timer  *time.Timer
	stateM sync.Mutex
	reason Termination
	cause  error

	hookMu       sync.Mutex
	onCompletion func()
	onTimeout    func()
	onError      func(error)
}

// NewChannel creates an open channel writing to sink. The timeout starts now.
func NewChannel(sink Sink, opts ...Option) *Channel {
	c := &Channel{
		sink:      sink,
		timeout:   DefaultTimeout,
		reconnect: DefaultReconnectHint,
		logger:    slog.Default(),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		c.timer = time.AfterFunc(c.timeout, func() {
			c.terminate(TerminationTimeout, ErrTimeout)
		})
	}
	return c
}

// OnCompletion registers the hook fired when the channel completes gracefully.
func (c *Channel) OnCompletion(fn func()) {
	c.hookMu.Lock()
	c.onCompletion = fn
	c.hookMu.Unlock()
}

// OnTimeout registers the hook fired when the channel times out.
func (c *Channel) OnTimeout(fn func()) {
	c.hookMu.Lock()
	c.onTimeout = fn
	c.hookMu.Unlock()
}

// OnError registers the hook fired when the channel ends with an error.
func (c *Channel) OnError(fn func(error)) {
	c.hookMu.Lock()
	c.onError = fn
	c.hookMu.Unlock()
}

// Send numbers the event and writes it to the sink. It returns a
// *DeliveryError wrapping ErrChannelClosed once the channel has terminated.
// A sink failure terminates the channel with that error.
func (c *Channel) Send(name string, data any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	select {
	case <-c.done:
		return &DeliveryError{Event: name, Err: ErrChannelClosed}
	default:
	}

	c.nextID++
	ev := Event{ID: c.nextID, Name: name, Data: data, Retry: c.reconnect}
	if err := c.sink.WriteEvent(ev); err != nil {
		c.terminate(TerminationError, err)
		return &DeliveryError{Event: name, Err: err}
	}
	return nil
}

// Complete ends the channel gracefully. It is a no-op if already terminated.
func (c *Channel) Complete() {
	c.terminate(TerminationCompleted, nil)
}

// CompleteWithError ends the channel with err. It is a no-op if already terminated.
func (c *Channel) CompleteWithError(err error) {
	if err == nil {
		err = ErrChannelClosed
	}
	c.terminate(TerminationError, err)
}

// Done is closed when the channel terminates.
func (c *Channel) Done() <-chan struct{} {
	return c.done
}

// Err returns nil while open or after graceful completion, ErrTimeout after a
// timeout, and the terminating error otherwise.
func (c *Channel) Err() error {
	c.stateM.Lock()
	defer c.stateM.Unlock()
	return c.cause
}

// Termination reports how the channel ended.
func (c *Channel) Termination() Termination {
	c.stateM.Lock()
	defer c.stateM.Unlock()
	return c.reason
}

// Drain waits for an in-flight write to finish. Transports call it after
// Done before releasing the underlying connection.
func (c *Channel) Drain() {
	c.writeMu.Lock()
	//nolint:staticcheck // empty critical section waits for the current writer
	c.writeMu.Unlock()
}

// terminate records the first termination and fires its hook. Hooks run
// outside the Once so they may call Complete or CompleteWithError again.
func (c *Channel) terminate(reason Termination, cause error) {
	first := false
	c.once.Do(func() {
		first = true
		if c.timer != nil {
			c.timer.Stop()
		}

		c.stateM.Lock()
		c.reason = reason
		c.cause = cause
		c.stateM.Unlock()
		close(c.done)
	})
	if !first {
		return
	}

	c.logger.Debug("event channel terminated",
		"termination", reason.String(),
		"error", cause)

	c.hookMu.Lock()
	onCompletion, onTimeout, onError := c.onCompletion, c.onTimeout, c.onError
	c.hookMu.Unlock()

	switch reason {
	case TerminationCompleted:
		if onCompletion != nil {
			onCompletion()
		}
	case TerminationTimeout:
		if onTimeout != nil {
			onTimeout()
		}
	case TerminationError:
		if onError != nil {
			onError(cause)
		}
	}
}
