package orchestrator_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/phrazzld/career-coach/internal/domain"
	"github.com/phrazzld/career-coach/internal/orchestrator"
	"github.com/phrazzld/career-coach/internal/platform/logger"
	"github.com/phrazzld/career-coach/internal/session"
	"github.com/phrazzld/career-coach/internal/stream"
	"github.com/phrazzld/career-coach/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

var profile = domain.CareerProfile{
	CareerSummary: "3 years backend",
	JobRole:       "Backend Engineer",
	TechSkills:    []string{"Java", "SQL"},
}

type fakeProducer struct {
	name string
	run  func(ctx context.Context) (any, error)
}

func (p fakeProducer) Name() string  { return p.name }
func (p fakeProducer) Label() string { return p.name + " artifact" }
func (p fakeProducer) Run(ctx context.Context, _ domain.CareerProfile) (any, error) {
	return p.run(ctx)
}

func succeeding(name string, delay time.Duration) fakeProducer {
	return fakeProducer{name: name, run: func(ctx context.Context) (any, error) {
		time.Sleep(delay)
		return map[string]string{"from": name}, nil
	}}
}

type stubCoach struct{ err error }

func (s stubCoach) GenerateInterviewQuestions(context.Context, domain.CareerProfile) (*domain.InterviewQuestions, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.InterviewQuestions{Questions: []string{"Q1"}, TargetJobRole: profile.JobRole}, nil
}

func (s stubCoach) GenerateLearningPath(context.Context, domain.CareerProfile) (*domain.LearningPath, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.LearningPath{TargetJobRole: profile.JobRole, OverallAssessment: "solid"}, nil
}

type recordingSink struct {
	mu     sync.Mutex
	events []stream.Event
	err    error
}

func (s *recordingSink) WriteEvent(ev stream.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, ev)
	return nil
}

func (s *recordingSink) names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.events))
	for i, ev := range s.events {
		out[i] = ev.Name
	}
	return out
}

func (s *recordingSink) last() stream.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.events[len(s.events)-1]
}

type harness struct {
	registry *session.Registry
	sink     *recordingSink
	channel  *stream.Channel
	spans    *tracetest.SpanRecorder

	mu    sync.Mutex
	final []session.Info
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{sink: &recordingSink{}, spans: tracetest.NewSpanRecorder()}
	h.registry = session.NewRegistry(logger.Discard(), session.WithListener(func(info session.Info) {
		h.mu.Lock()
		h.final = append(h.final, info)
		h.mu.Unlock()
	}))
	h.channel = stream.NewChannel(h.sink, stream.WithLogger(logger.Discard()))
	require.NoError(t, h.registry.CreateSession("s1", h.channel))
	return h
}

func (h *harness) orchestrator(producers ...task.Producer) *orchestrator.Orchestrator {
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(h.spans))
	return orchestrator.New(h.registry, producers, logger.Discard(),
		orchestrator.WithTracer(tp.Tracer("test")))
}

func (h *harness) finalStatuses() []session.Status {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]session.Status, len(h.final))
	for i, info := range h.final {
		out[i] = info.Status
	}
	return out
}

func indexOf(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}

func countTerminal(names []string) int {
	n := 0
	for _, name := range names {
		if name == stream.EventCompleted || name == stream.EventError {
			n++
		}
	}
	return n
}

func TestRun_AllSucceed(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	o := h.orchestrator(
		task.NewInterviewTask(stubCoach{}),
		task.NewLearningPathTask(stubCoach{}),
	)

	err := o.Run(context.Background(), "s1", h.channel, profile)
	require.NoError(t, err)

	names := h.sink.names()
	require.Len(t, names, 6)
	assert.Equal(t, "processing_start", names[0])
	assert.Equal(t, "completed", names[5])
	assert.Equal(t, 1, countTerminal(names))

	for _, p := range []string{"interview", "learning"} {
		start, done := indexOf(names, p+"_start"), indexOf(names, p+"_complete")
		require.NotEqual(t, -1, start, p)
		require.NotEqual(t, -1, done, p)
		assert.Less(t, start, done, "%s start precedes its completion", p)
	}

	last := h.sink.last()
	assert.Equal(t, stream.ProgressPayload{Message: "All tasks completed", Progress: 100}, last.Data)

	assert.Equal(t, stream.TerminationCompleted, h.channel.Termination())
	assert.Equal(t, []session.Status{session.StatusCompleted}, h.finalStatuses())
	assert.False(t, h.registry.IsValid("s1"))
}

func TestRun_TaskCompletePayloadCarriesResult(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	o := h.orchestrator(succeeding("interview", 0))
	require.NoError(t, o.Run(context.Background(), "s1", h.channel, profile))

	h.sink.mu.Lock()
	defer h.sink.mu.Unlock()
	for _, ev := range h.sink.events {
		if ev.Name == "interview_complete" {
			payload, ok := ev.Data.(stream.ProgressPayload)
			require.True(t, ok)
			assert.Equal(t, 50, payload.Progress)
			assert.Equal(t, map[string]string{"from": "interview"}, payload.Data)
			return
		}
	}
	t.Fatal("interview_complete not sent")
}

func TestRun_OneFails(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	o := h.orchestrator(
		task.NewInterviewTask(stubCoach{err: errors.New("model unavailable")}),
		task.NewLearningPathTask(stubCoach{}),
	)

	err := o.Run(context.Background(), "s1", h.channel, profile)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error generating interview questions")

	names := h.sink.names()
	assert.Equal(t, 1, countTerminal(names))
	assert.Equal(t, "error", names[len(names)-1], "terminal event is last")
	assert.Equal(t, -1, indexOf(names, "completed"))
	assert.Equal(t, -1, indexOf(names, "interview_start"))
	assert.Less(t, indexOf(names, "learning_start"), indexOf(names, "learning_complete"))

	payload, ok := h.sink.last().Data.(stream.ErrorPayload)
	require.True(t, ok)
	assert.Equal(t, orchestrator.FailureMessage, payload.Message)
	assert.Contains(t, payload.Error, "error generating interview questions: model unavailable")

	assert.Equal(t, stream.TerminationError, h.channel.Termination())
	assert.Equal(t, []session.Status{session.StatusError}, h.finalStatuses())
}

func TestRun_FailureDoesNotCancelSiblings(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	var siblingErr error
	slow := fakeProducer{name: "learning", run: func(ctx context.Context) (any, error) {
		time.Sleep(50 * time.Millisecond)
		siblingErr = ctx.Err()
		return "path", nil
	}}
	failing := fakeProducer{name: "interview", run: func(context.Context) (any, error) {
		return nil, errors.New("boom")
	}}

	err := h.orchestrator(failing, slow).Run(context.Background(), "s1", h.channel, profile)
	require.Error(t, err)

	assert.NoError(t, siblingErr, "sibling context stays live")
	names := h.sink.names()
	assert.Less(t, indexOf(names, "learning_complete"), indexOf(names, "error"),
		"the terminal event waits for in-flight producers")
}

func TestRun_PanickingProducerFailsSession(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	panicking := fakeProducer{name: "interview", run: func(context.Context) (any, error) {
		var sections map[string]int
		sections["overall"]++
		return sections, nil
	}}

	err := h.orchestrator(panicking, succeeding("learning", 10*time.Millisecond)).
		Run(context.Background(), "s1", h.channel, profile)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "producer interview panicked")

	names := h.sink.names()
	assert.Equal(t, 1, countTerminal(names))
	assert.Equal(t, "error", names[len(names)-1])
	assert.Equal(t, -1, indexOf(names, "interview_start"))
	assert.Less(t, indexOf(names, "learning_start"), indexOf(names, "learning_complete"))

	payload, ok := h.sink.last().Data.(stream.ErrorPayload)
	require.True(t, ok)
	assert.Equal(t, orchestrator.FailureMessage, payload.Message)

	assert.Equal(t, stream.TerminationError, h.channel.Termination())
	assert.Equal(t, []session.Status{session.StatusError}, h.finalStatuses())
}

func TestRun_PanicOnPoolLeavesOtherSessionsRunning(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	other := stream.NewChannel(&recordingSink{}, stream.WithLogger(logger.Discard()))
	require.NoError(t, h.registry.CreateSession("s2", other))

	panicking := fakeProducer{name: "interview", run: func(context.Context) (any, error) {
		panic("parser bug")
	}}
	o := h.orchestrator(panicking)

	pool := task.NewPool(task.PoolConfig{WorkerCount: 1, QueueSize: 2}, logger.Discard())
	pool.Start()
	defer pool.Stop()

	done := make(chan error, 1)
	require.NoError(t, pool.Submit(task.JobFunc{JobID: "s1", Fn: func(ctx context.Context) error {
		err := o.Run(ctx, "s1", h.channel, profile)
		done <- err
		return err
	}}))

	select {
	case err := <-done:
		assert.ErrorContains(t, err, "parser bug")
	case <-time.After(time.Second):
		t.Fatal("orchestration did not finish")
	}

	assert.Equal(t, stream.TerminationError, h.channel.Termination())
	assert.True(t, h.registry.IsValid("s2"))
	assert.Equal(t, stream.TerminationNone, other.Termination())
}

func TestRun_ExternalTerminationCancelsProducers(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	started := make(chan struct{})
	blocked := fakeProducer{name: "interview", run: func(ctx context.Context) (any, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	}}

	errCh := make(chan error, 1)
	go func() {
		errCh <- h.orchestrator(blocked).Run(context.Background(), "s1", h.channel, profile)
	}()

	<-started
	h.channel.CompleteWithError(errors.New("client disconnected"))

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, orchestrator.ErrSessionEnded)
	case <-time.After(time.Second):
		t.Fatal("orchestrator did not observe channel termination")
	}

	assert.Equal(t, []string{"processing_start"}, h.sink.names())
	assert.Equal(t, []session.Status{session.StatusError}, h.finalStatuses())
}

func TestRun_DeliveryFailureAbortsBeforeProducers(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.sink.err = errors.New("broken pipe")

	ran := false
	p := fakeProducer{name: "interview", run: func(context.Context) (any, error) {
		ran = true
		return nil, nil
	}}

	err := h.orchestrator(p).Run(context.Background(), "s1", h.channel, profile)
	assert.ErrorIs(t, err, orchestrator.ErrSessionEnded)
	assert.False(t, ran)
	assert.Equal(t, []session.Status{session.StatusError}, h.finalStatuses())
}

func TestRun_RecordsSpans(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	o := h.orchestrator(succeeding("interview", 0), succeeding("learning", 0))
	require.NoError(t, o.Run(context.Background(), "s1", h.channel, profile))

	var names []string
	for _, s := range h.spans.Ended() {
		names = append(names, s.Name())
	}
	assert.ElementsMatch(t, []string{"orchestrator.Run", "producer.interview", "producer.learning"}, names)
}

func TestNew_Panics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { orchestrator.New(nil, []task.Producer{succeeding("a", 0)}, logger.Discard()) })
	assert.Panics(t, func() { orchestrator.New(session.NewRegistry(logger.Discard()), nil, logger.Discard()) })
}
