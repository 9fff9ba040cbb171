package api

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/phrazzld/career-coach/internal/domain"
	"github.com/phrazzld/career-coach/internal/mocks"
	"github.com/phrazzld/career-coach/internal/orchestrator"
	"github.com/phrazzld/career-coach/internal/platform/logger"
	"github.com/phrazzld/career-coach/internal/session"
	"github.com/phrazzld/career-coach/internal/stream"
	"github.com/phrazzld/career-coach/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type runnerFunc func(ctx context.Context, id string, ch *stream.Channel, p domain.CareerProfile) error

func (f runnerFunc) Run(ctx context.Context, id string, ch *stream.Channel, p domain.CareerProfile) error {
	return f(ctx, id, ch, p)
}

type submitterFunc func(job task.Job) error

func (f submitterFunc) Submit(job task.Job) error { return f(job) }

type sseEvent struct {
	ID    string
	Name  string
	Retry string
	Data  string
}

func readSSE(t *testing.T, resp *http.Response) []sseEvent {
	t.Helper()
	var events []sseEvent
	var cur sseEvent
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			events = append(events, cur)
			cur = sseEvent{}
		case strings.HasPrefix(line, "id: "):
			cur.ID = strings.TrimPrefix(line, "id: ")
		case strings.HasPrefix(line, "event: "):
			cur.Name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "retry: "):
			cur.Retry = strings.TrimPrefix(line, "retry: ")
		case strings.HasPrefix(line, "data: "):
			cur.Data = strings.TrimPrefix(line, "data: ")
		}
	}
	return events
}

func eventNames(events []sseEvent) []string {
	names := make([]string, len(events))
	for i, ev := range events {
		names[i] = ev.Name
	}
	return names
}

type streamHarness struct {
	registry *session.Registry
	server   *httptest.Server
}

func newStreamHarness(t *testing.T, coach *mocks.MockCoachService, jobs Submitter) *streamHarness {
	t.Helper()
	log := logger.Discard()

	registry := session.NewRegistry(log)
	t.Cleanup(registry.Shutdown)

	orch := orchestrator.New(registry, []task.Producer{
		task.NewInterviewTask(coach),
		task.NewLearningPathTask(coach),
	}, log)

	if jobs == nil {
		pool := task.NewPool(task.PoolConfig{WorkerCount: 2, QueueSize: 4}, log)
		pool.Start()
		t.Cleanup(pool.Stop)
		jobs = pool
	}

	h := NewStreamHandler(registry, orch, jobs, StreamOptions{
		ChannelTimeout: 5 * time.Second,
		ReconnectHint:  time.Second,
		WriteTimeout:   time.Second,
	}, log)

	r := chi.NewRouter()
	r.Post("/stream", h.StreamSSE)
	r.Get("/stream/ws", h.StreamWebSocket)

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)
	return &streamHarness{registry: registry, server: server}
}

func postStream(t *testing.T, url string, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url+"/stream", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

func TestStreamSSE_FullSession(t *testing.T) {
	h := newStreamHarness(t, &mocks.MockCoachService{}, nil)

	resp := postStream(t, h.server.URL, mustJSON(t, validProfile))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	events := readSSE(t, resp)
	names := eventNames(events)

	require.GreaterOrEqual(t, len(names), 7, names)
	assert.Equal(t, stream.EventConnected, names[0])
	assert.Equal(t, stream.EventProcessingStart, names[1])
	assert.Equal(t, stream.EventCompleted, names[len(names)-1])
	assert.Subset(t, names, []string{"interview_start", "interview_complete", "learning_start", "learning_complete"})

	for i, ev := range events {
		assert.Equal(t, fmt.Sprint(i+1), ev.ID, "event ids are sequential")
		assert.Equal(t, "1000", ev.Retry)
	}

	var connected stream.ConnectedPayload
	require.NoError(t, json.Unmarshal([]byte(events[0].Data), &connected))
	assert.NotEmpty(t, connected.SessionID)

	assert.Eventually(t, func() bool {
		return !h.registry.IsValid(connected.SessionID)
	}, time.Second, 10*time.Millisecond, "session removed after completion")
}

func TestStreamSSE_ProducerFailure(t *testing.T) {
	coach := &mocks.MockCoachService{
		LearningFn: func(context.Context, domain.CareerProfile) (*domain.LearningPath, error) {
			return nil, errors.New("model unavailable")
		},
	}
	h := newStreamHarness(t, coach, nil)

	events := readSSE(t, postStream(t, h.server.URL, mustJSON(t, validProfile)))
	names := eventNames(events)

	assert.Equal(t, stream.EventError, names[len(names)-1])
	assert.Contains(t, names, "interview_complete", "sibling producer still reports")
	assert.NotContains(t, names, stream.EventCompleted)

	var payload stream.ErrorPayload
	require.NoError(t, json.Unmarshal([]byte(events[len(events)-1].Data), &payload))
	assert.Equal(t, orchestrator.FailureMessage, payload.Message)
	assert.Contains(t, payload.Error, "error generating learning path")
}

func TestStreamSSE_InvalidProfileCreatesNoSession(t *testing.T) {
	h := newStreamHarness(t, &mocks.MockCoachService{}, nil)

	resp := postStream(t, h.server.URL, `{"careerSummary":"x","jobRole":"","techSkills":["Go"]}`)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.Zero(t, h.registry.ActiveCount())
}

func TestStreamSSE_PoolFull(t *testing.T) {
	full := submitterFunc(func(task.Job) error {
		return fmt.Errorf("%w: queue capacity 0 reached", task.ErrPoolFull)
	})
	h := newStreamHarness(t, &mocks.MockCoachService{}, full)

	events := readSSE(t, postStream(t, h.server.URL, mustJSON(t, validProfile)))

	assert.Equal(t, []string{stream.EventConnected, stream.EventError}, eventNames(events))
	var payload stream.ErrorPayload
	require.NoError(t, json.Unmarshal([]byte(events[1].Data), &payload))
	assert.Equal(t, "Server is busy, please retry shortly", payload.Error)
	assert.Zero(t, h.registry.ActiveCount())
}

func TestStreamSSE_ClientDisconnectCancelsProducers(t *testing.T) {
	var cancelled atomic.Bool
	started := make(chan struct{})
	block := func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		cancelled.Store(true)
		return ctx.Err()
	}
	coach := &mocks.MockCoachService{
		InterviewFn: func(ctx context.Context, _ domain.CareerProfile) (*domain.InterviewQuestions, error) {
			return nil, block(ctx)
		},
		LearningFn: func(ctx context.Context, _ domain.CareerProfile) (*domain.LearningPath, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}
	h := newStreamHarness(t, coach, nil)

	ctx, cancel := context.WithCancel(context.Background())
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.server.URL+"/stream",
		strings.NewReader(mustJSON(t, validProfile)))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("producer never started")
	}
	cancel()

	assert.Eventually(t, cancelled.Load, 2*time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool { return h.registry.ActiveCount() == 0 },
		2*time.Second, 10*time.Millisecond)
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http") + "/stream/ws"
}

func TestStreamWebSocket_FullSession(t *testing.T) {
	h := newStreamHarness(t, &mocks.MockCoachService{}, nil)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(h.server), nil)
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()

	require.NoError(t, conn.WriteJSON(validProfile))
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var names []string
	for {
		var frame stream.Frame
		if err := conn.ReadJSON(&frame); err != nil {
			assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), err)
			break
		}
		names = append(names, frame.Event)
	}

	require.NotEmpty(t, names)
	assert.Equal(t, stream.EventConnected, names[0])
	assert.Equal(t, stream.EventCompleted, names[len(names)-1])
	assert.Len(t, names, 7)
}

func TestStreamWebSocket_InvalidProfile(t *testing.T) {
	h := newStreamHarness(t, &mocks.MockCoachService{}, nil)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(h.server), nil)
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()

	require.NoError(t, conn.WriteJSON(domain.CareerProfile{CareerSummary: "x", JobRole: "dev"}))
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	_, _, err = conn.ReadMessage()
	var closeErr *websocket.CloseError
	require.ErrorAs(t, err, &closeErr)
	assert.Equal(t, websocket.ClosePolicyViolation, closeErr.Code)
	assert.Zero(t, h.registry.ActiveCount())
}
