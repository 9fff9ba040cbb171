package stream_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/phrazzld/career-coach/internal/stream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebSocketSink(t *testing.T) {
	t.Parallel()

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if !assert.NoError(t, err) {
			return
		}
		sink := stream.NewWebSocketSink(conn, time.Second)
		ch := stream.NewChannel(sink)
		assert.NoError(t, ch.Send(stream.EventConnected, map[string]any{"sessionId": "abc"}))
		assert.NoError(t, ch.Send(stream.EventCompleted, map[string]any{"progress": 100}))
		ch.Complete()
		_ = sink.Close()
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	var first, second stream.Frame
	require.NoError(t, conn.ReadJSON(&first))
	require.NoError(t, conn.ReadJSON(&second))

	assert.Equal(t, uint64(1), first.ID)
	assert.Equal(t, "connected", first.Event)
	assert.Equal(t, int64(1000), first.RetryMS)
	assert.Equal(t, map[string]any{"sessionId": "abc"}, first.Data)

	assert.Equal(t, uint64(2), second.ID)
	assert.Equal(t, "completed", second.Event)

	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure))
}
