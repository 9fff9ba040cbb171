package stream

import (
	"time"

	"github.com/gorilla/websocket"
)

// Frame is the JSON shape of an event sent over a WebSocket.
type Frame struct {
	ID      uint64 `json:"id"`
	Event   string `json:"event"`
	RetryMS int64  `json:"retry"`
	Data    any    `json:"data"`
}

// WebSocketSink writes events as JSON text frames.
type WebSocketSink struct {
	conn         *websocket.Conn
	writeTimeout time.Duration
}

// NewWebSocketSink wraps an upgraded connection.
func NewWebSocketSink(conn *websocket.Conn, writeTimeout time.Duration) *WebSocketSink {
	return &WebSocketSink{conn: conn, writeTimeout: writeTimeout}
}

// WriteEvent implements Sink.
func (s *WebSocketSink) WriteEvent(ev Event) error {
	if s.writeTimeout > 0 {
		if err := s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout)); err != nil {
			return err
		}
	}
	return s.conn.WriteJSON(Frame{
		ID:      ev.ID,
		Event:   ev.Name,
		RetryMS: ev.Retry.Milliseconds(),
		Data:    ev.Data,
	})
}

// Close sends a normal close frame and closes the connection.
func (s *WebSocketSink) Close() error {
	deadline := time.Now().Add(time.Second)
	_ = s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
	return s.conn.Close()
}
