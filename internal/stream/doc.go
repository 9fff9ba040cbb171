// Package stream implements the per-session event channel: an ordered,
// single-consumer sink that numbers events, serializes concurrent writers
// and terminates exactly once by completion, timeout or error.
//
// Transports plug in through Sink. SSEWriter speaks text/event-stream over
// an http.ResponseWriter; WebSocketSink writes JSON text frames.
package stream
