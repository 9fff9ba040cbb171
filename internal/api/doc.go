// Package api exposes the career coach over HTTP: synchronous generation
// endpoints, resume queries, SSE and WebSocket streaming sessions, session
// lookup and health. Handlers translate HTTP concerns into service and
// orchestrator calls and answer with the shared JSON envelope.
package api
