// Package orchestrator turns the producer tasks of one streaming session into
// a single ordered event stream and exactly one terminal outcome.
//
// Producers run in parallel. Each sends its own start and complete events.
// The terminal completed or error event is sent only after every producer
// has returned, so it is always the last event on the channel. A failing
// producer never cancels its siblings; producers are cancelled only when the
// channel ends for reasons outside the orchestrator (timeout, transport
// failure, client disconnect, expiry).
package orchestrator
