// Package events publishes session lifecycle notifications.
//
// The session registry reports every removed session; SessionListener turns
// that report into a SessionEvent and hands it to an EventEmitter, which fans
// it out to registered handlers such as LogHandler and RedisPublisher.
// Producers of events do not know which handlers consume them.
package events
