// Package task holds the producer tasks that generate coaching artifacts and
// the bounded worker pool that runs streaming sessions in the background, so
// long-running generation never blocks HTTP request handling.
package task
