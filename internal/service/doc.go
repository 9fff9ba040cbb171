// Package service implements the career coach use cases.
//
// CareerCoachService is the single entry point used by the HTTP handlers and
// by the streaming producer tasks. Each generation call:
//
//   - validates and normalizes the profile
//   - stores the profile as a resume unless an identical one already exists
//   - returns a cached artifact when the result cache has one
//   - otherwise renders the prompt, calls the TextGenerator and parses the answer
//
// The service depends on the ResumeRepository, generation.TextGenerator and
// cache.Cache interfaces only. The concrete database, model backend and cache
// are chosen in cmd/server.
//
// Failures are returned as *CoachServiceError values that keep the operation
// name and wrap the cause, so callers can still match sentinel errors such as
// ErrResumeNotFound or generation.ErrContentBlocked with errors.Is.
package service
