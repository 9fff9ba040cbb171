package task

import (
	"context"

	"github.com/phrazzld/career-coach/internal/domain"
)

// Producer names. They prefix the per-task stream events, e.g. "interview_start".
const (
	NameInterview = "interview"
	NameLearning  = "learning"
)

// Producer is one independent unit of generation work for a session.
// Implementations share no mutable state with sibling producers.
type Producer interface {
	// Name identifies the producer in events and logs.
	Name() string

	// Label is a human-readable name of the artifact, e.g. "interview questions".
	Label() string

	// Run generates the producer's artifact for profile.
	// The returned value must be JSON-serializable.
	Run(ctx context.Context, profile domain.CareerProfile) (any, error)
}

// Job is a unit of work executed by the Pool.
type Job interface {
	// ID identifies the job in logs.
	ID() string

	// Execute runs the job. ctx is cancelled when the pool stops.
	Execute(ctx context.Context) error
}

// JobFunc adapts a function to the Job interface.
type JobFunc struct {
	JobID string
	Fn    func(ctx context.Context) error
}

// ID implements Job.
func (j JobFunc) ID() string { return j.JobID }

// Execute implements Job.
func (j JobFunc) Execute(ctx context.Context) error { return j.Fn(ctx) }
