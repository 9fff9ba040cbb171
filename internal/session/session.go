package session

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a session.
type Status string

// Session statuses. CONNECTED moves to PROCESSING, then to one terminal status.
const (
	StatusConnected  Status = "CONNECTED"
	StatusProcessing Status = "PROCESSING"
	StatusCompleted  Status = "COMPLETED"
	StatusTimeout    Status = "TIMEOUT"
	StatusError      Status = "ERROR"
)

// Terminal reports whether no further transitions are allowed.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusTimeout || s == StatusError
}

func (s Status) valid() bool {
	return s.rank() > 0
}

// rank orders statuses along CONNECTED -> PROCESSING -> terminal.
// Unknown statuses rank zero.
func (s Status) rank() int {
	switch s {
	case StatusConnected:
		return 1
	case StatusProcessing:
		return 2
	case StatusCompleted, StatusTimeout, StatusError:
		return 3
	}
	return 0
}

// Info is a snapshot of a session.
type Info struct {
	ID        string    `json:"sessionId"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Registry errors.
var (
	ErrDuplicateSession = errors.New("session already exists")
	ErrInvalidSessionID = errors.New("session id cannot be empty")
	ErrNilChannel       = errors.New("session channel cannot be nil")
)

// NewID returns a random session identifier.
func NewID() string {
	return uuid.NewString()
}
