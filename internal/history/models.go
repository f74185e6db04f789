package history

import (
	"time"

	"obdexporter/internal/thing"
)

// Status is the recorded result of a run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Run is one journaled export run.
type Run struct {
	ID            string
	ClientVersion uint16
	FormatVersion int
	OutputDir     string
	Total         int
	Completed     int
	Status        Status
	ErrorKind     string
	ErrorMessage  string
	// FailedThing is set when a specific item aborted the run.
	FailedThing *thing.Identity
	StartedAt   time.Time
	FinishedAt  *time.Time
}

// Duration returns the elapsed run time, or zero while the run is open.
func (r *Run) Duration() time.Duration {
	if r == nil || r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Artifact is one file written by a run.
type Artifact struct {
	RunID     string
	Seq       int
	Identity  thing.Identity
	Path      string
	WrittenAt time.Time
}
