package core

import "time"

// JobStatus represents the current state of an analysis job.
type JobStatus string

const (
	StatusQueued    JobStatus = "queued"
	StatusRunning   JobStatus = "running"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
	StatusCancelled JobStatus = "cancelled"
)

// Terminal reports whether no further transition is possible.
func (s JobStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// JobState is the scheduler-visible state of one analysis job. Ply counts
// plies whose before and after evaluations have both been obtained, so
// progress is observable mid-flight.
type JobState struct {
	ID        string
	GameID    string
	BatchID   string
	Status    JobStatus
	Ply       int
	TotalPly  int
	Err       string
	Cause     FailureClass
	CreatedAt time.Time
	StartedAt *time.Time
	EndedAt   *time.Time
}

// Progress returns completed plies over total, in [0,1]. A job with no
// plies reports 1 once terminal, 0 otherwise.
func (s *JobState) Progress() float64 {
	if s.TotalPly == 0 {
		if s.Status.Terminal() {
			return 1
		}
		return 0
	}
	return float64(s.Ply) / float64(s.TotalPly)
}

// BatchState is the aggregate view of one bulk submission. Completed counts
// member jobs that reached any terminal state.
type BatchState struct {
	ID        string
	JobIDs    []string
	Completed int
	Total     int
	CreatedAt time.Time
}
