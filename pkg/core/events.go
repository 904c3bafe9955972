package core

import "time"

// Event is the interface for scheduler lifecycle events.
type Event interface {
	eventMarker()
}

// JobStarted is emitted when a worker picks up a job.
type JobStarted struct {
	Job       JobState
	Timestamp time.Time
}

func (JobStarted) eventMarker() {}

// JobCompleted is emitted when a job's report has been persisted.
type JobCompleted struct {
	Job       JobState
	Duration  time.Duration
	Timestamp time.Time
}

func (JobCompleted) eventMarker() {}

// JobFailed is emitted when a job ends in the failed state.
type JobFailed struct {
	Job       JobState
	Err       error
	Timestamp time.Time
}

func (JobFailed) eventMarker() {}

// JobCancelled is emitted when a cancellation takes effect.
type JobCancelled struct {
	Job       JobState
	Timestamp time.Time
}

func (JobCancelled) eventMarker() {}
