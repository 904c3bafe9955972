package core

import (
	"errors"
	"fmt"
)

// Engine and submission errors. The scheduler and job runner rely on
// errors.Is against these sentinels to pick retry and failure behavior.
var (
	// ErrEngineUnavailable means the engine binary is missing or not
	// executable. Fatal immediately, never retried.
	ErrEngineUnavailable = errors.New("analysis: engine binary unavailable")

	// ErrEngineStartupFailed means the process exited before completing the
	// UCI handshake.
	ErrEngineStartupFailed = errors.New("analysis: engine startup failed")

	// ErrEngineTimeout means no result arrived within the bounded multiple
	// of the configured search budget.
	ErrEngineTimeout = errors.New("analysis: engine evaluation timed out")

	// ErrEngineCrashed means the engine process exited mid-search.
	ErrEngineCrashed = errors.New("analysis: engine process crashed")

	// ErrIllegalMove means the game's own move list cannot be replayed.
	// This is a data problem, not an engine problem.
	ErrIllegalMove = errors.New("analysis: illegal move in game source")

	// ErrDuplicateGame rejects a submission for a game id that already has
	// a queued or running job.
	ErrDuplicateGame = errors.New("analysis: game already has an active job")

	// ErrSchedulerClosed rejects submissions after Close.
	ErrSchedulerClosed = errors.New("analysis: scheduler closed")

	// ErrUnknownJob is returned for status queries on ids never issued or
	// already retired.
	ErrUnknownJob = errors.New("analysis: unknown job id")

	// ErrUnknownBatch mirrors ErrUnknownJob for bulk submissions.
	ErrUnknownBatch = errors.New("analysis: unknown batch id")
)

// FailureClass partitions job failures so callers can choose the remedy:
// retry the analysis (engine-class) or re-import the game (data-class).
type FailureClass string

const (
	FailureNone   FailureClass = ""
	FailureEngine FailureClass = "engine"
	FailureData   FailureClass = "data"
)

// Classify maps an error to its failure class.
func Classify(err error) FailureClass {
	switch {
	case err == nil:
		return FailureNone
	case errors.Is(err, ErrIllegalMove):
		return FailureData
	default:
		return FailureEngine
	}
}

// Retryable reports whether a per-ply engine failure warrants the single
// fresh-session retry. Unavailable binaries and bad game data never do.
func Retryable(err error) bool {
	if errors.Is(err, ErrEngineUnavailable) || errors.Is(err, ErrIllegalMove) {
		return false
	}
	return errors.Is(err, ErrEngineStartupFailed) ||
		errors.Is(err, ErrEngineTimeout) ||
		errors.Is(err, ErrEngineCrashed)
}

// PlyError wraps a per-ply failure with the ply it occurred on.
type PlyError struct {
	Ply int
	Err error
}

func (e *PlyError) Error() string {
	return fmt.Sprintf("ply %d: %v", e.Ply, e.Err)
}

func (e *PlyError) Unwrap() error {
	return e.Err
}
