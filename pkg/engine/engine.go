package engine

import (
	"context"

	"github.com/mkarras/chess-analysis/pkg/core"
)

// Session is one live engine process bound to a single analysis worker.
// Sessions are not safe for concurrent use; each worker owns at most one.
type Session interface {
	// SetPosition configures the board the next Evaluate call will search.
	SetPosition(fen string) error

	// Evaluate blocks the calling worker until the engine produces a best
	// move at or beyond the configured budget. It fails with
	// core.ErrEngineTimeout when no result arrives within a bounded
	// multiple of the time budget, or core.ErrEngineCrashed when the
	// process exits mid-search. Failures are never retried here; retry
	// policy belongs to the caller.
	Evaluate(ctx context.Context) (core.Evaluation, error)

	// Close terminates and reaps the engine process. It is safe to call
	// after a failed Evaluate and safe to call more than once.
	Close() error
}

// Opener starts engine sessions. Open fails with core.ErrEngineUnavailable
// when the binary is missing or not executable, or with
// core.ErrEngineStartupFailed when the process exits before completing the
// UCI handshake.
type Opener interface {
	Open(cfg core.EngineConfig) (Session, error)
}
