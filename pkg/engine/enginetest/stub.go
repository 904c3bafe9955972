// Package enginetest provides a scripted in-memory engine for testing the
// analysis pipeline without spawning a process.
package enginetest

import (
	"context"
	"sync"
	"time"

	"github.com/mkarras/chess-analysis/pkg/core"
	"github.com/mkarras/chess-analysis/pkg/engine"
)

// Stub is an engine.Opener whose sessions answer from a script instead of
// searching. It records session counts so tests can assert the concurrency
// budget and teardown behavior.
type Stub struct {
	// Eval answers an evaluation for a FEN. Required unless every call is
	// expected to fail through OpenErr.
	Eval func(fen string) (core.Evaluation, error)

	// OpenErr, when set, fails every Open call.
	OpenErr error

	// Latency delays each Evaluate, to make in-flight windows observable.
	Latency time.Duration

	mu        sync.Mutex
	opens     int
	active    int
	maxActive int
}

// Open starts a scripted session.
func (s *Stub) Open(cfg core.EngineConfig) (engine.Session, error) {
	if s.OpenErr != nil {
		return nil, s.OpenErr
	}
	s.mu.Lock()
	s.opens++
	s.active++
	if s.active > s.maxActive {
		s.maxActive = s.active
	}
	s.mu.Unlock()
	return &stubSession{stub: s}, nil
}

// Opens returns how many sessions have ever been opened.
func (s *Stub) Opens() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opens
}

// Active returns how many sessions are currently open.
func (s *Stub) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// MaxActive returns the highest number of simultaneously open sessions.
func (s *Stub) MaxActive() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.maxActive
}

type stubSession struct {
	stub   *Stub
	fen    string
	closed bool
	mu     sync.Mutex
}

func (ss *stubSession) SetPosition(fen string) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	if ss.closed {
		return core.ErrEngineCrashed
	}
	ss.fen = fen
	return nil
}

func (ss *stubSession) Evaluate(ctx context.Context) (core.Evaluation, error) {
	ss.mu.Lock()
	fen := ss.fen
	closed := ss.closed
	ss.mu.Unlock()
	if closed {
		return core.Evaluation{}, core.ErrEngineCrashed
	}

	if d := ss.stub.Latency; d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return core.Evaluation{}, ctx.Err()
		}
	}
	return ss.stub.Eval(fen)
}

func (ss *stubSession) Close() error {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	if ss.closed {
		return nil
	}
	ss.closed = true

	ss.stub.mu.Lock()
	ss.stub.active--
	ss.stub.mu.Unlock()
	return nil
}

// Flat returns an Eval func reporting the same evaluation for every
// position, with the best move looked up per FEN.
func Flat(cp int, bestByFEN map[string]string) func(string) (core.Evaluation, error) {
	return func(fen string) (core.Evaluation, error) {
		return core.Evaluation{
			Type:     core.ScoreCentipawn,
			Value:    cp,
			BestMove: bestByFEN[fen],
			Depth:    20,
		}, nil
	}
}
