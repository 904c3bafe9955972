package job

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkarras/chess-analysis/pkg/core"
	"github.com/mkarras/chess-analysis/pkg/engine/enginetest"
	"github.com/mkarras/chess-analysis/pkg/replay"
	"github.com/mkarras/chess-analysis/pkg/score"
	"github.com/mkarras/chess-analysis/pkg/storage"
)

func newTestRunner(stub *enginetest.Stub, store storage.Store) *Runner {
	return NewRunner(stub, score.NewDefaultClassifier(), store, nil)
}

// bestMovesByFEN maps each evaluated position to the move actually played
// from it, so a stub can answer "best move = move played".
func bestMovesByFEN(t *testing.T, ref core.GameRef) map[string]string {
	t.Helper()
	rep, err := replay.Walk(ref)
	require.NoError(t, err)

	best := make(map[string]string)
	for _, ply := range rep.Plies {
		best[ply.FENBefore] = ply.UCI
	}
	return best
}

func TestRun_TwoPlyEvenGame(t *testing.T) {
	// A stub engine reporting 0.00 and best-move = move played for every
	// position: both moves come out Best at 0.5/0.5.
	ref := core.GameRef{ID: "even-game", Moves: []string{"e4", "e5"}}
	stub := &enginetest.Stub{Eval: enginetest.Flat(0, bestMovesByFEN(t, ref))}
	store := storage.NewMemory()

	report, err := newTestRunner(stub, store).Run(context.Background(), ref, core.EngineConfig{}, nil)
	require.NoError(t, err)
	require.Len(t, report.Moves, 2)

	for _, move := range report.Moves {
		assert.Equal(t, core.LabelBest, move.Label)
		assert.Equal(t, core.TagNone, move.Tag)
		assert.InDelta(t, 0.5, move.PointsBefore, 1e-9)
		assert.InDelta(t, 0.5, move.PointsAfter, 1e-9)
		assert.Zero(t, move.Loss)
	}
	assert.Equal(t, "e4", report.Moves[0].SAN)
	assert.Equal(t, core.White, report.Moves[0].Side)
	assert.Equal(t, core.Black, report.Moves[1].Side)

	stored, err := store.Get(context.Background(), "even-game")
	require.NoError(t, err)
	assert.Equal(t, report.GameID, stored.GameID)
	assert.Zero(t, stub.Active(), "session must be closed after the run")
}

func TestRun_HungPieceIsBlunder(t *testing.T) {
	// +500 for White before the move, +500 for Black after it.
	ref := core.GameRef{ID: "blunder-game", Moves: []string{"a3"}}
	rep, err := replay.Walk(ref)
	require.NoError(t, err)

	beforeFEN := rep.Plies[0].FENBefore
	stub := &enginetest.Stub{Eval: func(fen string) (core.Evaluation, error) {
		if fen == beforeFEN {
			return core.Evaluation{Type: core.ScoreCentipawn, Value: 500, BestMove: "e2e4"}, nil
		}
		return core.Evaluation{Type: core.ScoreCentipawn, Value: 500, BestMove: "e7e5"}, nil
	}}
	store := storage.NewMemory()

	report, err := newTestRunner(stub, store).Run(context.Background(), ref, core.EngineConfig{}, nil)
	require.NoError(t, err)
	require.Len(t, report.Moves, 1)
	assert.Equal(t, core.LabelBlunder, report.Moves[0].Label)
}

func TestRun_MateKeptIsBest(t *testing.T) {
	// Mate in 3 before White's move, mate in 2 after it.
	ref := core.GameRef{ID: "mate-game", Moves: []string{"e4"}}
	rep, err := replay.Walk(ref)
	require.NoError(t, err)

	beforeFEN := rep.Plies[0].FENBefore
	stub := &enginetest.Stub{Eval: func(fen string) (core.Evaluation, error) {
		if fen == beforeFEN {
			return core.Evaluation{Type: core.ScoreMate, Value: 3, BestMove: "e2e4"}, nil
		}
		// Black to move, mated in 2.
		return core.Evaluation{Type: core.ScoreMate, Value: -2, BestMove: "e7e5"}, nil
	}}

	report, err := newTestRunner(stub, storage.NewMemory()).Run(context.Background(), ref, core.EngineConfig{}, nil)
	require.NoError(t, err)
	require.Len(t, report.Moves, 1)
	assert.Equal(t, core.LabelBest, report.Moves[0].Label)
	assert.Equal(t, 1.0, report.Moves[0].PointsBefore)
	assert.Equal(t, 1.0, report.Moves[0].PointsAfter)
}

func TestRun_PersistentFailureNeverPersists(t *testing.T) {
	ref := core.GameRef{ID: "doomed-game", Moves: []string{"e4", "e5"}}
	stub := &enginetest.Stub{Eval: func(string) (core.Evaluation, error) {
		return core.Evaluation{}, core.ErrEngineCrashed
	}}
	store := storage.NewMemory()

	_, err := newTestRunner(stub, store).Run(context.Background(), ref, core.EngineConfig{}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrEngineCrashed)
	assert.Equal(t, core.FailureEngine, core.Classify(err))

	var plyErr *core.PlyError
	require.True(t, errors.As(err, &plyErr))
	assert.Equal(t, 0, plyErr.Ply)

	has, _ := store.Has(context.Background(), "doomed-game")
	assert.False(t, has, "a failed job must never persist a report")
	assert.Equal(t, 2, stub.Opens(), "exactly one fresh-session retry")
	assert.Zero(t, stub.Active())
}

func TestRun_TransientFailureRetriesOnce(t *testing.T) {
	ref := core.GameRef{ID: "flaky-game", Moves: []string{"e4"}}
	best := bestMovesByFEN(t, ref)

	var mu sync.Mutex
	failed := false
	stub := &enginetest.Stub{Eval: func(fen string) (core.Evaluation, error) {
		mu.Lock()
		defer mu.Unlock()
		if !failed {
			failed = true
			return core.Evaluation{}, core.ErrEngineTimeout
		}
		return core.Evaluation{Type: core.ScoreCentipawn, Value: 0, BestMove: best[fen]}, nil
	}}
	store := storage.NewMemory()

	report, err := newTestRunner(stub, store).Run(context.Background(), ref, core.EngineConfig{}, nil)
	require.NoError(t, err)
	assert.Len(t, report.Moves, 1)
	assert.Equal(t, 2, stub.Opens())
	assert.Zero(t, stub.Active())
}

func TestRun_IllegalMoveFailsWithoutEngine(t *testing.T) {
	ref := core.GameRef{ID: "broken-game", Moves: []string{"e4", "Ke2"}}
	stub := &enginetest.Stub{Eval: enginetest.Flat(0, nil)}
	store := storage.NewMemory()

	_, err := newTestRunner(stub, store).Run(context.Background(), ref, core.EngineConfig{}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrIllegalMove)
	assert.Equal(t, core.FailureData, core.Classify(err))
	assert.Zero(t, stub.Opens(), "bad input must be rejected before any engine spawns")
}

func TestRun_UnavailableBinaryIsNotRetried(t *testing.T) {
	ref := core.GameRef{ID: "no-engine", Moves: []string{"e4"}}
	stub := &enginetest.Stub{OpenErr: core.ErrEngineUnavailable}

	_, err := newTestRunner(stub, storage.NewMemory()).Run(context.Background(), ref, core.EngineConfig{}, nil)
	assert.ErrorIs(t, err, core.ErrEngineUnavailable)
	assert.Zero(t, stub.Opens())
}

func TestRun_CancelledAtPlyBoundary(t *testing.T) {
	ref := core.GameRef{ID: "cancel-game", Moves: []string{"e4", "e5", "Nf3", "Nc6"}}
	stub := &enginetest.Stub{Eval: enginetest.Flat(0, bestMovesByFEN(t, ref))}
	store := storage.NewMemory()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestRunner(stub, store).Run(ctx, ref, core.EngineConfig{}, nil)
	require.ErrorIs(t, err, context.Canceled)

	has, _ := store.Has(context.Background(), "cancel-game")
	assert.False(t, has)
	assert.Zero(t, stub.Active(), "cancellation must tear the session down")
}

type recordingTracker struct {
	mu       sync.Mutex
	total    int
	advances []int
}

func (r *recordingTracker) Started(total int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.total = total
}

func (r *recordingTracker) Advanced(done int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.advances = append(r.advances, done)
}

func TestRun_ProgressPerPly(t *testing.T) {
	ref := core.GameRef{ID: "progress-game", Moves: []string{"e4", "e5", "Nf3"}}
	stub := &enginetest.Stub{Eval: enginetest.Flat(0, bestMovesByFEN(t, ref))}
	tracker := &recordingTracker{}

	_, err := newTestRunner(stub, storage.NewMemory()).Run(context.Background(), ref, core.EngineConfig{}, tracker)
	require.NoError(t, err)
	assert.Equal(t, 3, tracker.total)
	assert.Equal(t, []int{1, 2, 3}, tracker.advances)
}
