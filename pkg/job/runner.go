package job

import (
	"context"
	"log/slog"
	"time"

	"github.com/mkarras/chess-analysis/pkg/core"
	"github.com/mkarras/chess-analysis/pkg/engine"
	"github.com/mkarras/chess-analysis/pkg/replay"
	"github.com/mkarras/chess-analysis/pkg/score"
	"github.com/mkarras/chess-analysis/pkg/storage"
)

// Tracker receives progress callbacks from a running job. Implementations
// must be cheap; they are called from the worker between evaluations.
type Tracker interface {
	// Started reports the total ply count once the game has been replayed.
	Started(totalPly int)

	// Advanced reports that plies [0, done) are fully evaluated and
	// classified.
	Advanced(done int)
}

// NopTracker discards progress updates.
type NopTracker struct{}

func (NopTracker) Started(int)  {}
func (NopTracker) Advanced(int) {}

// Runner executes analysis jobs. It is stateless and safe for concurrent
// use by multiple workers.
type Runner struct {
	opener     engine.Opener
	classifier *score.Classifier
	store      storage.Store
	logger     *slog.Logger
}

// NewRunner builds a runner. A nil logger falls back to slog.Default().
func NewRunner(opener engine.Opener, classifier *score.Classifier, store storage.Store, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		opener:     opener,
		classifier: classifier,
		store:      store,
		logger:     logger,
	}
}

// Run analyzes one game and persists the report on success. Any per-ply
// engine failure is retried exactly once with a freshly opened session;
// a second failure aborts the job and nothing is persisted. Cancellation
// is honored at ply boundaries only, so an in-flight evaluation always
// finishes or times out before the job winds down.
func (r *Runner) Run(ctx context.Context, ref core.GameRef, cfg core.EngineConfig, tracker Tracker) (*core.AnalysisReport, error) {
	if tracker == nil {
		tracker = NopTracker{}
	}

	rep, err := replay.Walk(ref)
	if err != nil {
		return nil, err
	}
	tracker.Started(len(rep.Plies))

	sess, err := r.opener.Open(cfg)
	if err != nil {
		return nil, err
	}
	box := &sessionBox{runner: r, cfg: cfg, sess: sess, gameID: ref.ID}
	defer box.close()

	// Evaluations never see the job's cancellation: cancelling mid-search
	// would leave the ply half-judged. The boundary check below picks the
	// cancellation up within one evaluation window.
	evalCtx := context.WithoutCancel(ctx)

	records := make([]core.MoveRecord, 0, len(rep.Plies))
	var before core.Evaluation
	var prevLoss float64

	for i := range rep.Plies {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ply := &rep.Plies[i]

		if i == 0 {
			before, err = box.evaluate(evalCtx, ply.FENBefore, i)
			if err != nil {
				return nil, &core.PlyError{Ply: i, Err: err}
			}
		}
		after, err := box.evaluate(evalCtx, ply.FENAfter, i)
		if err != nil {
			return nil, &core.PlyError{Ply: i, Err: err}
		}

		result := r.classifier.Classify(score.MoveInput{
			Before:        &before,
			After:         &after,
			Mover:         ply.Side,
			PlayedBest:    before.BestMove == ply.UCI,
			MaterialSwing: materialSwing(ply, &after),
			PrevLoss:      prevLoss,
		})

		beforeCopy, afterCopy := before, after
		records = append(records, core.MoveRecord{
			Ply:          ply.Index,
			SAN:          ply.SAN,
			UCI:          ply.UCI,
			Side:         ply.Side,
			EvalBefore:   &beforeCopy,
			EvalAfter:    &afterCopy,
			PointsBefore: result.PointsBefore,
			PointsAfter:  result.PointsAfter,
			Loss:         result.Loss,
			Gain:         result.Gain,
			Label:        result.Label,
			Tag:          result.Tag,
			PV:           beforeCopy.PV,
		})
		tracker.Advanced(i + 1)

		// The resulting position's evaluation doubles as the next ply's
		// "before"; each position is searched exactly once per game.
		before = after
		prevLoss = result.Loss
	}

	report := &core.AnalysisReport{
		GameID:    ref.ID,
		Moves:     records,
		Settings:  cfg,
		CreatedAt: time.Now().UTC(),
	}
	if err := r.store.Set(ctx, ref.ID, report); err != nil {
		return nil, err
	}
	return report, nil
}

// materialSwing estimates the mover's material change from before the move
// to after the opponent's best reply, in pawns. Best effort: a missing or
// unplayable PV falls back to the immediate position, and FEN problems
// yield zero. Only the special-tag predicates consume this.
func materialSwing(ply *replay.Ply, after *core.Evaluation) int {
	beforeBal, err := replay.MaterialBalance(ply.FENBefore, ply.Side)
	if err != nil {
		return 0
	}

	probeFEN := ply.FENAfter
	if len(after.PV) > 0 {
		if fen, err := replay.ApplyUCI(ply.FENAfter, after.PV[0]); err == nil {
			probeFEN = fen
		}
	}
	afterBal, err := replay.MaterialBalance(probeFEN, ply.Side)
	if err != nil {
		return 0
	}
	return afterBal - beforeBal
}
