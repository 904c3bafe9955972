package job

import (
	"context"

	"github.com/mkarras/chess-analysis/pkg/core"
	"github.com/mkarras/chess-analysis/pkg/engine"
)

// sessionBox owns the job's single engine session and implements the
// one-fresh-session retry for per-ply failures. At most one session is
// open at any moment: the broken one is closed before its replacement is
// opened, so the scheduler's budget holds through retries.
type sessionBox struct {
	runner *Runner
	cfg    core.EngineConfig
	sess   engine.Session
	gameID string
}

func (b *sessionBox) evaluate(ctx context.Context, fen string, ply int) (core.Evaluation, error) {
	ev, err := b.tryOnce(ctx, fen)
	if err == nil {
		return ev, nil
	}
	if ctx.Err() != nil || !core.Retryable(err) {
		return ev, err
	}

	b.runner.logger.Warn("ply evaluation failed, retrying with fresh engine session",
		"game_id", b.gameID, "ply", ply, "error", err)

	b.close()
	sess, openErr := b.runner.opener.Open(b.cfg)
	if openErr != nil {
		return core.Evaluation{}, openErr
	}
	b.sess = sess
	return b.tryOnce(ctx, fen)
}

func (b *sessionBox) tryOnce(ctx context.Context, fen string) (core.Evaluation, error) {
	if err := b.sess.SetPosition(fen); err != nil {
		return core.Evaluation{}, err
	}
	return b.sess.Evaluate(ctx)
}

func (b *sessionBox) close() {
	if b.sess == nil {
		return
	}
	if err := b.sess.Close(); err != nil {
		b.runner.logger.Warn("engine session close failed", "game_id", b.gameID, "error", err)
	}
	b.sess = nil
}
