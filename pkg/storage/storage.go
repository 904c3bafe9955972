package storage

import (
	"context"
	"errors"

	"github.com/mkarras/chess-analysis/pkg/core"
)

// ErrNotFound is returned by Get for a game with no stored report.
var ErrNotFound = errors.New("storage: report not found")

// Store persists analysis reports keyed by game id. Set replaces any
// previous report for the game.
type Store interface {
	Set(ctx context.Context, gameID string, report *core.AnalysisReport) error
	Get(ctx context.Context, gameID string) (*core.AnalysisReport, error)
	Has(ctx context.Context, gameID string) (bool, error)
	Delete(ctx context.Context, gameID string) error
	List(ctx context.Context) ([]string, error)
}
