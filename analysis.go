// Package analysis drives an external chess engine over whole games,
// translating raw engine scores into normalized expected points and
// classifying every move, for many games concurrently under a fixed
// hardware budget.
//
// This is the main package users should import. It re-exports the public
// types from the pkg/ packages for a clean API surface.
//
// Basic usage:
//
//	store := analysis.NewMemoryStore()
//	sched := analysis.New(4, analysis.UCIOpener{}, store)
//	defer sched.Close()
//
//	id, _ := sched.Submit(analysis.GameRef{
//	    ID:    "game-1",
//	    Moves: []string{"e4", "e5", "Nf3", "Nc6"},
//	}, analysis.EngineConfig{
//	    BinPath:  "/usr/bin/stockfish",
//	    Threads:  2,
//	    HashMB:   256,
//	    Depth:    20,
//	    MoveTime: time.Second,
//	})
//
//	// Poll sched.Status(id) until terminal, then read the report.
//	report, _ := store.Get(ctx, "game-1")
package analysis

import (
	"log/slog"
	"time"

	"github.com/mkarras/chess-analysis/pkg/core"
	"github.com/mkarras/chess-analysis/pkg/engine"
	"github.com/mkarras/chess-analysis/pkg/job"
	"github.com/mkarras/chess-analysis/pkg/scheduler"
	"github.com/mkarras/chess-analysis/pkg/score"
	"github.com/mkarras/chess-analysis/pkg/storage"
)

// Type aliases for the public surface.
type (
	// GameRef is a read-only reference to a game to analyze.
	GameRef = core.GameRef

	// EngineConfig holds the engine settings supplied by the caller.
	EngineConfig = core.EngineConfig

	// Evaluation is one raw engine verdict for a position.
	Evaluation = core.Evaluation

	// ScoreType distinguishes centipawn scores from forced-mate scores.
	ScoreType = core.ScoreType

	// MoveRecord is the per-ply analysis artifact.
	MoveRecord = core.MoveRecord

	// AnalysisReport is the complete analysis of one game.
	AnalysisReport = core.AnalysisReport

	// JobState is the scheduler-visible state of one job.
	JobState = core.JobState

	// BatchState is the aggregate view of a bulk submission.
	BatchState = core.BatchState

	// JobStatus enumerates the job lifecycle states.
	JobStatus = core.JobStatus

	// Label is the primary move-quality bucket.
	Label = core.Label

	// Tag is the optional special annotation on a move.
	Tag = core.Tag

	// Side identifies a color.
	Side = core.Side

	// FailureClass partitions job failures into engine and data problems.
	FailureClass = core.FailureClass

	// Event is a scheduler lifecycle event.
	Event = core.Event

	// Scheduler runs analysis jobs on a fixed pool of worker slots.
	Scheduler = scheduler.Scheduler

	// Option configures a Scheduler.
	Option = scheduler.Option

	// Runner executes single analysis jobs.
	Runner = job.Runner

	// Session is one live engine process.
	Session = engine.Session

	// Opener starts engine sessions.
	Opener = engine.Opener

	// UCIOpener starts real UCI engine processes.
	UCIOpener = engine.UCIOpener

	// Classifier assigns labels and special tags to moves.
	Classifier = score.Classifier

	// Thresholds are the primary label boundaries.
	Thresholds = score.Thresholds

	// TagPolicy decides the special tags.
	TagPolicy = score.TagPolicy

	// Store persists completed analysis reports.
	Store = storage.Store
)

// Side constants.
const (
	White = core.White
	Black = core.Black
)

// Score type constants.
const (
	ScoreCentipawn = core.ScoreCentipawn
	ScoreMate      = core.ScoreMate
)

// Failure class constants.
const (
	FailureEngine = core.FailureEngine
	FailureData   = core.FailureData
)

// Status constants.
const (
	StatusQueued    = core.StatusQueued
	StatusRunning   = core.StatusRunning
	StatusCompleted = core.StatusCompleted
	StatusFailed    = core.StatusFailed
	StatusCancelled = core.StatusCancelled
)

// Label constants.
const (
	LabelBest        = core.LabelBest
	LabelExcellent   = core.LabelExcellent
	LabelGood        = core.LabelGood
	LabelInaccuracy  = core.LabelInaccuracy
	LabelMistake     = core.LabelMistake
	LabelBlunder     = core.LabelBlunder
	LabelUnavailable = core.LabelUnavailable
)

// Tag constants.
const (
	TagNone      = core.TagNone
	TagBrilliant = core.TagBrilliant
	TagGreat     = core.TagGreat
	TagMiss      = core.TagMiss
)

// Error variables.
var (
	ErrEngineUnavailable   = core.ErrEngineUnavailable
	ErrEngineStartupFailed = core.ErrEngineStartupFailed
	ErrEngineTimeout       = core.ErrEngineTimeout
	ErrEngineCrashed       = core.ErrEngineCrashed
	ErrIllegalMove         = core.ErrIllegalMove
	ErrDuplicateGame       = core.ErrDuplicateGame
	ErrSchedulerClosed     = core.ErrSchedulerClosed
	ErrUnknownJob          = core.ErrUnknownJob
	ErrUnknownBatch        = core.ErrUnknownBatch
	ErrReportNotFound      = storage.ErrNotFound
)

// New starts a scheduler with the given concurrency budget, engine opener,
// and result store, using the default classifier.
func New(slots int, opener Opener, store Store, opts ...Option) *Scheduler {
	return NewWithClassifier(slots, opener, store, score.NewDefaultClassifier(), opts...)
}

// NewWithClassifier is New with a caller-built classifier, for tuned
// thresholds or a custom tag policy.
func NewWithClassifier(slots int, opener Opener, store Store, classifier *Classifier, opts ...Option) *Scheduler {
	runner := job.NewRunner(opener, classifier, store, nil)
	return scheduler.New(slots, runner, opts...)
}

// NewMemoryStore creates an in-memory result store.
func NewMemoryStore() *storage.Memory {
	return storage.NewMemory()
}

// DefaultThresholds returns the standard label boundaries.
func DefaultThresholds() Thresholds {
	return score.DefaultThresholds()
}

// DefaultTagPolicy returns the standard special-tag policy.
func DefaultTagPolicy() TagPolicy {
	return score.DefaultTagPolicy()
}

// ExpectedPoints maps an engine evaluation to a [0,1] win likelihood for
// the judged side; pov is the side the raw value speaks for.
func ExpectedPoints(ev Evaluation, judged, pov Side) float64 {
	return score.ExpectedPoints(ev, judged, pov)
}

// Classify maps a job error to its failure class, so callers can choose
// between retrying the analysis and re-importing the game.
func Classify(err error) FailureClass {
	return core.Classify(err)
}

// Scheduler options.

// WithLogger sets the scheduler's structured logger.
func WithLogger(logger *slog.Logger) Option {
	return scheduler.WithLogger(logger)
}

// WithRetention retires terminal job states older than maxAge.
func WithRetention(maxAge time.Duration) Option {
	return scheduler.WithRetention(maxAge)
}
