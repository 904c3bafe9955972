package score

import (
	"github.com/mkarras/chess-analysis/pkg/core"
)

// Thresholds are the upper loss bounds (in expected points) for each
// primary label. A loss above Mistake is a blunder. The same bounds apply
// to both colors.
type Thresholds struct {
	Best       float64 `yaml:"best"`
	Excellent  float64 `yaml:"excellent"`
	Good       float64 `yaml:"good"`
	Inaccuracy float64 `yaml:"inaccuracy"`
	Mistake    float64 `yaml:"mistake"`
}

// DefaultThresholds returns the standard label boundaries.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Best:       0.005,
		Excellent:  0.02,
		Good:       0.05,
		Inaccuracy: 0.10,
		Mistake:    0.20,
	}
}

// Label maps a nonnegative expected-points loss to its primary label. The
// bounds partition [0, ∞) with no gaps and no overlaps.
func (t Thresholds) Label(loss float64) core.Label {
	switch {
	case loss <= t.Best:
		return core.LabelBest
	case loss <= t.Excellent:
		return core.LabelExcellent
	case loss <= t.Good:
		return core.LabelGood
	case loss <= t.Inaccuracy:
		return core.LabelInaccuracy
	case loss <= t.Mistake:
		return core.LabelMistake
	default:
		return core.LabelBlunder
	}
}

// MoveInput is everything the classifier needs about one ply. Before is the
// evaluation of the position with the mover to move (its best line is the
// engine's first choice); After is the evaluation of the position the played
// move produced, with the opponent to move. Nil evaluations mark a ply whose
// engine result could not be obtained.
type MoveInput struct {
	Before *core.Evaluation
	After  *core.Evaluation
	Mover  core.Side

	// PlayedBest reports whether the played move equals the engine's first
	// choice in the before position.
	PlayedBest bool

	// MaterialSwing is the mover's material change, in pawns, from before
	// the move to after the opponent's best reply. Negative means the mover
	// gave up material.
	MaterialSwing int

	// PrevLoss is the expected-points loss of the opponent's previous move,
	// 0 for the first ply of the game.
	PrevLoss float64
}

// Result is the classifier's verdict for one ply. Points are in the
// mover's frame. Exactly one of Loss and Gain is nonzero.
type Result struct {
	PointsBefore float64
	PointsAfter  float64
	Loss         float64
	Gain         float64
	Label        core.Label
	Tag          core.Tag
}

// Classifier assigns primary labels from threshold constants and special
// tags from an injectable policy.
type Classifier struct {
	thresholds Thresholds
	policy     TagPolicy
}

// NewClassifier builds a classifier. A nil policy disables special tags.
func NewClassifier(t Thresholds, p TagPolicy) *Classifier {
	return &Classifier{thresholds: t, policy: p}
}

// NewDefaultClassifier builds a classifier with the standard thresholds and
// tag policy.
func NewDefaultClassifier() *Classifier {
	return NewClassifier(DefaultThresholds(), DefaultTagPolicy())
}

// Thresholds returns the label boundaries in use.
func (c *Classifier) Thresholds() Thresholds {
	return c.thresholds
}

// Classify judges one ply. A ply with a missing evaluation is explicitly
// unavailable, never defaulted into a quality bucket.
func (c *Classifier) Classify(in MoveInput) Result {
	if in.Before == nil || in.After == nil {
		return Result{Label: core.LabelUnavailable}
	}

	best := ExpectedPoints(*in.Before, in.Mover, in.Mover)
	actual := ExpectedPoints(*in.After, in.Mover, in.Mover.Opponent())

	r := Result{
		PointsBefore: best,
		PointsAfter:  actual,
	}
	if actual < best {
		r.Loss = best - actual
	} else {
		r.Gain = actual - best
	}
	r.Label = c.thresholds.Label(r.Loss)

	if c.policy != nil {
		r.Tag = c.tag(in, r)
	}
	return r
}

// tag evaluates the special-tag predicates in priority order. At most one
// tag is assigned; predicates never feed back into the primary label.
func (c *Classifier) tag(in MoveInput, r Result) core.Tag {
	tc := TagContext{
		Loss:          r.Loss,
		Gain:          r.Gain,
		PointsBest:    r.PointsBefore,
		PointsAfter:   r.PointsAfter,
		PlayedBest:    in.PlayedBest,
		MaterialSwing: in.MaterialSwing,
		PrevLoss:      in.PrevLoss,
		MateMissed:    in.Before.IsMate() && in.Before.Value > 0 && !in.After.IsMate(),
	}
	switch {
	case c.policy.Brilliant(tc):
		return core.TagBrilliant
	case c.policy.Great(tc):
		return core.TagGreat
	case c.policy.Miss(tc):
		return core.TagMiss
	default:
		return core.TagNone
	}
}
