package score

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkarras/chess-analysis/pkg/core"
)

func TestThresholds_PartitionIsTotal(t *testing.T) {
	th := DefaultThresholds()
	// Every nonnegative loss lands in exactly one bucket, including the
	// boundary values themselves.
	losses := []float64{
		0, th.Best, th.Best + 1e-9,
		th.Excellent, th.Excellent + 1e-9,
		th.Good, th.Good + 1e-9,
		th.Inaccuracy, th.Inaccuracy + 1e-9,
		th.Mistake, th.Mistake + 1e-9,
		0.5, 1.0,
	}
	for _, loss := range losses {
		label := th.Label(loss)
		assert.NotEqual(t, core.LabelUnavailable, label, "loss=%v", loss)
		assert.NotEmpty(t, label, "loss=%v", loss)
	}

	assert.Equal(t, core.LabelBest, th.Label(0))
	assert.Equal(t, core.LabelBest, th.Label(th.Best))
	assert.Equal(t, core.LabelExcellent, th.Label(th.Best+1e-9))
	assert.Equal(t, core.LabelExcellent, th.Label(th.Excellent))
	assert.Equal(t, core.LabelGood, th.Label(th.Good))
	assert.Equal(t, core.LabelInaccuracy, th.Label(th.Inaccuracy))
	assert.Equal(t, core.LabelMistake, th.Label(th.Mistake))
	assert.Equal(t, core.LabelBlunder, th.Label(th.Mistake+1e-9))
	assert.Equal(t, core.LabelBlunder, th.Label(1.0))
}

func TestThresholds_MonotonicOrdering(t *testing.T) {
	th := DefaultThresholds()
	assert.Less(t, th.Best, th.Excellent)
	assert.Less(t, th.Excellent, th.Good)
	assert.Less(t, th.Good, th.Inaccuracy)
	assert.Less(t, th.Inaccuracy, th.Mistake)
}

func TestClassify_ColorSymmetry(t *testing.T) {
	c := NewClassifier(DefaultThresholds(), nil)

	// The same swing, seen from each color, classifies identically.
	whiteIn := MoveInput{
		Before: evalPtr(cp(120)),  // white to move, +120 white
		After:  evalPtr(cp(-40)),  // black to move, -40 black = +40 white
		Mover:  core.White,
	}
	blackIn := MoveInput{
		Before: evalPtr(cp(120)),  // black to move, +120 black
		After:  evalPtr(cp(-40)),  // white to move, -40 white = +40 black
		Mover:  core.Black,
	}

	whiteRes := c.Classify(whiteIn)
	blackRes := c.Classify(blackIn)
	assert.Equal(t, whiteRes.Label, blackRes.Label)
	assert.InDelta(t, whiteRes.Loss, blackRes.Loss, 1e-12)
}

func TestClassify_LossGainExclusive(t *testing.T) {
	c := NewClassifier(DefaultThresholds(), nil)

	lossy := c.Classify(MoveInput{
		Before: evalPtr(cp(200)),
		After:  evalPtr(cp(0)), // opponent even = mover even, worse than +200
		Mover:  core.White,
	})
	assert.Greater(t, lossy.Loss, 0.0)
	assert.Zero(t, lossy.Gain)

	gainy := c.Classify(MoveInput{
		Before: evalPtr(cp(0)),
		After:  evalPtr(cp(-150)), // opponent -150 = mover +150
		Mover:  core.White,
	})
	assert.Greater(t, gainy.Gain, 0.0)
	assert.Zero(t, gainy.Loss)
	assert.Equal(t, core.LabelBest, gainy.Label)
}

func TestClassify_MissingEvalIsUnavailable(t *testing.T) {
	c := NewDefaultClassifier()

	res := c.Classify(MoveInput{Before: nil, After: evalPtr(cp(0)), Mover: core.White})
	assert.Equal(t, core.LabelUnavailable, res.Label)
	assert.Equal(t, core.TagNone, res.Tag)

	res = c.Classify(MoveInput{Before: evalPtr(cp(0)), After: nil, Mover: core.White})
	assert.Equal(t, core.LabelUnavailable, res.Label)
}

func TestClassify_BigSwingIsBlunder(t *testing.T) {
	// +500 for the mover before, -500 after (reported for the opponent as
	// +500). This is the classic hung-queen shape.
	c := NewDefaultClassifier()
	res := c.Classify(MoveInput{
		Before: evalPtr(cp(500)),
		After:  evalPtr(cp(500)), // opponent's POV: +500 them = -500 mover
		Mover:  core.White,
	})
	require.Equal(t, core.LabelBlunder, res.Label)
	assert.Greater(t, res.Loss, 0.5)
}

func TestClassify_MateToMateIsBest(t *testing.T) {
	// Mate in 3 before, mate in 2 after the move: 1.0 → 1.0, zero loss.
	c := NewDefaultClassifier()
	res := c.Classify(MoveInput{
		Before:     evalPtr(mate(3)),
		After:      evalPtr(mate(-2)), // opponent gets mated in 2
		Mover:      core.White,
		PlayedBest: true,
	})
	assert.Equal(t, core.LabelBest, res.Label)
	assert.Equal(t, 1.0, res.PointsBefore)
	assert.Equal(t, 1.0, res.PointsAfter)
	assert.Zero(t, res.Loss)
}

func evalPtr(ev core.Evaluation) *core.Evaluation {
	return &ev
}
