package score

import (
	"math"

	"github.com/mkarras/chess-analysis/pkg/core"
)

const (
	// cpClamp bounds centipawn scores before the logistic transform so huge
	// material edges saturate instead of diverging.
	cpClamp = 1000

	// logisticScale tunes how fast centipawns translate to win likelihood.
	// ~100cp ≈ 0.60 expected points, ~400cp ≈ 0.83.
	logisticScale = 0.004
)

// ExpectedPoints maps an engine evaluation to a [0,1] win likelihood for
// the judged side. pov is the side the raw evaluation speaks for (the side
// to move in the evaluated position).
//
// Mate scores saturate exactly: any forced mate for the judged side is 1.0,
// any mate against it is 0.0, independent of distance.
func ExpectedPoints(ev core.Evaluation, judged, pov core.Side) float64 {
	v := ev.ForSide(judged, pov)
	if ev.IsMate() {
		// "mate 0" means the side to move is already checkmated.
		if ev.Value == 0 {
			if judged == pov {
				return 0
			}
			return 1
		}
		if v > 0 {
			return 1
		}
		return 0
	}
	return logistic(clampCP(v))
}

func clampCP(cp int) int {
	if cp > cpClamp {
		return cpClamp
	}
	if cp < -cpClamp {
		return -cpClamp
	}
	return cp
}

func logistic(cp int) float64 {
	return 1 / (1 + math.Exp(-logisticScale*float64(cp)))
}
