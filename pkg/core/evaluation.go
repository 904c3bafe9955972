package core

// ScoreType distinguishes the two mutually exclusive engine score kinds.
type ScoreType string

const (
	ScoreCentipawn ScoreType = "cp"
	ScoreMate      ScoreType = "mate"
)

// Evaluation is one raw engine verdict for a position. Value is signed from
// the side-to-move's perspective: centipawns for ScoreCentipawn, moves until
// mate for ScoreMate (negative means the side to move gets mated).
type Evaluation struct {
	Type     ScoreType `json:"type"`
	Value    int       `json:"value"`
	BestMove string    `json:"best_move"`
	PV       []string  `json:"pv,omitempty"`
	Depth    int       `json:"depth"`
}

// IsMate reports whether the evaluation is a forced-mate score.
func (e Evaluation) IsMate() bool {
	return e.Type == ScoreMate
}

// ForSide returns the evaluation value re-signed for the given side.
// pov is the side the raw value already speaks for (the side to move in the
// evaluated position). Turn alternation is a sign flip in this frame.
func (e Evaluation) ForSide(judged, pov Side) int {
	if judged == pov {
		return e.Value
	}
	return -e.Value
}
