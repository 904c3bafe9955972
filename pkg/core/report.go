package core

import "time"

// Label is the primary move-quality bucket. Labels form an ordered,
// gap-free partition of the expected-points loss axis; LabelUnavailable is
// reserved for moves whose evaluations could not be obtained.
type Label string

const (
	LabelBest        Label = "best"
	LabelExcellent   Label = "excellent"
	LabelGood        Label = "good"
	LabelInaccuracy  Label = "inaccuracy"
	LabelMistake     Label = "mistake"
	LabelBlunder     Label = "blunder"
	LabelUnavailable Label = "unavailable"
)

// Tag is an optional special annotation layered on top of the primary
// label. At most one tag is assigned per move.
type Tag string

const (
	TagNone      Tag = ""
	TagBrilliant Tag = "brilliant"
	TagGreat     Tag = "great"
	TagMiss      Tag = "miss"
)

// MoveRecord is the per-ply analysis artifact. All expected-points fields
// are in the mover's frame. Records are immutable once produced.
type MoveRecord struct {
	Ply          int         `json:"ply"`
	SAN          string      `json:"san"`
	UCI          string      `json:"uci"`
	Side         Side        `json:"side"`
	EvalBefore   *Evaluation `json:"eval_before,omitempty"`
	EvalAfter    *Evaluation `json:"eval_after,omitempty"`
	PointsBefore float64     `json:"points_before"`
	PointsAfter  float64     `json:"points_after"`
	Loss         float64     `json:"loss"`
	Gain         float64     `json:"gain"`
	Label        Label       `json:"label"`
	Tag          Tag         `json:"tag,omitempty"`
	PV           []string    `json:"pv,omitempty"`
}

// AnalysisReport is the complete analysis of one game. Moves is in game
// order and its length equals the game's move count; a report is only ever
// persisted in full.
type AnalysisReport struct {
	GameID    string       `json:"game_id"`
	Moves     []MoveRecord `json:"moves"`
	Settings  EngineConfig `json:"settings"`
	CreatedAt time.Time    `json:"created_at"`
}
