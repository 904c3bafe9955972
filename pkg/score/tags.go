package score

// TagContext is the input to the special-tag predicates. All points values
// are in the mover's frame.
type TagContext struct {
	Loss          float64
	Gain          float64
	PointsBest    float64
	PointsAfter   float64
	PlayedBest    bool
	MaterialSwing int
	PrevLoss      float64
	MateMissed    bool
}

// TagPolicy decides the special tags. Each predicate is independent; the
// classifier applies them in priority order Brilliant, Great, Miss.
type TagPolicy interface {
	Brilliant(TagContext) bool
	Great(TagContext) bool
	Miss(TagContext) bool
}

// ThresholdTagPolicy is a TagPolicy driven by plain threshold constants.
type ThresholdTagPolicy struct {
	// SacrificePawns is the minimum material, in pawns, the mover must give
	// up for a best move to count as brilliant.
	SacrificePawns int `yaml:"sacrifice_pawns"`

	// BrilliantWinningCap excludes brilliancies in positions that were
	// already decided; the best-line points must be below it.
	BrilliantWinningCap float64 `yaml:"brilliant_winning_cap"`

	// BrilliantFloor is the minimum points after the move; a sacrifice that
	// simply loses is not brilliant.
	BrilliantFloor float64 `yaml:"brilliant_floor"`

	// GreatSwing is the minimum loss on the opponent's previous move for
	// the punishing best move to count as great.
	GreatSwing float64 `yaml:"great_swing"`

	// MissAdvantage is the minimum best-line points for a squandered
	// position to count as a miss.
	MissAdvantage float64 `yaml:"miss_advantage"`

	// MissLoss is the minimum loss for a miss.
	MissLoss float64 `yaml:"miss_loss"`
}

// DefaultTagPolicy returns the standard tag thresholds.
func DefaultTagPolicy() *ThresholdTagPolicy {
	return &ThresholdTagPolicy{
		SacrificePawns:      2,
		BrilliantWinningCap: 0.95,
		BrilliantFloor:      0.40,
		GreatSwing:          0.10,
		MissAdvantage:       0.85,
		MissLoss:            0.10,
	}
}

// Brilliant marks a best move that knowingly gives up material in a
// position that was not already won, without losing the game.
func (p *ThresholdTagPolicy) Brilliant(c TagContext) bool {
	return c.PlayedBest &&
		c.MaterialSwing <= -p.SacrificePawns &&
		c.PointsBest < p.BrilliantWinningCap &&
		c.PointsAfter >= p.BrilliantFloor
}

// Great marks the best move played right after the opponent slipped: the
// punishment had to be found.
func (p *ThresholdTagPolicy) Great(c TagContext) bool {
	return c.PlayedBest && c.PrevLoss >= p.GreatSwing
}

// Miss marks a move that let a winning chance go: the best line was
// decisive (or forced mate) and the played move surrendered a real share of
// it.
func (p *ThresholdTagPolicy) Miss(c TagContext) bool {
	if c.Loss < p.MissLoss {
		return false
	}
	return c.MateMissed || c.PointsBest >= p.MissAdvantage
}
