package replay

import (
	"fmt"

	"github.com/notnil/chess"

	"github.com/mkarras/chess-analysis/pkg/core"
)

// Ply is one half-move of the replayed game with the positions around it.
type Ply struct {
	Index     int
	Side      core.Side
	SAN       string
	UCI       string
	FENBefore string
	FENAfter  string
}

// Replay is the fully validated position sequence for a game.
type Replay struct {
	StartFEN string
	Plies    []Ply
}

// Walk replays ref's move list from its starting position. Moves are
// accepted in UCI or SAN notation. The first unplayable move aborts the
// walk with core.ErrIllegalMove wrapped in a ply-indexed error.
func Walk(ref core.GameRef) (*Replay, error) {
	game, err := newGame(ref.StartFEN)
	if err != nil {
		return nil, &core.PlyError{Ply: 0, Err: fmt.Errorf("%w: bad starting position %q: %v", core.ErrIllegalMove, ref.StartFEN, err)}
	}

	rep := &Replay{
		StartFEN: game.Position().String(),
		Plies:    make([]Ply, 0, len(ref.Moves)),
	}

	for i, raw := range ref.Moves {
		pos := game.Position()
		move, err := decodeMove(pos, raw)
		if err != nil {
			return nil, &core.PlyError{Ply: i, Err: fmt.Errorf("%w: %q: %v", core.ErrIllegalMove, raw, err)}
		}

		ply := Ply{
			Index:     i,
			Side:      sideOf(pos.Turn()),
			SAN:       chess.AlgebraicNotation{}.Encode(pos, move),
			UCI:       chess.UCINotation{}.Encode(pos, move),
			FENBefore: pos.String(),
		}

		if err := game.Move(move); err != nil {
			return nil, &core.PlyError{Ply: i, Err: fmt.Errorf("%w: %q: %v", core.ErrIllegalMove, raw, err)}
		}
		ply.FENAfter = game.Position().String()
		rep.Plies = append(rep.Plies, ply)
	}

	return rep, nil
}

func newGame(startFEN string) (*chess.Game, error) {
	if startFEN == "" {
		return chess.NewGame(), nil
	}
	opt, err := chess.FEN(startFEN)
	if err != nil {
		return nil, err
	}
	return chess.NewGame(opt), nil
}

// decodeMove accepts UCI first (the engine's own format), SAN second.
func decodeMove(pos *chess.Position, raw string) (*chess.Move, error) {
	if move, err := (chess.UCINotation{}).Decode(pos, raw); err == nil {
		return move, nil
	}
	move, err := chess.AlgebraicNotation{}.Decode(pos, raw)
	if err != nil {
		return nil, err
	}
	return move, nil
}

func sideOf(c chess.Color) core.Side {
	if c == chess.White {
		return core.White
	}
	return core.Black
}
