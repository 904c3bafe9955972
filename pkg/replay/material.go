package replay

import (
	"fmt"

	"github.com/notnil/chess"

	"github.com/mkarras/chess-analysis/pkg/core"
)

// Conventional piece values in pawns.
var pieceValues = map[chess.PieceType]int{
	chess.Pawn:   1,
	chess.Knight: 3,
	chess.Bishop: 3,
	chess.Rook:   5,
	chess.Queen:  9,
}

// MaterialBalance returns the given side's material minus the opponent's,
// in pawns, for a FEN position.
func MaterialBalance(fen string, side core.Side) (int, error) {
	opt, err := chess.FEN(fen)
	if err != nil {
		return 0, fmt.Errorf("replay: bad fen %q: %w", fen, err)
	}
	board := chess.NewGame(opt).Position().Board()

	balance := 0
	for _, piece := range board.SquareMap() {
		v := pieceValues[piece.Type()]
		if sideOf(piece.Color()) == side {
			balance += v
		} else {
			balance -= v
		}
	}
	return balance, nil
}

// ApplyUCI plays a single UCI move on a FEN position and returns the
// resulting FEN. Used to probe the engine's principal variation (the
// opponent's best reply) for material accounting.
func ApplyUCI(fen, uci string) (string, error) {
	opt, err := chess.FEN(fen)
	if err != nil {
		return "", fmt.Errorf("replay: bad fen %q: %w", fen, err)
	}
	game := chess.NewGame(opt)

	move, err := chess.UCINotation{}.Decode(game.Position(), uci)
	if err != nil {
		return "", fmt.Errorf("replay: bad pv move %q: %w", uci, err)
	}
	if err := game.Move(move); err != nil {
		return "", fmt.Errorf("replay: illegal pv move %q: %w", uci, err)
	}
	return game.Position().String(), nil
}
