package core

import "time"

// Side identifies a color, and doubles as the frame of reference for
// expected-points values.
type Side string

const (
	White Side = "white"
	Black Side = "black"
)

// Opponent returns the other side.
func (s Side) Opponent() Side {
	if s == White {
		return Black
	}
	return White
}

// GameRef is a read-only reference to a game owned by the import/storage
// collaborator. Moves are in game order, SAN or UCI notation. An empty
// StartFEN means the standard starting position.
type GameRef struct {
	ID       string
	StartFEN string
	Moves    []string
}

// EngineConfig holds the engine settings handed in by the settings
// collaborator. This core consumes it as given; it never validates the
// values against hardware.
type EngineConfig struct {
	BinPath  string
	Threads  int
	HashMB   int
	Depth    int
	MoveTime time.Duration
}
