// Package replay deterministically re-plays a game's move list into the
// sequence of positions the engine will evaluate. A move list that cannot
// be played legally is reported as a data problem, distinct from any
// engine failure.
package replay
