// Package engine owns the external chess engine process behind a narrow
// open/set-position/evaluate/close interface. The engine is an opaque UCI
// collaborator: this package speaks the protocol, enforces time bounds,
// and guarantees the process is reaped on every exit path.
//
// The Opener/Session split exists so tests can substitute a scripted
// engine (see the enginetest subpackage) and exercise the whole analysis
// pipeline without spawning a process.
package engine
