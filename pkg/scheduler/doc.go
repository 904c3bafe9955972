// Package scheduler runs analysis jobs on a fixed pool of worker slots.
// The pool size is the concurrency budget handed in by the caller; the
// scheduler's one hard promise is that it never has more engine sessions
// alive than that budget, under any submission burst. Admission is
// synchronous, ordering is plain FIFO, and at most one job is active per
// game id at any time.
package scheduler
