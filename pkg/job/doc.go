// Package job runs the per-game analysis pipeline: replay the game into
// positions, drive an engine session across them in strict game order,
// translate and classify every move, and hand the completed report to the
// result store. A job either produces a full report or none at all.
package job
