package engine

import (
	"strconv"
	"strings"

	"github.com/mkarras/chess-analysis/pkg/core"
)

// maxPVMoves is how much of the principal variation a report keeps.
const maxPVMoves = 5

// parseInfo folds one "info ..." line into ev, keeping the deepest values
// seen. Lines that carry neither a score nor a pv are ignored.
func parseInfo(line string, ev *core.Evaluation) {
	if !strings.HasPrefix(line, "info") {
		return
	}
	fields := strings.Fields(line)
	for i := 0; i < len(fields); i++ {
		switch fields[i] {
		case "depth":
			if i+1 < len(fields) {
				if d, err := strconv.Atoi(fields[i+1]); err == nil {
					ev.Depth = d
				}
			}
		case "score":
			if i+2 >= len(fields) {
				continue
			}
			v, err := strconv.Atoi(fields[i+2])
			if err != nil {
				continue
			}
			switch fields[i+1] {
			case "cp":
				ev.Type = core.ScoreCentipawn
				ev.Value = v
			case "mate":
				ev.Type = core.ScoreMate
				ev.Value = v
			}
			i += 2
		case "pv":
			pv := fields[i+1:]
			if len(pv) > maxPVMoves {
				pv = pv[:maxPVMoves]
			}
			ev.PV = append([]string(nil), pv...)
			return // pv is always the last token group
		}
	}
}

// parseBestMove reports whether line is the terminating "bestmove" line and
// returns the move. A "bestmove (none)" (mate or stalemate on the board)
// yields an empty move.
func parseBestMove(line string) (string, bool) {
	if !strings.HasPrefix(line, "bestmove") {
		return "", false
	}
	fields := strings.Fields(line)
	if len(fields) < 2 || fields[1] == "(none)" {
		return "", true
	}
	return fields[1], true
}

func containsToken(line, token string) bool {
	for _, f := range strings.Fields(line) {
		if f == token {
			return true
		}
	}
	return false
}
