package security

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Hard limits. The concurrency budget itself is computed upstream; these
// only bound obviously broken inputs.
const (
	// MaxThreads is the hard limit for engine search threads per session.
	MaxThreads = 512

	// MaxHashMB is the hard limit for the engine hash table size.
	MaxHashMB = 1 << 20

	// MaxDepth is the hard limit for search depth.
	MaxDepth = 245

	// MaxMoveTime is the hard limit for the per-move time budget.
	MaxMoveTime = 10 * time.Minute

	// MaxSlots is the hard limit for scheduler worker slots.
	MaxSlots = 1024

	// MaxErrorMessageLength is the maximum length for stored error messages.
	MaxErrorMessageLength = 4096
)

// ClampThreads ensures a thread count is within limits.
func ClampThreads(n int) int {
	return clampInt(n, 1, MaxThreads)
}

// ClampHashMB ensures a hash size is within limits.
func ClampHashMB(n int) int {
	return clampInt(n, 1, MaxHashMB)
}

// ClampDepth ensures a search depth is within limits.
func ClampDepth(n int) int {
	return clampInt(n, 1, MaxDepth)
}

// ClampMoveTime ensures a per-move time budget is within limits.
func ClampMoveTime(d time.Duration) time.Duration {
	if d < time.Millisecond {
		return time.Millisecond
	}
	if d > MaxMoveTime {
		return MaxMoveTime
	}
	return d
}

// ClampSlots ensures a worker slot count is within limits.
func ClampSlots(n int) int {
	return clampInt(n, 1, MaxSlots)
}

func clampInt(n, min, max int) int {
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}

// SanitizeErrorMessage truncates and sanitizes error messages for storage.
func SanitizeErrorMessage(msg string) string {
	if msg == "" {
		return ""
	}

	// Remove any null bytes or control characters (except newlines)
	var sanitized strings.Builder
	sanitized.Grow(len(msg))

	for _, r := range msg {
		if r == '\n' || r == '\r' || r == '\t' || (r >= 32 && r != 127) {
			sanitized.WriteRune(r)
		}
	}

	result := sanitized.String()

	// Truncate if too long
	if utf8.RuneCountInString(result) > MaxErrorMessageLength {
		runes := []rune(result)
		result = string(runes[:MaxErrorMessageLength-3]) + "..."
	}

	return result
}
