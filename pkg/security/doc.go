// Package security provides clamps and sanitization for values that cross
// into the analysis core from collaborators: engine configuration, slot
// counts, and error messages destined for storage.
package security
