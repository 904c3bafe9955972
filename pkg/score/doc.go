// Package score converts raw engine evaluations into normalized
// expected-points values and classifies moves by the expected points they
// lose or gain relative to the engine's first choice.
//
// Everything in this package is pure: the same inputs always produce the
// same outputs, which is what lets the full pipeline be tested against a
// stub engine.
package score
