// Package track turns raw per-frame predictor output for one utterance into
// a formant track and serializes it as text.
//
// The predictor's output channels are exchangeable, so formant identity is
// recovered after the fact: pole channels are ordered by their mean frequency
// over the utterance and zero channels by their mean absolute frequency.
// Zero frequencies are written negated with a placeholder amplitude of 1.0.
//
// One output line per frame:
//
//	<id> <time_ms> <Nsum> <p_1> ... <p_{3*Nsum}> \n
//
// with time_ms formatted %.1f, parameters %.2f and a trailing space.
package track
