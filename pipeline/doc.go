// Package pipeline wires audio decoding, envelope extraction,
// normalization, an external predictor and track post-processing into
// batch jobs over many utterances.
//
// Utterances are independent: a failure is reported as an [UtteranceError]
// for that utterance and the rest of the batch continues.
package pipeline
