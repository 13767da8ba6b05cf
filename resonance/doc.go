// Package resonance models the vocal-tract filter as a set of formants
// (poles) and antiformants (zeros).
//
// A predictor emits one raw vector per frame laid out as
//
//	[freq_1 .. freq_{Np+Nz}, bw_1 .. bw_{Np+Nz}, amp_1 .. amp_{Np}]
//
// [Rescaler] maps that vector to physical units according to the
// predictor's output [Activation]. [Synthesizer] turns a [Set] of resonances
// into a linear magnitude envelope: the sum of the pole curves, each scaled by
// its gain, multiplied by the reciprocal curves of the zeros.
package resonance
