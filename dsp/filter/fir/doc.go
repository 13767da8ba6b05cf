// Package fir provides a direct-form FIR filter runtime.
//
// A [Filter] applies a set of coefficients to an input stream using a
// circular-buffer delay line. Speech analysis uses it for first-difference
// pre-emphasis, the two-tap filter [1, -alpha] built by [NewPreEmphasis].
package fir
