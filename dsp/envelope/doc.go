// Package envelope extracts smoothed log-magnitude spectral envelopes from
// speech.
//
// [Smooth] is the two-pass trough filter applied to each magnitude frame.
// [Extractor] runs pre-emphasis, centered framing, a Hann-windowed FFT, the
// 2/sum(window) amplitude correction, smoothing in the linear or dB domain
// and truncation to the configured number of bins.
package envelope
