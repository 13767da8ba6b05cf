// Package spectrum provides short-time spectral analysis utilities.
//
// [STFT] frames a signal, applies an analysis window and computes
// one-sided magnitude spectra with an algo-fft plan and the algo-vecmath
// magnitude kernel. The axis helpers map between FFT bins and frequencies
// in Hz.
package spectrum
