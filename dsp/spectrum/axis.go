package spectrum

import (
	"fmt"
	"math"
)

// BinFrequency returns the center frequency in Hz of FFT bin k.
func BinFrequency(k, fftSize int, sampleRate float64) float64 {
	return float64(k) * sampleRate / float64(fftSize)
}

// BinWidth returns the spacing between adjacent FFT bins in Hz.
func BinWidth(fftSize int, sampleRate float64) float64 {
	return sampleRate / float64(fftSize)
}

// NearestBin returns the FFT bin whose center is closest to freqHz.
func NearestBin(freqHz float64, fftSize int, sampleRate float64) int {
	return int(math.Round(freqHz / BinWidth(fftSize, sampleRate)))
}

// BinCount returns how many one-sided FFT bins cover 0..maxFreqHz inclusive.
//
// maxFreqHz is rounded to the nearest bin and capped at Nyquist.
func BinCount(maxFreqHz float64, fftSize int, sampleRate float64) (int, error) {
	if fftSize <= 0 || sampleRate <= 0 {
		return 0, fmt.Errorf("spectrum: invalid fft size %d or sample rate %v", fftSize, sampleRate)
	}
	if maxFreqHz <= 0 || math.IsNaN(maxFreqHz) {
		return 0, fmt.Errorf("spectrum: max frequency must be > 0: %v", maxFreqHz)
	}

	n := NearestBin(maxFreqHz, fftSize, sampleRate) + 1
	if limit := fftSize/2 + 1; n > limit {
		n = limit
	}

	return n, nil
}

// Axis returns n evenly spaced frequencies from 0 to maxFreqHz inclusive.
func Axis(n int, maxFreqHz float64) []float64 {
	if n <= 0 {
		return nil
	}

	out := make([]float64, n)
	if n == 1 {
		return out
	}

	step := maxFreqHz / float64(n-1)
	for i := range out {
		out[i] = float64(i) * step
	}

	return out
}
