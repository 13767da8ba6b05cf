package spectrum

import (
	"fmt"

	algofft "github.com/cwbudde/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-formant/dsp/window"
)

// STFT computes one-sided magnitude spectra of fixed-length frames.
//
// Frames start at multiples of the hop size and are not padded at the end,
// so a signal of length L yields (L-FrameLen)/Hop + 1 frames. Each frame is
// windowed, zero-padded to FFTSize and transformed.
//
// An STFT holds scratch buffers and a plan; it is not safe for concurrent
// use. Use [STFT.Clone] to obtain one instance per goroutine.
type STFT struct {
	frameLen int
	hop      int
	fftSize  int
	winType  window.Type
	window   []float64
	winSum   float64

	plan *algofft.Plan[complex128]
	in   []complex128
	out  []complex128
	buf  []float64

	// re and im hold the one-sided spectrum split for vecmath.Magnitude.
	re []float64
	im []float64
}

// NewSTFT creates an STFT with a periodic analysis window.
func NewSTFT(frameLen, hop, fftSize int, winType window.Type) (*STFT, error) {
	if frameLen <= 0 {
		return nil, fmt.Errorf("spectrum: frame length must be > 0: %d", frameLen)
	}
	if hop <= 0 {
		return nil, fmt.Errorf("spectrum: hop size must be > 0: %d", hop)
	}
	if fftSize < frameLen {
		return nil, fmt.Errorf("spectrum: fft size %d smaller than frame length %d", fftSize, frameLen)
	}

	coeffs := window.Generate(winType, frameLen, window.WithPeriodic())
	sum, err := window.Sum(coeffs)
	if err != nil {
		return nil, fmt.Errorf("spectrum: %w", err)
	}

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("spectrum: fft plan: %w", err)
	}

	return &STFT{
		frameLen: frameLen,
		hop:      hop,
		fftSize:  fftSize,
		winType:  winType,
		window:   coeffs,
		winSum:   sum,
		plan:     plan,
		in:       make([]complex128, fftSize),
		out:      make([]complex128, fftSize),
		buf:      make([]float64, frameLen),
		re:       make([]float64, fftSize/2+1),
		im:       make([]float64, fftSize/2+1),
	}, nil
}

// Clone returns an independent STFT with the same configuration.
func (s *STFT) Clone() (*STFT, error) {
	return NewSTFT(s.frameLen, s.hop, s.fftSize, s.winType)
}

// Bins returns the number of one-sided bins, FFTSize/2 + 1.
func (s *STFT) Bins() int { return s.fftSize/2 + 1 }

// WindowSum returns the sum of the analysis window coefficients.
func (s *STFT) WindowSum() float64 { return s.winSum }

// Frames returns the number of complete frames in a signal of length n.
// It reads only the frame geometry and may be called concurrently.
func (s *STFT) Frames(n int) int {
	if n < s.frameLen {
		return 0
	}
	return (n-s.frameLen)/s.hop + 1
}

// MagnitudeFrame writes the magnitude spectrum of frame idx into dst.
// dst must hold at least Bins() values; only the first Bins() are written.
func (s *STFT) MagnitudeFrame(dst, signal []float64, idx int) error {
	start := idx * s.hop
	end := start + s.frameLen
	if idx < 0 || end > len(signal) {
		return fmt.Errorf("spectrum: frame %d out of range for %d samples", idx, len(signal))
	}
	if len(dst) < s.Bins() {
		return fmt.Errorf("spectrum: dst holds %d bins, need %d", len(dst), s.Bins())
	}

	if err := window.ApplyCoefficients(s.buf, signal[start:end], s.window); err != nil {
		return err
	}

	for i, v := range s.buf {
		s.in[i] = complex(v, 0)
	}
	for i := s.frameLen; i < s.fftSize; i++ {
		s.in[i] = 0
	}

	if err := s.plan.Forward(s.out, s.in); err != nil {
		return fmt.Errorf("spectrum: fft: %w", err)
	}

	for k := range s.re {
		s.re[k] = real(s.out[k])
		s.im[k] = imag(s.out[k])
	}
	vecmath.Magnitude(dst[:len(s.re)], s.re, s.im)
	return nil
}
