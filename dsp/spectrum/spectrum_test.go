package spectrum

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-formant/dsp/window"
	"github.com/cwbudde/algo-formant/internal/testutil"
)

func TestBinCount(t *testing.T) {
	tests := []struct {
		maxFreq float64
		fft     int
		sr      float64
		want    int
	}{
		{8000, 512, 16000, 257},
		{5000, 512, 16000, 161},
		{20000, 512, 16000, 257},
		{4000, 1024, 8000, 513},
	}

	for _, tt := range tests {
		got, err := BinCount(tt.maxFreq, tt.fft, tt.sr)
		if err != nil {
			t.Fatalf("BinCount(%v, %d, %v): %v", tt.maxFreq, tt.fft, tt.sr, err)
		}
		if got != tt.want {
			t.Errorf("BinCount(%v, %d, %v) = %d, want %d", tt.maxFreq, tt.fft, tt.sr, got, tt.want)
		}
	}

	if _, err := BinCount(0, 512, 16000); err == nil {
		t.Fatal("expected error for zero max frequency")
	}
	if _, err := BinCount(100, 0, 16000); err == nil {
		t.Fatal("expected error for zero fft size")
	}
}

func TestAxis(t *testing.T) {
	ax := Axis(257, 8000)
	if ax[0] != 0 || ax[256] != 8000 {
		t.Fatalf("axis endpoints = %v, %v", ax[0], ax[256])
	}
	if math.Abs(ax[16]-500) > 1e-9 {
		t.Fatalf("ax[16] = %v, want 500", ax[16])
	}
	if Axis(0, 1) != nil {
		t.Fatal("Axis(0) should be nil")
	}
	if got := Axis(1, 100); len(got) != 1 || got[0] != 0 {
		t.Fatalf("Axis(1) = %v", got)
	}
}

func TestNearestBin(t *testing.T) {
	if got := NearestBin(500, 512, 16000); got != 16 {
		t.Fatalf("NearestBin(500) = %d, want 16", got)
	}
	if got := BinFrequency(16, 512, 16000); got != 500 {
		t.Fatalf("BinFrequency(16) = %v, want 500", got)
	}
}

func TestNewSTFTValidation(t *testing.T) {
	if _, err := NewSTFT(0, 1, 8, window.TypeHann); err == nil {
		t.Fatal("expected error for zero frame length")
	}
	if _, err := NewSTFT(8, 0, 8, window.TypeHann); err == nil {
		t.Fatal("expected error for zero hop")
	}
	if _, err := NewSTFT(16, 4, 8, window.TypeHann); err == nil {
		t.Fatal("expected error for fft smaller than frame")
	}
}

func TestSTFTFrames(t *testing.T) {
	s, err := NewSTFT(400, 160, 512, window.TypeHann)
	if err != nil {
		t.Fatalf("NewSTFT: %v", err)
	}

	tests := []struct{ n, want int }{
		{399, 0},
		{400, 1},
		{559, 1},
		{560, 2},
		{16000, 98},
	}
	for _, tt := range tests {
		if got := s.Frames(tt.n); got != tt.want {
			t.Errorf("Frames(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}

func TestSTFTSinePeak(t *testing.T) {
	const (
		sr   = 16000.0
		fft  = 512
		freq = 1000.0 // bin 32
	)

	s, err := NewSTFT(fft, 128, fft, window.TypeHann)
	if err != nil {
		t.Fatalf("NewSTFT: %v", err)
	}

	sig := testutil.DeterministicSine(freq, sr, 0.5, 4*fft)
	if n := s.Frames(len(sig)); n != 13 {
		t.Fatalf("Frames = %d, want 13", n)
	}
	mags := make([][]float64, s.Frames(len(sig)))
	for i := range mags {
		mags[i] = make([]float64, s.Bins())
		if err := s.MagnitudeFrame(mags[i], sig, i); err != nil {
			t.Fatalf("MagnitudeFrame(%d): %v", i, err)
		}
	}

	scale := 2 / s.WindowSum()
	for i, frame := range mags {
		peak := 0
		for k := range frame {
			if frame[k] > frame[peak] {
				peak = k
			}
		}
		if peak != 32 {
			t.Fatalf("frame %d: peak bin %d, want 32", i, peak)
		}
		// On-bin sinusoid with the 2/sum(w) correction reads back its amplitude.
		if amp := scale * frame[peak]; math.Abs(amp-0.5) > 1e-6 {
			t.Fatalf("frame %d: scaled peak %v, want 0.5", i, amp)
		}
	}
}

func TestSTFTZeroPaddedFrame(t *testing.T) {
	s, err := NewSTFT(400, 160, 512, window.TypeHann)
	if err != nil {
		t.Fatalf("NewSTFT: %v", err)
	}
	sig := testutil.DeterministicNoise(7, 1, 1200)

	a := make([]float64, s.Bins())
	if err := s.MagnitudeFrame(a, sig, 2); err != nil {
		t.Fatalf("MagnitudeFrame: %v", err)
	}
	testutil.RequireFinite(t, a)

	clone, err := s.Clone()
	if err != nil {
		t.Fatalf("Clone: %v", err)
	}
	b := make([]float64, s.Bins())
	if err := clone.MagnitudeFrame(b, sig, 2); err != nil {
		t.Fatalf("MagnitudeFrame: %v", err)
	}
	testutil.RequireSliceNearlyEqual(t, a, b, 0)

	if err := s.MagnitudeFrame(a, sig, 10); err == nil {
		t.Fatal("expected out-of-range error")
	}
	if err := s.MagnitudeFrame(a[:10], sig, 0); err == nil {
		t.Fatal("expected short dst error")
	}
}
