package track

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-formant/resonance"
)

func linearConfig(layout resonance.Layout) Config {
	return Config{
		Layout:     layout,
		Activation: resonance.Linear,
		Bounds:     resonance.DefaultBounds(),
		Floor:      1e-5,
		StrideMs:   10,
	}
}

func newTestProcessor(t *testing.T, cfg Config) *Processor {
	t.Helper()
	p, err := NewProcessor(cfg)
	if err != nil {
		t.Fatalf("NewProcessor() error = %v", err)
	}
	return p
}

func TestProcessOrdersPolesByMeanFrequency(t *testing.T) {
	// Channel 0 averages 1200 Hz, channel 1 averages 300 Hz.
	raw := [][]float64{
		{1100, 290, 90, 50, -3, -1},
		{1200, 300, 100, 60, -4, -2},
		{1300, 310, 110, 70, -5, -3},
	}

	for _, freqFirst := range []bool{false, true} {
		cfg := linearConfig(resonance.Layout{Poles: 2})
		cfg.FrequenciesFirst = freqFirst
		tr, err := newTestProcessor(t, cfg).Process("utt", raw)
		if err != nil {
			t.Fatalf("Process() error = %v", err)
		}

		for i, frame := range tr.Frames {
			var f1, f2, b1, a1 float64
			if freqFirst {
				f1, f2, b1, a1 = frame[0], frame[1], frame[2], frame[4]
			} else {
				f1, f2, b1, a1 = frame[0], frame[3], frame[1], frame[2]
			}
			if f1 != raw[i][1] || f2 != raw[i][0] {
				t.Fatalf("freqFirst=%v frame %d: frequencies %v, %v", freqFirst, i, f1, f2)
			}
			if b1 != raw[i][3] || a1 != raw[i][5] {
				t.Fatalf("freqFirst=%v frame %d: first pole bw/amp %v/%v", freqFirst, i, b1, a1)
			}
		}
	}
}

func TestProcessZeroSignAndPlaceholder(t *testing.T) {
	// Poles at ~500 and ~1500, one zero at ~1000.
	raw := [][]float64{
		{500, 1500, 1000, 80, 90, 60, -2, -8},
		{520, 1480, 1050, 80, 90, 60, -2, -8},
		{510, 1490, 980, 80, 90, 60, -2, -8},
	}
	cfg := linearConfig(resonance.Layout{Poles: 2, Zeros: 1})
	cfg.SmoothPasses = 2

	tr, err := newTestProcessor(t, cfg).Process("utt", raw)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if tr.Resonances != 3 {
		t.Fatalf("Resonances = %d, want 3", tr.Resonances)
	}
	for i, frame := range tr.Frames {
		if len(frame) != 9 {
			t.Fatalf("frame %d has %d values", i, len(frame))
		}
		if frame[6] > 0 {
			t.Fatalf("frame %d zero frequency = %v, want <= 0", i, frame[6])
		}
		if frame[8] != 1.0 {
			t.Fatalf("frame %d zero amplitude = %v, want 1.0", i, frame[8])
		}
	}
}

func TestProcessZerosOrderedByAbsoluteMean(t *testing.T) {
	// Zero channel 2 averages -400 (|.| = 400), channel 3 averages 300.
	raw := [][]float64{
		{500, -400, 300, 80, 60, 70, 0},
		{500, -400, 300, 80, 60, 70, 0},
	}
	tr, err := newTestProcessor(t, linearConfig(resonance.Layout{Poles: 1, Zeros: 2})).Process("utt", raw)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	frame := tr.Frames[0]
	if frame[3] != -300 || frame[6] != 400 {
		t.Fatalf("zero frequencies = %v, %v, want -300, 400", frame[3], frame[6])
	}
}

func TestProcessRealAmplitudes(t *testing.T) {
	raw := [][]float64{{700, 100, -6}}
	cfg := linearConfig(resonance.Layout{Poles: 1})
	cfg.RealAmplitudes = true

	tr, err := newTestProcessor(t, cfg).Process("utt", raw)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	want := resonance.PeakDB(700, 100, -6, 1e-5)
	if got := tr.Frames[0][2]; math.Abs(got-want) > 1e-12 {
		t.Fatalf("amplitude = %v, want %v", got, want)
	}
	if want <= -6 {
		t.Fatalf("real amplitude %v should exceed the learned gain for a narrow peak", want)
	}
}

func TestProcessBinomialSmoothing(t *testing.T) {
	raw := [][]float64{{0, 100, 0}, {400, 100, 0}, {0, 100, 0}, {0, 100, 0}}
	cfg := linearConfig(resonance.Layout{Poles: 1})
	cfg.SmoothPasses = 1

	tr, err := newTestProcessor(t, cfg).Process("utt", raw)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	want := []float64{100, 200, 100, 0}
	for i, frame := range tr.Frames {
		if math.Abs(frame[0]-want[i]) > 1e-12 {
			t.Fatalf("frame %d frequency = %v, want %v", i, frame[0], want[i])
		}
		if frame[1] != 100 {
			t.Fatalf("frame %d bandwidth = %v, want 100", i, frame[1])
		}
	}
}

func TestProcessErrors(t *testing.T) {
	p := newTestProcessor(t, linearConfig(resonance.Layout{Poles: 2, Zeros: 1}))

	if _, err := p.Process("empty", nil); !errors.Is(err, ErrEmptyTrack) {
		t.Fatalf("empty error = %v, want ErrEmptyTrack", err)
	}
	if _, err := p.Process("short", [][]float64{{1, 2, 3}}); !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("width error = %v, want ErrShapeMismatch", err)
	}
}

func TestNewProcessorValidation(t *testing.T) {
	cfg := linearConfig(resonance.Layout{Poles: 1})
	cfg.StrideMs = 0
	if _, err := NewProcessor(cfg); err == nil {
		t.Fatal("expected error for zero stride")
	}

	cfg = linearConfig(resonance.Layout{Poles: 1})
	cfg.SmoothPasses = -1
	if _, err := NewProcessor(cfg); err == nil {
		t.Fatal("expected error for negative passes")
	}

	cfg = linearConfig(resonance.Layout{})
	if _, err := NewProcessor(cfg); err == nil {
		t.Fatal("expected error for empty layout")
	}
}
