package resonance

import (
	"errors"
	"math"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/cwbudde/algo-formant/internal/testutil"
)

func newTestSynth(t *testing.T, opts ...SynthOption) *Synthesizer {
	t.Helper()
	s, err := NewSynthesizer(257, 8000, opts...)
	if err != nil {
		t.Fatalf("NewSynthesizer() error = %v", err)
	}
	return s
}

func TestResonanceMagnitudeProperties(t *testing.T) {
	for _, F := range []float64{200, 700, 2500} {
		for _, B := range []float64{40, 120, 600} {
			if got := ResonanceMagnitude(0, F, B); math.Abs(got-1) > 1e-12 {
				t.Fatalf("h(0; %v, %v) = %v, want 1", F, B, got)
			}
			for _, f := range []float64{15, 300, 1234.5, 7000} {
				a := ResonanceMagnitude(f, F, B)
				b := ResonanceMagnitude(-f, F, B)
				if a != b {
					t.Fatalf("h(%v) = %v, h(-%v) = %v", f, a, f, b)
				}
			}
		}
	}
}

func TestResonanceMagnitudePeaksNearCenter(t *testing.T) {
	s := newTestSynth(t)
	curve := s.Curve(nil, 1000, 50)

	best := 0
	for k := range curve {
		if curve[k] > curve[best] {
			best = k
		}
	}
	axis := s.Axis()
	if math.Abs(axis[best]-1000) > 2*8000.0/256 {
		t.Fatalf("peak at %v Hz, want near 1000", axis[best])
	}
}

func TestPeakDBMatchesCurve(t *testing.T) {
	F, B, A, floor := 1500.0, 90.0, -6.0, 1e-5
	want := 20 * math.Log10(floor+math.Pow(10, A/20)*ResonanceMagnitude(F, F, B))
	if got := PeakDB(F, B, A, floor); math.Abs(got-want) > 1e-9 {
		t.Fatalf("PeakDB = %v, want %v", got, want)
	}
}

func TestEnvelopePoleOnlyEqualsPoleSum(t *testing.T) {
	s := newTestSynth(t)
	layout := Layout{Poles: 3}
	set := Set{
		Frequencies: []float64{500, 1500, 2500},
		Bandwidths:  []float64{80, 120, 200},
		Amplitudes:  []float64{0, -6, -12},
	}

	env, err := s.Envelope(nil, set, layout)
	if err != nil {
		t.Fatalf("Envelope() error = %v", err)
	}

	want := make([]float64, s.Bins())
	for i := range layout.Poles {
		g := math.Pow(10, set.Amplitudes[i]/20)
		for k, f := range s.Axis() {
			want[k] += g * ResonanceMagnitude(f, set.Frequencies[i], set.Bandwidths[i])
		}
	}
	testutil.RequireSliceNearlyEqual(t, env, want, 1e-12)

	poles, err := s.PoleSum(nil, set, layout)
	if err != nil {
		t.Fatalf("PoleSum() error = %v", err)
	}
	for k := range env {
		if env[k] != poles[k] {
			t.Fatalf("Envelope[%d] = %v, PoleSum = %v", k, env[k], poles[k])
		}
	}
}

func TestEnvelopeZeroCarvesNotch(t *testing.T) {
	s := newTestSynth(t)
	poleOnly := Set{
		Frequencies: []float64{500, 2000},
		Bandwidths:  []float64{100, 100},
		Amplitudes:  []float64{0, 0},
	}
	withZero := Set{
		Frequencies: []float64{500, 2000, 1200},
		Bandwidths:  []float64{100, 100, 80},
		Amplitudes:  []float64{0, 0},
	}

	a, err := s.Envelope(nil, poleOnly, Layout{Poles: 2})
	if err != nil {
		t.Fatalf("Envelope() error = %v", err)
	}
	b, err := s.Envelope(nil, withZero, Layout{Poles: 2, Zeros: 1})
	if err != nil {
		t.Fatalf("Envelope() error = %v", err)
	}

	k := 1200 * (s.Bins() - 1) / 8000
	if !(b[k] < a[k]/10) {
		t.Fatalf("zero did not carve a notch: %v vs %v", b[k], a[k])
	}
	if math.Abs(b[0]-a[0]) > 1e-12 {
		t.Fatalf("zero changed DC: %v vs %v", b[0], a[0])
	}
}

func TestEnvelopeShapeMismatch(t *testing.T) {
	s := newTestSynth(t)
	set := Set{Frequencies: []float64{500}, Bandwidths: []float64{80}, Amplitudes: []float64{0}}
	if _, err := s.Envelope(nil, set, Layout{Poles: 2}); !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("Envelope() error = %v, want ErrShapeMismatch", err)
	}
}

func TestCurveWarnsOnTinyBandwidth(t *testing.T) {
	logger, hook := test.NewNullLogger()
	s := newTestSynth(t, WithLogger(logger))

	curve := s.Curve(nil, 1000, 0)
	if len(curve) != s.Bins() {
		t.Fatalf("len = %d, want %d", len(curve), s.Bins())
	}

	entries := hook.AllEntries()
	if len(entries) != 1 {
		t.Fatalf("got %d log entries, want 1", len(entries))
	}
	if entries[0].Level != logrus.WarnLevel || entries[0].Data["warning"] != "numeric_instability" {
		t.Fatalf("unexpected entry: %v %v", entries[0].Level, entries[0].Data)
	}

	hook.Reset()
	s.Curve(curve, 1000, 50)
	if len(hook.AllEntries()) != 0 {
		t.Fatal("unexpected warning for normal bandwidth")
	}
}

func TestNewSynthesizerValidation(t *testing.T) {
	if _, err := NewSynthesizer(1, 8000); err == nil {
		t.Fatal("expected error for 1 bin")
	}
	if _, err := NewSynthesizer(10, 0); err == nil {
		t.Fatal("expected error for zero max frequency")
	}
	s, err := NewSynthesizer(5, 8000)
	if err != nil {
		t.Fatalf("NewSynthesizer() error = %v", err)
	}
	axis := s.Axis()
	if axis[0] != 0 || axis[4] != 8000 || axis[1] != 2000 {
		t.Fatalf("axis = %v", axis)
	}
}
