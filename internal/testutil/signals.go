package testutil

import (
	"math"
	"math/rand"
)

// DeterministicSine generates a deterministic sine wave.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// DeterministicNoise generates white noise with a fixed seed for reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// Impulse generates a unit impulse at the given position.
func Impulse(length, pos int) []float64 {
	out := make([]float64, length)
	if pos >= 0 && pos < length {
		out[pos] = 1
	}
	return out
}

// Resonator is a Klatt-style second-order digital resonator:
//
//	y[n] = A*x[n] + B*y[n-1] + C*y[n-2]
//
// with unity gain at DC.
type Resonator struct {
	a, b, c float64
	y1, y2  float64
}

// NewResonator returns a resonator centered at freqHz with bandwidth bwHz.
func NewResonator(freqHz, bwHz, sampleRate float64) *Resonator {
	t := 1 / sampleRate
	r := math.Exp(-math.Pi * bwHz * t)
	c := -r * r
	b := 2 * r * math.Cos(2*math.Pi*freqHz*t)
	return &Resonator{a: 1 - b - c, b: b, c: c}
}

// Process filters one sample.
func (r *Resonator) Process(x float64) float64 {
	y := r.a*x + r.b*r.y1 + r.c*r.y2
	r.y2 = r.y1
	r.y1 = y
	return y
}

// ResonantPulseTrain generates an impulse train at f0Hz shaped by a single
// resonance at formantHz with bandwidth bwHz.
func ResonantPulseTrain(f0Hz, formantHz, bwHz, sampleRate float64, length int) []float64 {
	period := int(math.Round(sampleRate / f0Hz))
	if period < 1 {
		period = 1
	}

	res := NewResonator(formantHz, bwHz, sampleRate)
	out := make([]float64, length)
	for i := range out {
		var x float64
		if i%period == 0 {
			x = 1
		}
		out[i] = res.Process(x)
	}

	return out
}
