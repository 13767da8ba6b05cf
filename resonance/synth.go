package resonance

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-vecmath"
	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-formant/dsp/core"
	"github.com/cwbudde/algo-formant/dsp/spectrum"
)

// MinBandwidth is the bandwidth in Hz at or below which synthesis logs a
// numeric instability warning. Curves are still computed.
const MinBandwidth = 1e-3

// ResonanceMagnitude returns the magnitude at frequency f of a two-pole resonance
// with center F and bandwidth B (all in Hz):
//
//	h(f) = (F^2 + B^2/4) / sqrt(((f-F)^2 + B^2/4) * ((f+F)^2 + B^2/4))
//
// h(0) = 1 and h(f) = h(-f).
func ResonanceMagnitude(f, F, B float64) float64 {
	q := B * B / 4
	lo := f - F
	hi := f + F
	return (F*F + q) / math.Sqrt((lo*lo+q)*(hi*hi+q))
}

// PeakDB returns the level in dB a pole contributes at its own center
// frequency, 20*log10(floor + g*h(F)) with g = 10^(ampDB/20), using the
// closed form h(F) = (F^2 + B^2/4) / sqrt(4*(B^2/4)*F^2 + (B^2/4)^2).
func PeakDB(F, B, ampDB, floor float64) float64 {
	q := B * B / 4
	h := (F*F + q) / math.Sqrt(4*q*F*F+q*q)
	return core.FlooredDB(core.DBToLinear(ampDB)*h, floor)
}

// SynthOption configures a Synthesizer.
type SynthOption func(*Synthesizer)

// WithLogger sets the logger for numeric instability warnings.
func WithLogger(l logrus.FieldLogger) SynthOption {
	return func(s *Synthesizer) {
		if l != nil {
			s.log = l
		}
	}
}

// Synthesizer evaluates resonance sets on a fixed frequency axis. It holds no
// mutable state and is safe for concurrent use.
type Synthesizer struct {
	axis    []float64
	maxFreq float64
	log     logrus.FieldLogger
}

// NewSynthesizer creates a synthesizer whose axis has bins points evenly
// spaced from 0 to maxFreq Hz.
func NewSynthesizer(bins int, maxFreq float64, opts ...SynthOption) (*Synthesizer, error) {
	if bins < 2 {
		return nil, fmt.Errorf("resonance: synthesizer needs at least 2 bins: %d", bins)
	}
	if maxFreq <= 0 || !core.IsFinite(maxFreq) {
		return nil, fmt.Errorf("resonance: max frequency must be > 0: %v", maxFreq)
	}

	s := &Synthesizer{
		axis:    spectrum.Axis(bins, maxFreq),
		maxFreq: maxFreq,
		log:     logrus.StandardLogger(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Bins returns the number of axis points.
func (s *Synthesizer) Bins() int { return len(s.axis) }

// MaxFrequency returns the last axis frequency in Hz.
func (s *Synthesizer) MaxFrequency() float64 { return s.maxFreq }

// Axis returns a copy of the frequency axis.
func (s *Synthesizer) Axis() []float64 {
	return append([]float64(nil), s.axis...)
}

// Curve writes the magnitude of one resonance at every axis point into dst,
// reusing its capacity, and returns it.
func (s *Synthesizer) Curve(dst []float64, F, B float64) []float64 {
	if B <= MinBandwidth {
		s.log.WithFields(logrus.Fields{
			"warning":   "numeric_instability",
			"frequency": F,
			"bandwidth": B,
		}).Warn("resonance bandwidth near zero")
	}

	dst = core.EnsureLen(dst, len(s.axis))
	for k, f := range s.axis {
		dst[k] = ResonanceMagnitude(f, F, B)
	}
	return dst
}

// PoleSum returns sum_i 10^(A_i/20) * h_i over the poles of set.
func (s *Synthesizer) PoleSum(dst []float64, set Set, layout Layout) ([]float64, error) {
	if err := set.Check(layout); err != nil {
		return nil, err
	}

	dst = core.EnsureLen(dst, len(s.axis))
	core.Fill(dst, 0)

	var curve []float64
	for i := range layout.Poles {
		curve = s.Curve(curve, set.Frequencies[i], set.Bandwidths[i])
		vecmath.ScaleBlockInPlace(curve, core.DBToLinear(set.Amplitudes[i]))
		vecmath.AddBlockInPlace(dst, curve)
	}
	return dst, nil
}

// ZeroProduct returns prod_j 1/h_j over the zeros of set; all ones when the
// layout has no zeros.
func (s *Synthesizer) ZeroProduct(dst []float64, set Set, layout Layout) ([]float64, error) {
	if err := set.Check(layout); err != nil {
		return nil, err
	}

	dst = core.EnsureLen(dst, len(s.axis))
	core.Fill(dst, 1)

	var curve []float64
	for j := layout.Poles; j < layout.Sum(); j++ {
		curve = s.Curve(curve, set.Frequencies[j], set.Bandwidths[j])
		core.Reciprocal(curve, curve)
		vecmath.MulBlockInPlace(dst, curve)
	}
	return dst, nil
}

// Envelope returns the linear magnitude envelope of set: the pole sum, times
// the zero product when the layout has zeros.
func (s *Synthesizer) Envelope(dst []float64, set Set, layout Layout) ([]float64, error) {
	dst, err := s.PoleSum(dst, set, layout)
	if err != nil {
		return nil, err
	}
	if layout.Zeros == 0 {
		return dst, nil
	}

	zeros, err := s.ZeroProduct(nil, set, layout)
	if err != nil {
		return nil, err
	}
	vecmath.MulBlockInPlace(dst, zeros)
	return dst, nil
}
