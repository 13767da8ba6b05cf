package resonance

import "fmt"

// Layout fixes the number of formants (Poles) and antiformants (Zeros).
type Layout struct {
	Poles int
	Zeros int
}

// Sum returns Poles + Zeros.
func (l Layout) Sum() int { return l.Poles + l.Zeros }

// Width returns the raw parameter count 3*Poles + 2*Zeros.
func (l Layout) Width() int { return 3*l.Poles + 2*l.Zeros }

// Validate rejects negative counts and empty layouts.
func (l Layout) Validate() error {
	if l.Poles < 0 || l.Zeros < 0 {
		return fmt.Errorf("resonance: negative resonance count: %d poles, %d zeros", l.Poles, l.Zeros)
	}
	if l.Sum() == 0 {
		return fmt.Errorf("resonance: layout has no resonances")
	}
	return nil
}

// Set holds resonances in physical units.
//
// Frequencies and Bandwidths hold Poles+Zeros values, poles first.
// Amplitudes holds one dB value per pole; zeros carry no amplitude.
type Set struct {
	Frequencies []float64
	Bandwidths  []float64
	Amplitudes  []float64
}

// Check reports whether s matches l.
func (s Set) Check(l Layout) error {
	if len(s.Frequencies) != l.Sum() || len(s.Bandwidths) != l.Sum() || len(s.Amplitudes) != l.Poles {
		return fmt.Errorf("%w: set has %d/%d/%d values, layout wants %d/%d/%d", ErrShapeMismatch,
			len(s.Frequencies), len(s.Bandwidths), len(s.Amplitudes), l.Sum(), l.Sum(), l.Poles)
	}
	return nil
}
