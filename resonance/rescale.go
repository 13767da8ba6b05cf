package resonance

import "fmt"

// Range is an inclusive physical range.
type Range struct {
	Min float64 `mapstructure:"min" yaml:"min"`
	Max float64 `mapstructure:"max" yaml:"max"`
}

// Bounds holds the physical range of each parameter group.
type Bounds struct {
	Frequency Range `mapstructure:"frequency" yaml:"frequency"`
	Bandwidth Range `mapstructure:"bandwidth" yaml:"bandwidth"`
	Amplitude Range `mapstructure:"amplitude" yaml:"amplitude"`
}

// DefaultBounds returns ranges suited to adult speech up to 8 kHz.
func DefaultBounds() Bounds {
	return Bounds{
		Frequency: Range{Min: 0, Max: 8000},
		Bandwidth: Range{Min: 20, Max: 1000},
		Amplitude: Range{Min: -60, Max: 20},
	}
}

// Rescaler maps raw predictor output to physical units.
//
// The same Rescaler value must serve both loss computation and tracking.
type Rescaler struct {
	layout     Layout
	activation Activation
	bounds     Bounds
}

// NewRescaler validates the layout and activation.
func NewRescaler(layout Layout, activation Activation, bounds Bounds) (Rescaler, error) {
	if err := layout.Validate(); err != nil {
		return Rescaler{}, err
	}
	if _, err := activation.MarshalText(); err != nil {
		return Rescaler{}, err
	}
	return Rescaler{layout: layout, activation: activation, bounds: bounds}, nil
}

// Layout returns the parameter layout.
func (r Rescaler) Layout() Layout { return r.layout }

// Activation returns the configured activation.
func (r Rescaler) Activation() Activation { return r.activation }

// Bounds returns the configured ranges.
func (r Rescaler) Bounds() Bounds { return r.bounds }

// Rescale converts one raw vector into a Set.
//
//	Unipolar:    min + raw*(max-min)
//	Bipolar:     min + (raw+1)*(max-min)/2
//	NonNegative: raw + min (max is not enforced)
//	Linear:      raw
func (r Rescaler) Rescale(raw []float64) (Set, error) {
	if len(raw) != r.layout.Width() {
		return Set{}, fmt.Errorf("%w: got %d parameters, want %d", ErrShapeMismatch, len(raw), r.layout.Width())
	}

	n := r.layout.Sum()
	set := Set{
		Frequencies: make([]float64, n),
		Bandwidths:  make([]float64, n),
		Amplitudes:  make([]float64, r.layout.Poles),
	}

	if err := r.apply(set.Frequencies, raw[:n], r.bounds.Frequency); err != nil {
		return Set{}, err
	}
	if err := r.apply(set.Bandwidths, raw[n:2*n], r.bounds.Bandwidth); err != nil {
		return Set{}, err
	}
	if err := r.apply(set.Amplitudes, raw[2*n:], r.bounds.Amplitude); err != nil {
		return Set{}, err
	}

	return set, nil
}

func (r Rescaler) apply(dst, raw []float64, rg Range) error {
	switch r.activation {
	case Unipolar:
		span := rg.Max - rg.Min
		for i, v := range raw {
			dst[i] = rg.Min + v*span
		}
	case Bipolar:
		half := (rg.Max - rg.Min) / 2
		for i, v := range raw {
			dst[i] = rg.Min + (v+1)*half
		}
	case NonNegative:
		for i, v := range raw {
			dst[i] = v + rg.Min
		}
	case Linear:
		copy(dst, raw)
	default:
		return fmt.Errorf("%w: %d", ErrUnknownActivation, int(r.activation))
	}
	return nil
}
