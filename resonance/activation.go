package resonance

import (
	"fmt"
	"strings"
)

// Activation is the output range of the predictor's final layer.
type Activation int

const (
	// Unipolar outputs lie in [0, 1].
	Unipolar Activation = iota
	// Bipolar outputs lie in [-1, 1].
	Bipolar
	// NonNegative outputs lie in [0, inf).
	NonNegative
	// Linear outputs are unbounded.
	Linear
)

// ParseActivation resolves an activation name. Layer names commonly used for
// each range are accepted as aliases.
func ParseActivation(name string) (Activation, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "unipolar", "sigmoid":
		return Unipolar, nil
	case "bipolar", "tanh":
		return Bipolar, nil
	case "nonnegative", "non-negative", "relu", "softplus":
		return NonNegative, nil
	case "linear", "none", "identity":
		return Linear, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownActivation, name)
	}
}

func (a Activation) String() string {
	switch a {
	case Unipolar:
		return "unipolar"
	case Bipolar:
		return "bipolar"
	case NonNegative:
		return "nonnegative"
	case Linear:
		return "linear"
	default:
		return fmt.Sprintf("Activation(%d)", int(a))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (a Activation) MarshalText() ([]byte, error) {
	switch a {
	case Unipolar, Bipolar, NonNegative, Linear:
		return []byte(a.String()), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownActivation, int(a))
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Activation) UnmarshalText(text []byte) error {
	v, err := ParseActivation(string(text))
	if err != nil {
		return err
	}
	*a = v
	return nil
}
