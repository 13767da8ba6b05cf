package resonance

import "errors"

var (
	// ErrShapeMismatch reports a parameter vector or set whose size does not
	// match the configured layout.
	ErrShapeMismatch = errors.New("resonance: shape mismatch")
	// ErrUnknownActivation reports an activation outside the supported set.
	ErrUnknownActivation = errors.New("resonance: unknown activation")
)
