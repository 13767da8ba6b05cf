package window

import (
	"errors"
	"fmt"
)

// ErrUnknownWindow reports a window name that Parse does not recognize.
var ErrUnknownWindow = errors.New("window: unknown window type")

var (
	errEmptyCoeffs      = errors.New("window: no coefficients")
	errZeroCoherentGain = errors.New("window: coefficients sum to zero")
	errMismatchedLength = errors.New("window: frame and coefficient lengths differ")
)

func unknownWindow(name string) error {
	return fmt.Errorf("%w: %q (want rectangular, hann, hamming or blackman)", ErrUnknownWindow, name)
}
