package envelope

import "errors"

// ErrInsufficientData reports an input shorter than one analysis window.
var ErrInsufficientData = errors.New("envelope: signal shorter than analysis window")
