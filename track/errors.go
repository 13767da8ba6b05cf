package track

import (
	"errors"

	"github.com/cwbudde/algo-formant/resonance"
)

var (
	// ErrEmptyTrack reports an utterance with zero frames.
	ErrEmptyTrack = errors.New("track: utterance has no frames")
	// ErrShapeMismatch reports predictor output whose width differs from the
	// configured layout.
	ErrShapeMismatch = resonance.ErrShapeMismatch
	// ErrPathCollision reports two inputs that map to the same output path.
	ErrPathCollision = errors.New("track: output path collision")
	// ErrMalformed reports a track file that cannot be parsed.
	ErrMalformed = errors.New("track: malformed track file")
)
