// Package loss scores raw predictor output against observed spectral
// envelopes by resynthesizing the envelope from the predicted resonances.
package loss

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/cwbudde/algo-formant/dsp/core"
	"github.com/cwbudde/algo-formant/resonance"
)

var (
	// ErrShapeMismatch reports inconsistent batch, time, bin or parameter
	// dimensions.
	ErrShapeMismatch = resonance.ErrShapeMismatch
	// ErrNonFinite reports a NaN or infinity in an intermediate value.
	ErrNonFinite = errors.New("loss: non-finite value")
)

// Config holds the objective's constants.
type Config struct {
	// Floor is added to the linear envelope before taking 20*log10.
	Floor float64
	// DeltaFrequencyWeight scales the frequency smoothness term.
	DeltaFrequencyWeight float64
}

// DefaultConfig returns Floor 1e-5 and a frequency delta weight of 1e-4.
func DefaultConfig() Config {
	return Config{Floor: 1e-5, DeltaFrequencyWeight: 1e-4}
}

// Result holds the loss terms for one evaluation.
type Result struct {
	// Spectral is the mean squared dB error over all frames and bins.
	Spectral float64
	// FrequencyDelta is the mean absolute frame-to-frame change of all
	// rescaled frequencies.
	FrequencyDelta float64
	// Total is Spectral + DeltaFrequencyWeight*FrequencyDelta.
	Total float64
}

// Loss evaluates the synthesis objective. It is safe for concurrent use.
type Loss struct {
	rescaler resonance.Rescaler
	synth    *resonance.Synthesizer
	cfg      Config
}

// New creates a Loss. The rescaler must be the one used for tracking.
func New(rescaler resonance.Rescaler, synth *resonance.Synthesizer, cfg Config) (*Loss, error) {
	if synth == nil {
		return nil, fmt.Errorf("loss: synthesizer is nil")
	}
	if cfg.Floor <= 0 || !core.IsFinite(cfg.Floor) {
		return nil, fmt.Errorf("loss: floor must be > 0: %v", cfg.Floor)
	}
	if cfg.DeltaFrequencyWeight < 0 || !core.IsFinite(cfg.DeltaFrequencyWeight) {
		return nil, fmt.Errorf("loss: delta frequency weight must be >= 0: %v", cfg.DeltaFrequencyWeight)
	}
	return &Loss{rescaler: rescaler, synth: synth, cfg: cfg}, nil
}

// Compute evaluates a batch of target dB envelopes (batch x time x bins)
// against raw predictor output (batch x time x parameters). Batch and time
// are flattened before scoring, so the frequency delta also spans sequence
// boundaries.
func (l *Loss) Compute(target, raw [][][]float64) (Result, error) {
	if len(target) != len(raw) {
		return Result{}, fmt.Errorf("%w: batch %d vs %d", ErrShapeMismatch, len(target), len(raw))
	}

	var flatTarget, flatRaw [][]float64
	for b := range target {
		if len(target[b]) != len(raw[b]) {
			return Result{}, fmt.Errorf("%w: sequence %d has %d target frames and %d parameter frames",
				ErrShapeMismatch, b, len(target[b]), len(raw[b]))
		}
		flatTarget = append(flatTarget, target[b]...)
		flatRaw = append(flatRaw, raw[b]...)
	}

	return l.ComputeFlat(flatTarget, flatRaw)
}

// ComputeFlat evaluates already flattened frames.
func (l *Loss) ComputeFlat(target, raw [][]float64) (Result, error) {
	if len(target) != len(raw) {
		return Result{}, fmt.Errorf("%w: %d target frames, %d parameter frames", ErrShapeMismatch, len(target), len(raw))
	}
	if len(target) == 0 {
		return Result{}, fmt.Errorf("%w: no frames", ErrShapeMismatch)
	}

	layout := l.rescaler.Layout()
	bins := l.synth.Bins()

	var (
		sqErr     float64
		absDelta  float64
		env       []float64
		db        = make([]float64, bins)
		prevFreqs []float64
	)

	for i := range raw {
		if len(target[i]) != bins {
			return Result{}, fmt.Errorf("%w: target frame %d has %d bins, want %d", ErrShapeMismatch, i, len(target[i]), bins)
		}

		set, err := l.rescaler.Rescale(raw[i])
		if err != nil {
			return Result{}, fmt.Errorf("frame %d: %w", i, err)
		}
		if !allFinite(set.Frequencies) || !allFinite(set.Bandwidths) || !allFinite(set.Amplitudes) {
			return Result{}, fmt.Errorf("%w: rescaled parameters of frame %d", ErrNonFinite, i)
		}

		env, err = l.synth.Envelope(env, set, layout)
		if err != nil {
			return Result{}, fmt.Errorf("frame %d: %w", i, err)
		}
		core.FlooredDBBlock(db, env, 1, l.cfg.Floor)
		if !allFinite(db) {
			return Result{}, fmt.Errorf("%w: synthesized envelope of frame %d", ErrNonFinite, i)
		}

		d := floats.Distance(target[i], db, 2)
		if !core.IsFinite(d) {
			return Result{}, fmt.Errorf("%w: target frame %d", ErrNonFinite, i)
		}
		sqErr += d * d

		if prevFreqs != nil {
			absDelta += floats.Distance(set.Frequencies, prevFreqs, 1)
		}
		prevFreqs = set.Frequencies
	}

	res := Result{Spectral: sqErr / float64(len(raw)*bins)}
	if len(raw) > 1 {
		res.FrequencyDelta = absDelta / float64((len(raw)-1)*layout.Sum())
	}
	res.Total = res.Spectral + l.cfg.DeltaFrequencyWeight*res.FrequencyDelta

	if !core.IsFinite(res.Total) {
		return Result{}, fmt.Errorf("%w: total %v", ErrNonFinite, res.Total)
	}
	return res, nil
}

func allFinite(x []float64) bool {
	for _, v := range x {
		if !core.IsFinite(v) {
			return false
		}
	}
	return true
}
