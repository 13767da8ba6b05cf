package track

import (
	"fmt"
	"math"
	"sort"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/cwbudde/algo-formant/resonance"
)

// placeholderAmplitude is written in the amplitude field of every zero.
const placeholderAmplitude = 1.0

// Config controls post-processing.
type Config struct {
	Layout     resonance.Layout
	Activation resonance.Activation
	Bounds     resonance.Bounds
	// Floor is the additive floor of the real-amplitude conversion.
	Floor float64
	// RealAmplitudes replaces each pole's learned amplitude by the peak level
	// of its resonance curve.
	RealAmplitudes bool
	// FrequenciesFirst writes all frequencies, then all bandwidths, then all
	// amplitudes. Otherwise each resonance is written as F B A.
	FrequenciesFirst bool
	// SmoothPasses is the number of binomial smoothing passes over time.
	SmoothPasses int
	// StrideMs is the frame stride used for timestamps.
	StrideMs float64
}

// Option configures a Processor.
type Option func(*Processor)

// WithLogger sets the processor's logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(p *Processor) {
		if l != nil {
			p.log = l
		}
	}
}

// Processor converts raw predictor output to tracks. It is safe for
// concurrent use.
type Processor struct {
	cfg      Config
	rescaler resonance.Rescaler
	log      logrus.FieldLogger
}

// NewProcessor validates cfg and builds the shared rescaler.
func NewProcessor(cfg Config, opts ...Option) (*Processor, error) {
	r, err := resonance.NewRescaler(cfg.Layout, cfg.Activation, cfg.Bounds)
	if err != nil {
		return nil, err
	}
	if cfg.SmoothPasses < 0 {
		return nil, fmt.Errorf("track: smoothing passes must be >= 0: %d", cfg.SmoothPasses)
	}
	if cfg.StrideMs <= 0 {
		return nil, fmt.Errorf("track: stride must be > 0: %v", cfg.StrideMs)
	}
	if cfg.RealAmplitudes && cfg.Floor <= 0 {
		return nil, fmt.Errorf("track: floor must be > 0 with real amplitudes: %v", cfg.Floor)
	}

	p := &Processor{cfg: cfg, rescaler: r, log: logrus.StandardLogger()}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p, nil
}

// Config returns the processor configuration.
func (p *Processor) Config() Config { return p.cfg }

// Rescaler returns the rescaler shared with loss computation.
func (p *Processor) Rescaler() resonance.Rescaler { return p.rescaler }

// Process builds the track for utterance id from its raw frames.
func (p *Processor) Process(id string, raw [][]float64) (*Track, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyTrack, id)
	}

	layout := p.cfg.Layout
	sets := make([]resonance.Set, len(raw))
	for t, frame := range raw {
		set, err := p.rescaler.Rescale(frame)
		if err != nil {
			return nil, fmt.Errorf("utterance %s frame %d: %w", id, t, err)
		}
		sets[t] = set
	}

	order := p.channelOrder(sets)
	m := p.assemble(sets, order)
	smoothBinomial(m, p.cfg.SmoothPasses)

	rows, cols := m.Dims()
	tr := &Track{
		ID:         id,
		StrideMs:   p.cfg.StrideMs,
		Resonances: layout.Sum(),
		Frames:     make([][]float64, rows),
	}
	for t := range rows {
		tr.Frames[t] = make([]float64, cols)
		copy(tr.Frames[t], m.RawRowView(t))
	}

	p.log.WithFields(logrus.Fields{
		"id":     id,
		"frames": rows,
		"order":  order,
	}).Debug("track processed")

	return tr, nil
}

// channelOrder returns the resonance channels in output order: poles by
// ascending mean frequency, then zeros by ascending mean absolute frequency.
// Ties keep the original channel order.
func (p *Processor) channelOrder(sets []resonance.Set) []int {
	layout := p.cfg.Layout
	means := make([]float64, layout.Sum())
	col := make([]float64, len(sets))

	for c := range means {
		for t, set := range sets {
			v := set.Frequencies[c]
			if c >= layout.Poles {
				v = math.Abs(v)
			}
			col[t] = v
		}
		means[c] = stat.Mean(col, nil)
	}

	poles := make([]int, layout.Poles)
	for i := range poles {
		poles[i] = i
	}
	zeros := make([]int, layout.Zeros)
	for i := range zeros {
		zeros[i] = layout.Poles + i
	}

	sort.SliceStable(poles, func(a, b int) bool { return means[poles[a]] < means[poles[b]] })
	sort.SliceStable(zeros, func(a, b int) bool { return means[zeros[a]] < means[zeros[b]] })

	return append(poles, zeros...)
}

// assemble writes the ordered parameter matrix, one row per frame.
func (p *Processor) assemble(sets []resonance.Set, order []int) *mat.Dense {
	nsum := p.cfg.Layout.Sum()
	m := mat.NewDense(len(sets), 3*nsum, nil)

	for t, set := range sets {
		for r, c := range order {
			f := set.Frequencies[c]
			b := set.Bandwidths[c]
			a := placeholderAmplitude

			if c < p.cfg.Layout.Poles {
				a = set.Amplitudes[c]
				if p.cfg.RealAmplitudes {
					a = resonance.PeakDB(f, b, a, p.cfg.Floor)
				}
			} else {
				f = -f
			}

			if p.cfg.FrequenciesFirst {
				m.Set(t, r, f)
				m.Set(t, nsum+r, b)
				m.Set(t, 2*nsum+r, a)
			} else {
				m.Set(t, 3*r, f)
				m.Set(t, 3*r+1, b)
				m.Set(t, 3*r+2, a)
			}
		}
	}
	return m
}

// smoothBinomial filters every column of m along time with [0.25 0.5 0.25],
// using 0.75*edge + 0.25*neighbor at the first and last frame.
func smoothBinomial(m *mat.Dense, passes int) {
	rows, cols := m.Dims()
	if rows < 2 || passes <= 0 {
		return
	}

	prev := mat.NewDense(rows, cols, nil)
	for range passes {
		prev.Copy(m)
		for j := range cols {
			m.Set(0, j, 0.75*prev.At(0, j)+0.25*prev.At(1, j))
			for i := 1; i < rows-1; i++ {
				m.Set(i, j, 0.25*prev.At(i-1, j)+0.5*prev.At(i, j)+0.25*prev.At(i+1, j))
			}
			last := rows - 1
			m.Set(last, j, 0.75*prev.At(last, j)+0.25*prev.At(last-1, j))
		}
	}
}
