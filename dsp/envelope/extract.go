package envelope

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-formant/dsp/core"
	"github.com/cwbudde/algo-formant/dsp/filter/fir"
	"github.com/cwbudde/algo-formant/dsp/spectrum"
	"github.com/cwbudde/algo-formant/dsp/window"
)

// Sequence is an ordered list of dB envelope frames.
type Sequence [][]float64

// Config holds extraction parameters. Lengths are in samples.
type Config struct {
	SampleRate   float64
	WindowLength int
	Stride       int
	FFTSize      int
	PreEmphasis  float64
	SmoothPasses int
	// SmoothLinear smooths linear magnitudes before the dB conversion;
	// otherwise the dB frame is smoothed.
	SmoothLinear bool
	// Floor is added to scaled magnitudes before taking the logarithm.
	Floor float64
	// Bins is the number of leading FFT bins kept per frame.
	Bins   int
	Window window.Type
}

// DefaultConfig returns 16 kHz settings: 25 ms Hann window, 10 ms stride,
// 512-point FFT and bins up to 8 kHz.
func DefaultConfig() Config {
	return Config{
		SampleRate:   16000,
		WindowLength: 400,
		Stride:       160,
		FFTSize:      512,
		PreEmphasis:  0.97,
		SmoothPasses: 3,
		SmoothLinear: true,
		Floor:        1e-5,
		Bins:         257,
		Window:       window.TypeHann,
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch {
	case c.SampleRate <= 0:
		return fmt.Errorf("envelope: sample rate must be > 0: %v", c.SampleRate)
	case c.WindowLength <= 0:
		return fmt.Errorf("envelope: window length must be > 0: %d", c.WindowLength)
	case c.Stride <= 0:
		return fmt.Errorf("envelope: stride must be > 0: %d", c.Stride)
	case c.FFTSize < c.WindowLength:
		return fmt.Errorf("envelope: fft size %d smaller than window length %d", c.FFTSize, c.WindowLength)
	case c.Bins <= 0 || c.Bins > c.FFTSize/2+1:
		return fmt.Errorf("envelope: bins must be in [1, %d]: %d", c.FFTSize/2+1, c.Bins)
	case c.Floor <= 0:
		return fmt.Errorf("envelope: floor must be > 0: %v", c.Floor)
	case c.SmoothPasses < 0:
		return fmt.Errorf("envelope: smoothing passes must be >= 0: %d", c.SmoothPasses)
	}
	return nil
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger sets the logger used for diagnostics.
func WithLogger(l logrus.FieldLogger) Option {
	return func(e *Extractor) {
		if l != nil {
			e.log = l
		}
	}
}

// WithWorkers bounds the number of goroutines computing frames.
func WithWorkers(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.workers = n
		}
	}
}

// Extractor turns waveforms into dB envelope sequences. It is safe for
// concurrent use.
type Extractor struct {
	cfg     Config
	scale   float64
	workers int
	log     logrus.FieldLogger

	// geom answers frame-count queries; its buffers belong to pool.
	geom *spectrum.STFT
	pool sync.Pool
}

// NewExtractor validates cfg and prepares the analysis window.
func NewExtractor(cfg Config, opts ...Option) (*Extractor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	proto, err := spectrum.NewSTFT(cfg.WindowLength, cfg.Stride, cfg.FFTSize, cfg.Window)
	if err != nil {
		return nil, fmt.Errorf("envelope: %w", err)
	}

	e := &Extractor{
		cfg:     cfg,
		scale:   2 / proto.WindowSum(),
		workers: core.DefaultProcessorConfig().Workers,
		log:     logrus.StandardLogger(),
		geom:    proto,
	}
	e.pool.New = func() any {
		s, err := proto.Clone()
		if err != nil {
			return nil
		}
		return s
	}
	e.pool.Put(proto)

	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}

	return e, nil
}

// Config returns the extraction settings.
func (e *Extractor) Config() Config { return e.cfg }

// Scale returns the window-energy correction 2/sum(window).
func (e *Extractor) Scale() float64 { return e.scale }

// Extract returns the envelope sequence of one waveform.
//
// Samples are pre-emphasized, padded with WindowLength/2 zeros in front and
// Stride-1 zeros at the end, and framed without end padding.
func (e *Extractor) Extract(signal []float64) (Sequence, error) {
	if len(signal) < e.cfg.WindowLength {
		return nil, fmt.Errorf("%w: %d samples, window %d", ErrInsufficientData, len(signal), e.cfg.WindowLength)
	}

	head := e.cfg.WindowLength / 2
	padded := make([]float64, head+len(signal)+e.cfg.Stride-1)
	fir.NewPreEmphasis(e.cfg.PreEmphasis).ProcessBlockTo(padded[head:head+len(signal)], signal)

	n := e.geom.Frames(len(padded))
	seq := make(Sequence, n)
	if err := e.frames(seq, padded); err != nil {
		return nil, err
	}

	if silent := e.countSilent(seq); silent > 0 {
		e.log.WithFields(logrus.Fields{
			"warning": "numeric_instability",
			"frames":  silent,
			"floor":   e.cfg.Floor,
		}).Warn("envelope frames at the dB floor")
	}

	e.log.WithFields(logrus.Fields{
		"samples": len(signal),
		"frames":  n,
		"bins":    e.cfg.Bins,
	}).Debug("extracted envelope")

	return seq, nil
}

// ExtractAll extracts each waveform and concatenates the sequences in order.
// No boundary marker separates consecutive inputs.
func (e *Extractor) ExtractAll(signals [][]float64) (Sequence, error) {
	var out Sequence
	for i, sig := range signals {
		seq, err := e.Extract(sig)
		if err != nil {
			return nil, fmt.Errorf("input %d: %w", i, err)
		}
		out = append(out, seq...)
	}
	return out, nil
}

func (e *Extractor) getSTFT() *spectrum.STFT {
	s, _ := e.pool.Get().(*spectrum.STFT)
	return s
}

func (e *Extractor) frames(seq Sequence, padded []float64) error {
	workers := core.WorkerCount(e.workers, len(seq))
	jobs := make(chan int, len(seq))
	for i := range seq {
		jobs <- i
	}
	close(jobs)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()

			stft := e.getSTFT()
			if stft == nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = fmt.Errorf("envelope: cannot allocate fft plan of size %d", e.cfg.FFTSize)
				}
				mu.Unlock()
				return
			}
			defer e.pool.Put(stft)

			mag := make([]float64, stft.Bins())
			for idx := range jobs {
				if err := stft.MagnitudeFrame(mag, padded, idx); err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
					continue
				}
				seq[idx] = e.envelope(mag)
			}
		}()
	}
	wg.Wait()

	return firstErr
}

// envelope converts one magnitude spectrum to a truncated dB frame.
func (e *Extractor) envelope(mag []float64) []float64 {
	var db []float64
	if e.cfg.SmoothLinear {
		db = Smooth(mag, e.cfg.SmoothPasses)
		core.FlooredDBBlock(db, db, e.scale, e.cfg.Floor)
	} else {
		db = make([]float64, len(mag))
		core.FlooredDBBlock(db, mag, e.scale, e.cfg.Floor)
		db = Smooth(db, e.cfg.SmoothPasses)
	}

	out := make([]float64, e.cfg.Bins)
	core.CopyInto(out, db)
	return out
}

func (e *Extractor) countSilent(seq Sequence) int {
	// A frame whose loudest bin is within 1 dB of the floor carries no spectrum.
	limit := core.FlooredDB(0, e.cfg.Floor) + 1
	silent := 0
	for _, frame := range seq {
		loud := false
		for _, v := range frame {
			if v > limit {
				loud = true
				break
			}
		}
		if !loud {
			silent++
		}
	}
	return silent
}
