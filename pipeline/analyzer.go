package pipeline

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-formant/dsp/envelope"
	"github.com/cwbudde/algo-formant/internal/matrixio"
	"github.com/cwbudde/algo-formant/pcm"
	"github.com/cwbudde/algo-formant/stats/norm"
	"github.com/cwbudde/algo-formant/track"
)

// Option configures an Analyzer or Runner.
type Option func(*options)

type options struct {
	workers int
	log     logrus.FieldLogger
}

// WithWorkers bounds the number of utterances processed concurrently.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithLogger sets the logger for per-utterance reporting.
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

func applyOptions(opts []Option) options {
	o := options{workers: 1, log: logrus.StandardLogger()}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// Result is the outcome for one utterance.
type Result struct {
	Target track.Target
	Frames int
	// Err is nil or an *UtteranceError.
	Err error
}

// Failed counts results with an error.
func Failed(results []Result) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}

// Analyzer decodes audio and extracts envelopes.
type Analyzer struct {
	extractor  *envelope.Extractor
	sampleRate int
	opts       options
}

// NewAnalyzer creates an Analyzer for audio at sampleRate.
func NewAnalyzer(extractor *envelope.Extractor, sampleRate int, opts ...Option) (*Analyzer, error) {
	if extractor == nil {
		return nil, fmt.Errorf("pipeline: extractor is nil")
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("pipeline: sample rate must be > 0: %d", sampleRate)
	}
	return &Analyzer{extractor: extractor, sampleRate: sampleRate, opts: applyOptions(opts)}, nil
}

// Envelope decodes path and returns its dB envelope sequence.
func (a *Analyzer) Envelope(path string) (envelope.Sequence, error) {
	samples, err := pcm.DecodeFile(path, a.sampleRate)
	if err != nil {
		return nil, err
	}
	return a.extractor.Extract(samples)
}

// ComputeStats extracts every file and reduces the envelopes to
// normalization stats. Files that fail are logged and left out.
func (a *Analyzer) ComputeStats(ctx context.Context, paths []string) (norm.Stats, error) {
	seqs := make([]envelope.Sequence, len(paths))
	errs := forEach(ctx, len(paths), a.opts.workers, func(i int) error {
		seq, err := a.Envelope(paths[i])
		if err != nil {
			return err
		}
		seqs[i] = seq
		return nil
	})

	failed := 0
	for i, err := range errs {
		if err != nil {
			failed++
			a.opts.log.WithFields(logrus.Fields{
				"path":  paths[i],
				"error": err,
			}).Error("skipping file in stats corpus")
		}
	}
	if err := ctx.Err(); err != nil {
		return norm.Stats{}, err
	}

	stats, err := norm.Compute(seqs, a.opts.workers)
	if err != nil {
		return norm.Stats{}, fmt.Errorf("pipeline: %d of %d files usable: %w", len(paths)-failed, len(paths), err)
	}

	a.opts.log.WithFields(logrus.Fields{
		"files":  len(paths),
		"failed": failed,
		"mean":   stats.Mean,
		"stddev": stats.StdDev,
	}).Info("normalization stats computed")

	return stats, nil
}

// DumpEnvelopes writes the envelope of every target to target.Output as a
// text matrix. When stats is not nil the envelopes are normalized first.
func (a *Analyzer) DumpEnvelopes(ctx context.Context, targets []track.Target, stats *norm.Stats) []Result {
	results := make([]Result, len(targets))
	errs := forEach(ctx, len(targets), a.opts.workers, func(i int) error {
		if targets[i].Err != nil {
			return targets[i].Err
		}
		seq, err := a.Envelope(targets[i].Input)
		if err != nil {
			return err
		}
		if stats != nil {
			seq = stats.Normalize(seq)
		}
		results[i].Frames = len(seq)
		return matrixio.WriteFile(targets[i].Output, seq)
	})

	return a.collect(targets, results, errs)
}

func (a *Analyzer) collect(targets []track.Target, results []Result, errs []error) []Result {
	for i, err := range errs {
		results[i].Target = targets[i]
		if err == nil {
			continue
		}
		uerr := &UtteranceError{ID: targets[i].ID, Path: targets[i].Input, Err: err}
		results[i].Err = uerr
		a.opts.log.WithFields(logrus.Fields{
			"id":    uerr.ID,
			"path":  uerr.Path,
			"error": err,
		}).Error("utterance failed")
	}
	return results
}
