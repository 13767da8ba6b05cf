package pipeline

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-formant/stats/norm"
	"github.com/cwbudde/algo-formant/track"
)

// Runner turns audio files into formant track files.
type Runner struct {
	analyzer  *Analyzer
	stats     norm.Stats
	predictor Predictor
	processor *track.Processor
}

// NewRunner combines the stages. stats must be the pair computed on the
// reference corpus.
func NewRunner(analyzer *Analyzer, stats norm.Stats, predictor Predictor, processor *track.Processor) (*Runner, error) {
	if analyzer == nil || predictor == nil || processor == nil {
		return nil, fmt.Errorf("pipeline: analyzer, predictor and processor are required")
	}
	if err := stats.Validate(); err != nil {
		return nil, err
	}
	return &Runner{analyzer: analyzer, stats: stats, predictor: predictor, processor: processor}, nil
}

// Run processes every target. The returned slice has one Result per target
// in input order; per-utterance failures never stop the batch.
func (r *Runner) Run(ctx context.Context, targets []track.Target) []Result {
	results := make([]Result, len(targets))
	errs := forEach(ctx, len(targets), r.analyzer.opts.workers, func(i int) error {
		if targets[i].Err != nil {
			return targets[i].Err
		}
		n, err := r.processOne(ctx, targets[i])
		results[i].Frames = n
		return err
	})

	results = r.analyzer.collect(targets, results, errs)
	r.analyzer.opts.log.WithFields(logrus.Fields{
		"utterances": len(targets),
		"failed":     Failed(results),
	}).Info("tracking finished")
	return results
}

// RunPaths derives targets with track.OutputPaths and runs them. Targets
// whose output path collides fail on their own.
func (r *Runner) RunPaths(ctx context.Context, inputs []string, outDir, ext string) []Result {
	return r.Run(ctx, track.OutputPaths(inputs, outDir, ext))
}

func (r *Runner) processOne(ctx context.Context, t track.Target) (int, error) {
	seq, err := r.analyzer.Envelope(t.Input)
	if err != nil {
		return 0, err
	}

	raw, err := r.predictor.Predict(ctx, t.ID, r.stats.Normalize(seq))
	if err != nil {
		return 0, err
	}
	if len(raw) != len(seq) {
		return 0, fmt.Errorf("%w: predictor returned %d frames for %d", track.ErrShapeMismatch, len(raw), len(seq))
	}

	tr, err := r.processor.Process(t.ID, raw)
	if err != nil {
		return 0, err
	}
	if err := track.WriteFile(t.Output, tr); err != nil {
		return 0, err
	}

	r.analyzer.opts.log.WithFields(logrus.Fields{
		"id":     t.ID,
		"frames": len(tr.Frames),
		"output": t.Output,
	}).Debug("track written")

	return len(tr.Frames), nil
}
