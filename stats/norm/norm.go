// Package norm computes and applies the corpus-wide normalization constants
// for spectral envelopes.
//
// The constants are a single mean and standard deviation over every value
// of every frame of a reference corpus. They are computed once, persisted,
// and reused unchanged for every later corpus.
package norm

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-formant/dsp/core"
	"github.com/cwbudde/algo-formant/dsp/envelope"
)

// ErrNoData reports a corpus without any values.
var ErrNoData = errors.New("norm: no data")

// Stats is an immutable normalization pair.
type Stats struct {
	Mean   float64
	StdDev float64
}

// Validate rejects non-finite values and a non-positive deviation.
func (s Stats) Validate() error {
	if !core.IsFinite(s.Mean) || !core.IsFinite(s.StdDev) {
		return fmt.Errorf("norm: non-finite stats: mean %v, stddev %v", s.Mean, s.StdDev)
	}
	if s.StdDev <= 0 {
		return fmt.Errorf("norm: stddev must be > 0: %v", s.StdDev)
	}
	return nil
}

// Normalize returns a copy of seq with (x - Mean) / StdDev applied.
func (s Stats) Normalize(seq envelope.Sequence) envelope.Sequence {
	inv := 1 / s.StdDev
	out := make(envelope.Sequence, len(seq))
	for t, frame := range seq {
		dst := make([]float64, len(frame))
		for i, v := range frame {
			dst[i] = v - s.Mean
		}
		vecmath.ScaleBlockInPlace(dst, inv)
		out[t] = dst
	}
	return out
}

// Denormalize returns a copy of seq with x*StdDev + Mean applied.
func (s Stats) Denormalize(seq envelope.Sequence) envelope.Sequence {
	out := make(envelope.Sequence, len(seq))
	for t, frame := range seq {
		dst := make([]float64, len(frame))
		vecmath.ScaleBlock(dst, frame, s.StdDev)
		for i := range dst {
			dst[i] += s.Mean
		}
		out[t] = dst
	}
	return out
}

// Accumulator tracks count, mean and the sum of squared deviations with
// Welford's update. Partial accumulators combine with Merge.
type Accumulator struct {
	n    int
	mean float64
	m2   float64
}

// Update adds one block of values.
func (a *Accumulator) Update(values []float64) {
	if len(values) == 0 {
		return
	}

	nb := float64(len(values))
	mean := vecmath.Sum(values) / nb
	var m2 float64
	for _, v := range values {
		d := v - mean
		m2 += d * d
	}

	a.Merge(Accumulator{n: len(values), mean: mean, m2: m2})
}

// Merge folds b into a.
func (a *Accumulator) Merge(b Accumulator) {
	if b.n == 0 {
		return
	}
	if a.n == 0 {
		*a = b
		return
	}

	na, nb := float64(a.n), float64(b.n)
	n := na + nb
	delta := b.mean - a.mean

	a.mean += delta * nb / n
	a.m2 += b.m2 + delta*delta*na*nb/n
	a.n += b.n
}

// Count returns the number of values seen.
func (a *Accumulator) Count() int { return a.n }

// Result returns the mean and population standard deviation.
func (a *Accumulator) Result() (Stats, error) {
	if a.n == 0 {
		return Stats{}, ErrNoData
	}
	return Stats{Mean: a.mean, StdDev: math.Sqrt(a.m2 / float64(a.n))}, nil
}

// Compute reduces every value of every sequence into one Stats. Sequences
// are reduced concurrently by up to workers goroutines and the partials are
// merged in input order, so the result does not depend on scheduling.
func Compute(seqs []envelope.Sequence, workers int) (Stats, error) {
	partials := make([]Accumulator, len(seqs))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for range core.WorkerCount(workers, len(seqs)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				for _, frame := range seqs[i] {
					partials[i].Update(frame)
				}
			}
		}()
	}
	for i := range seqs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	var total Accumulator
	for _, p := range partials {
		total.Merge(p)
	}
	return total.Result()
}
