package pipeline

import (
	"context"
	"sync"

	"github.com/cwbudde/algo-formant/dsp/core"
)

// forEach runs fn for 0..n-1 on up to workers goroutines. Indices not yet
// started when ctx is done receive ctx.Err().
func forEach(ctx context.Context, n, workers int, fn func(i int) error) []error {
	errs := make([]error, n)
	if n == 0 {
		return errs
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for range core.WorkerCount(workers, n) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if err := ctx.Err(); err != nil {
					errs[i] = err
					continue
				}
				errs[i] = fn(i)
			}
		}()
	}
	for i := range n {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return errs
}
