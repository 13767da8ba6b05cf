package core

import "runtime"

// ProcessorConfig defines common analysis settings.
type ProcessorConfig struct {
	SampleRate float64
	Workers    int
}

// ProcessorOption mutates a ProcessorConfig.
type ProcessorOption func(*ProcessorConfig)

// DefaultProcessorConfig returns defaults for 16 kHz speech analysis.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		SampleRate: 16000,
		Workers:    runtime.GOMAXPROCS(0),
	}
}

// WithSampleRate sets the processing sample rate.
func WithSampleRate(sampleRate float64) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if sampleRate > 0 {
			cfg.SampleRate = sampleRate
		}
	}
}

// WithWorkers sets the number of concurrent workers.
func WithWorkers(workers int) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if workers > 0 {
			cfg.Workers = workers
		}
	}
}

// ApplyProcessorOptions applies zero or more options to the default config.
func ApplyProcessorOptions(opts ...ProcessorOption) ProcessorConfig {
	cfg := DefaultProcessorConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WorkerCount bounds the configured worker count by the number of jobs.
func WorkerCount(workers, jobs int) int {
	if workers <= 0 {
		workers = 1
	}
	if jobs < workers {
		workers = jobs
	}
	if workers < 1 {
		workers = 1
	}
	return workers
}
