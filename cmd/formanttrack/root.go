package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-formant/config"
	"github.com/cwbudde/algo-formant/dsp/envelope"
	"github.com/cwbudde/algo-formant/pipeline"
	"github.com/cwbudde/algo-formant/stats/norm"
)

// app carries state shared by all subcommands.
type app struct {
	configPath string
	cfg        config.Root
	log        *logrus.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{log: logrus.New()}
	a.log.SetOutput(os.Stderr)
	a.log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	root := &cobra.Command{
		Use:          "formanttrack",
		Short:        "Formant and antiformant tracking from speech envelopes",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "YAML configuration file")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.Int("workers", 0, "concurrent utterances (0 = one per CPU)")

	root.AddCommand(
		a.newStatsCmd(),
		a.newExtractCmd(),
		a.newTrackCmd(),
		a.newSynthCmd(),
		a.newInfoCmd(),
		a.newConfigCmd(),
	)
	return root
}

// load resolves defaults, file, environment and flags, in increasing
// precedence.
func (a *app) load(cmd *cobra.Command) error {
	v := config.New()
	if a.configPath != "" {
		v.SetConfigFile(a.configPath)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("config: read %s: %w", a.configPath, err)
		}
	}
	if f := cmd.Flags().Lookup("log-level"); f != nil && f.Changed {
		v.Set("log_level", f.Value.String())
	}
	if f := cmd.Flags().Lookup("workers"); f != nil && f.Changed {
		v.Set("workers", f.Value.String())
	}

	cfg, err := config.Decode(v)
	if err != nil {
		return err
	}
	if err := cfg.ConfigureLogger(a.log); err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}

// workers returns the configured worker count, or one per CPU.
func (a *app) workers() int {
	return a.cfg.Processor().Workers
}

func (a *app) analyzer() (*pipeline.Analyzer, error) {
	ex, err := envelope.NewExtractor(a.cfg.Envelope(), envelope.WithLogger(a.log))
	if err != nil {
		return nil, err
	}
	return pipeline.NewAnalyzer(ex, a.cfg.SampleRate,
		pipeline.WithLogger(a.log),
		pipeline.WithWorkers(a.workers()))
}

func (a *app) loadStats(path string) (*norm.Stats, error) {
	if path == "" {
		return nil, nil
	}
	s, err := norm.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load stats: %w", err)
	}
	return &s, nil
}

// summarize turns per-utterance failures into a command error.
func summarize(results []pipeline.Result) error {
	if n := pipeline.Failed(results); n > 0 {
		return fmt.Errorf("%d of %d utterances failed", n, len(results))
	}
	return nil
}
