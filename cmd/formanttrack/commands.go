package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-formant/dsp/core"
	"github.com/cwbudde/algo-formant/internal/matrixio"
	"github.com/cwbudde/algo-formant/pipeline"
	"github.com/cwbudde/algo-formant/resonance"
	"github.com/cwbudde/algo-formant/stats/norm"
	"github.com/cwbudde/algo-formant/track"
)

func (a *app) newStatsCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "stats --out FILE AUDIO...",
		Short: "Compute normalization stats over a reference corpus",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			an, err := a.analyzer()
			if err != nil {
				return err
			}
			s, err := an.ComputeStats(cmd.Context(), args)
			if err != nil {
				return err
			}
			if out == "" {
				return norm.Save(cmd.OutOrStdout(), s)
			}
			return norm.SaveFile(out, s)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "stats file (default stdout)")
	return cmd
}

func (a *app) newExtractCmd() *cobra.Command {
	var (
		statsPath string
		outDir    string
		ext       string
	)
	cmd := &cobra.Command{
		Use:   "extract AUDIO...",
		Short: "Write the dB envelope of each file as a text matrix",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := a.loadStats(statsPath)
			if err != nil {
				return err
			}
			an, err := a.analyzer()
			if err != nil {
				return err
			}
			targets := track.OutputPaths(args, outDir, ext)
			return summarize(an.DumpEnvelopes(cmd.Context(), targets, stats))
		},
	}
	cmd.Flags().StringVar(&statsPath, "stats", "", "normalize with this stats file")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory (default beside input)")
	cmd.Flags().StringVar(&ext, "ext", ".env", "output extension")
	return cmd
}

func (a *app) newTrackCmd() *cobra.Command {
	var (
		statsPath string
		paramDir  string
		paramExt  string
		outDir    string
	)
	cmd := &cobra.Command{
		Use:   "track --stats FILE --params DIR AUDIO...",
		Short: "Post-process predictor output into formant track files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := a.loadStats(statsPath)
			if err != nil {
				return err
			}
			if stats == nil {
				return fmt.Errorf("--stats is required")
			}
			an, err := a.analyzer()
			if err != nil {
				return err
			}
			proc, err := track.NewProcessor(a.cfg.Track(), track.WithLogger(a.log))
			if err != nil {
				return err
			}
			runner, err := pipeline.NewRunner(an, *stats, pipeline.MatrixPredictor{Dir: paramDir, Ext: paramExt}, proc)
			if err != nil {
				return err
			}
			return summarize(runner.RunPaths(cmd.Context(), args, outDir, a.cfg.OutputExtension))
		},
	}
	cmd.Flags().StringVar(&statsPath, "stats", "", "normalization stats file")
	cmd.Flags().StringVar(&paramDir, "params", ".", "directory of predictor output matrices named <id><ext>")
	cmd.Flags().StringVar(&paramExt, "params-ext", ".txt", "extension of predictor output files")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory (default beside input)")
	return cmd
}

func (a *app) newSynthCmd() *cobra.Command {
	var (
		params string
		out    string
	)
	cmd := &cobra.Command{
		Use:   "synth --params FILE",
		Short: "Render dB envelopes from a raw parameter matrix",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			raw, err := matrixio.ReadFile(params)
			if err != nil {
				return err
			}
			rows, err := a.synthesize(raw)
			if err != nil {
				return err
			}
			if out == "" {
				return matrixio.Write(cmd.OutOrStdout(), rows)
			}
			return matrixio.WriteFile(out, rows)
		},
	}
	cmd.Flags().StringVar(&params, "params", "", "raw predictor output matrix")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	_ = cmd.MarkFlagRequired("params")
	return cmd
}

func (a *app) synthesize(raw [][]float64) ([][]float64, error) {
	r, err := a.cfg.Rescaler()
	if err != nil {
		return nil, err
	}
	s, err := a.cfg.Synthesizer(resonance.WithLogger(a.log))
	if err != nil {
		return nil, err
	}

	rows := make([][]float64, len(raw))
	for i, frame := range raw {
		set, err := r.Rescale(frame)
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}
		env, err := s.Envelope(nil, set, r.Layout())
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}
		for k, v := range env {
			env[k] = core.FlooredDB(v, a.cfg.Floor)
		}
		rows[i] = env
	}
	return rows, nil
}

func (a *app) newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.cfg.Dump(cmd.OutOrStdout())
		},
	}
}
