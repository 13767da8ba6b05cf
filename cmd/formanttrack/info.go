package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-formant/dsp/envelope"
	"github.com/cwbudde/algo-formant/dsp/filter/fir"
	"github.com/cwbudde/algo-formant/dsp/spectrum"
	"github.com/cwbudde/algo-formant/dsp/window"
)

func (a *app) newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Print the analysis frame and parameter layout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ex, err := envelope.NewExtractor(a.cfg.Envelope())
			if err != nil {
				return err
			}
			ec := ex.Config()
			meta := window.Info(ec.Window)
			layout := a.cfg.Layout()
			maxFreq := a.cfg.SynthesisMaxFrequency()
			pre := fir.NewPreEmphasis(ec.PreEmphasis)
			tilt := pre.MagnitudeDB(maxFreq, ec.SampleRate)

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			rows := []struct {
				key   string
				value string
			}{
				{"Window", fmt.Sprintf("%s, %d samples (%.1f ms)", meta.Name, ec.WindowLength, a.cfg.WindowMs)},
				{"Stride", fmt.Sprintf("%d samples (%.1f ms)", ec.Stride, a.cfg.StrideMs)},
				{"FFT size", fmt.Sprintf("%d", ec.FFTSize)},
				{"Bins", fmt.Sprintf("%d, 0..%.1f Hz", ec.Bins, maxFreq)},
				{"Bin width", fmt.Sprintf("%.3f Hz", spectrum.BinWidth(ec.FFTSize, ec.SampleRate))},
				{"ENBW", fmt.Sprintf("%.4f bins", meta.ENBW)},
				{"Coherent gain", fmt.Sprintf("%.6f", meta.CoherentGain)},
				{"Pre-emphasis", fmt.Sprintf("order %d %v, %+.1f dB at %.0f Hz", pre.Order(), pre.Coefficients(), tilt, maxFreq)},
				{"Magnitude scale", fmt.Sprintf("%.6g", ex.Scale())},
				{"Workers", fmt.Sprintf("%d", a.workers())},
				{"Resonances", fmt.Sprintf("%d poles, %d zeros", layout.Poles, layout.Zeros)},
				{"Parameters", fmt.Sprintf("%d per frame", layout.Width())},
				{"Activation", a.cfg.ActivationKind().String()},
			}
			for _, r := range rows {
				if _, err := fmt.Fprintf(tw, "%s\t%s\n", r.key, r.value); err != nil {
					return err
				}
			}
			return tw.Flush()
		},
	}
}
