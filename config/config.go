// Package config loads the analysis, model and output settings from YAML,
// environment variables and defaults.
package config

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-formant/dsp/core"
	"github.com/cwbudde/algo-formant/dsp/envelope"
	"github.com/cwbudde/algo-formant/dsp/spectrum"
	"github.com/cwbudde/algo-formant/dsp/window"
	"github.com/cwbudde/algo-formant/resonance"
	"github.com/cwbudde/algo-formant/resonance/loss"
	"github.com/cwbudde/algo-formant/track"
)

// EnvPrefix prefixes environment overrides, e.g. FORMANT_SAMPLE_RATE or
// FORMANT_BOUNDS_FREQUENCY_MAX.
const EnvPrefix = "FORMANT"

// Root is the complete configuration.
type Root struct {
	SampleRate           int              `mapstructure:"sample_rate" yaml:"sample_rate"`
	MaxFrequency         float64          `mapstructure:"max_frequency" yaml:"max_frequency"`
	WindowMs             float64          `mapstructure:"window_ms" yaml:"window_ms"`
	StrideMs             float64          `mapstructure:"stride_ms" yaml:"stride_ms"`
	FFTSize              int              `mapstructure:"fft_size" yaml:"fft_size"`
	Window               string           `mapstructure:"window" yaml:"window"`
	PreEmphasis          float64          `mapstructure:"pre_emphasis" yaml:"pre_emphasis"`
	SmoothLinear         bool             `mapstructure:"smooth_linear" yaml:"smooth_linear"`
	EnvelopeSmoothPasses int              `mapstructure:"envelope_smooth_passes" yaml:"envelope_smooth_passes"`
	Floor                float64          `mapstructure:"floor" yaml:"floor"`
	Formants             int              `mapstructure:"formants" yaml:"formants"`
	Antiformants         int              `mapstructure:"antiformants" yaml:"antiformants"`
	Bounds               resonance.Bounds `mapstructure:"bounds" yaml:"bounds"`
	Activation           string           `mapstructure:"activation" yaml:"activation"`
	DeltaFrequencyWeight float64          `mapstructure:"delta_frequency_weight" yaml:"delta_frequency_weight"`
	RealAmplitudes       bool             `mapstructure:"real_amplitudes" yaml:"real_amplitudes"`
	FrequenciesFirst     bool             `mapstructure:"frequencies_first" yaml:"frequencies_first"`
	OutputSmoothPasses   int              `mapstructure:"output_smooth_passes" yaml:"output_smooth_passes"`
	OutputExtension      string           `mapstructure:"output_extension" yaml:"output_extension"`
	Workers              int              `mapstructure:"workers" yaml:"workers"`
	LogLevel             string           `mapstructure:"log_level" yaml:"log_level"`
}

// Default returns the built-in settings for 16 kHz speech.
func Default() Root {
	return Root{
		SampleRate:           16000,
		MaxFrequency:         8000,
		WindowMs:             25,
		StrideMs:             10,
		FFTSize:              512,
		Window:               window.TypeHann.String(),
		PreEmphasis:          0.97,
		SmoothLinear:         true,
		EnvelopeSmoothPasses: 3,
		Floor:                1e-5,
		Formants:             4,
		Antiformants:         1,
		Bounds:               resonance.DefaultBounds(),
		Activation:           resonance.Unipolar.String(),
		DeltaFrequencyWeight: 1e-4,
		RealAmplitudes:       true,
		FrequenciesFirst:     false,
		OutputSmoothPasses:   1,
		OutputExtension:      ".txt",
		Workers:              0,
		LogLevel:             "info",
	}
}

// setDefaults registers every key so environment overrides resolve even
// without a config file.
func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("sample_rate", d.SampleRate)
	v.SetDefault("max_frequency", d.MaxFrequency)
	v.SetDefault("window_ms", d.WindowMs)
	v.SetDefault("stride_ms", d.StrideMs)
	v.SetDefault("fft_size", d.FFTSize)
	v.SetDefault("window", d.Window)
	v.SetDefault("pre_emphasis", d.PreEmphasis)
	v.SetDefault("smooth_linear", d.SmoothLinear)
	v.SetDefault("envelope_smooth_passes", d.EnvelopeSmoothPasses)
	v.SetDefault("floor", d.Floor)
	v.SetDefault("formants", d.Formants)
	v.SetDefault("antiformants", d.Antiformants)
	v.SetDefault("bounds.frequency.min", d.Bounds.Frequency.Min)
	v.SetDefault("bounds.frequency.max", d.Bounds.Frequency.Max)
	v.SetDefault("bounds.bandwidth.min", d.Bounds.Bandwidth.Min)
	v.SetDefault("bounds.bandwidth.max", d.Bounds.Bandwidth.Max)
	v.SetDefault("bounds.amplitude.min", d.Bounds.Amplitude.Min)
	v.SetDefault("bounds.amplitude.max", d.Bounds.Amplitude.Max)
	v.SetDefault("activation", d.Activation)
	v.SetDefault("delta_frequency_weight", d.DeltaFrequencyWeight)
	v.SetDefault("real_amplitudes", d.RealAmplitudes)
	v.SetDefault("frequencies_first", d.FrequenciesFirst)
	v.SetDefault("output_smooth_passes", d.OutputSmoothPasses)
	v.SetDefault("output_extension", d.OutputExtension)
	v.SetDefault("workers", d.Workers)
	v.SetDefault("log_level", d.LogLevel)
}

// New returns a viper instance with defaults and environment overrides
// registered. Callers may bind command-line flags before calling Decode.
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads path (if not empty) on top of the defaults and environment,
// then decodes and validates the result.
func Load(path string) (Root, error) {
	v := New()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Root{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}
	return Decode(v)
}

// Decode unmarshals v and validates the result.
func Decode(v *viper.Viper) (Root, error) {
	var cfg Root
	if err := v.Unmarshal(&cfg); err != nil {
		return Root{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Root{}, err
	}
	return cfg, nil
}

// Validate checks settings that no single component validates.
func (c Root) Validate() error {
	if _, err := resonance.ParseActivation(c.Activation); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := window.Parse(c.Window); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.SampleRate <= 0 {
		return fmt.Errorf("config: sample_rate must be > 0: %d", c.SampleRate)
	}
	if c.StrideMs <= 0 || c.WindowMs <= 0 {
		return fmt.Errorf("config: window_ms and stride_ms must be > 0: %v, %v", c.WindowMs, c.StrideMs)
	}
	if err := c.Layout().Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Bounds.Bandwidth.Min <= 0 {
		return fmt.Errorf("config: bounds.bandwidth.min must be > 0: %v", c.Bounds.Bandwidth.Min)
	}
	if _, err := c.Bins(); err != nil {
		return err
	}
	return c.Envelope().Validate()
}

// Dump writes c as YAML.
func (c Root) Dump(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return err
	}
	return enc.Close()
}

// Layout returns the resonance layout.
func (c Root) Layout() resonance.Layout {
	return resonance.Layout{Poles: c.Formants, Zeros: c.Antiformants}
}

// ActivationKind returns the parsed activation.
func (c Root) ActivationKind() resonance.Activation {
	a, err := resonance.ParseActivation(c.Activation)
	if err != nil {
		return resonance.Unipolar
	}
	return a
}

// Rescaler builds the rescaler shared by loss and tracking.
func (c Root) Rescaler() (resonance.Rescaler, error) {
	return resonance.NewRescaler(c.Layout(), c.ActivationKind(), c.Bounds)
}

// Bins returns the number of envelope bins covering 0..MaxFrequency.
func (c Root) Bins() (int, error) {
	n, err := spectrum.BinCount(c.MaxFrequency, c.FFTSize, float64(c.SampleRate))
	if err != nil {
		return 0, fmt.Errorf("config: %w", err)
	}
	return n, nil
}

// SynthesisMaxFrequency returns the frequency of the last envelope bin, so
// the synthesizer axis lines up with the extracted bins.
func (c Root) SynthesisMaxFrequency() float64 {
	n, err := c.Bins()
	if err != nil {
		return c.MaxFrequency
	}
	return spectrum.BinFrequency(n-1, c.FFTSize, float64(c.SampleRate))
}

// Processor returns the shared analysis settings. A Workers value of 0
// selects one worker per CPU.
func (c Root) Processor() core.ProcessorConfig {
	return core.ApplyProcessorOptions(
		core.WithSampleRate(float64(c.SampleRate)),
		core.WithWorkers(c.Workers),
	)
}

// WindowType returns the parsed analysis window, Hann when unset.
func (c Root) WindowType() window.Type {
	t, err := window.Parse(c.Window)
	if err != nil {
		return window.TypeHann
	}
	return t
}

func (c Root) samples(ms float64) int {
	return int(math.Round(ms * float64(c.SampleRate) / 1000))
}

// Envelope returns the extractor settings.
func (c Root) Envelope() envelope.Config {
	bins, _ := c.Bins()
	return envelope.Config{
		SampleRate:   c.Processor().SampleRate,
		WindowLength: c.samples(c.WindowMs),
		Stride:       c.samples(c.StrideMs),
		FFTSize:      c.FFTSize,
		PreEmphasis:  c.PreEmphasis,
		SmoothPasses: c.EnvelopeSmoothPasses,
		SmoothLinear: c.SmoothLinear,
		Floor:        c.Floor,
		Bins:         bins,
		Window:       c.WindowType(),
	}
}

// Synthesizer builds a synthesizer whose axis matches the envelope bins.
func (c Root) Synthesizer(opts ...resonance.SynthOption) (*resonance.Synthesizer, error) {
	bins, err := c.Bins()
	if err != nil {
		return nil, err
	}
	return resonance.NewSynthesizer(bins, c.SynthesisMaxFrequency(), opts...)
}

// Loss returns the loss constants.
func (c Root) Loss() loss.Config {
	return loss.Config{Floor: c.Floor, DeltaFrequencyWeight: c.DeltaFrequencyWeight}
}

// Track returns the post-processing settings.
func (c Root) Track() track.Config {
	return track.Config{
		Layout:           c.Layout(),
		Activation:       c.ActivationKind(),
		Bounds:           c.Bounds,
		Floor:            c.Floor,
		RealAmplitudes:   c.RealAmplitudes,
		FrequenciesFirst: c.FrequenciesFirst,
		SmoothPasses:     c.OutputSmoothPasses,
		StrideMs:         c.StrideMs,
	}
}

// ConfigureLogger applies LogLevel to l.
func (c Root) ConfigureLogger(l *logrus.Logger) error {
	lvl, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	l.SetLevel(lvl)
	return nil
}
