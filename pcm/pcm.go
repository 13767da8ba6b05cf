// Package pcm reads and writes mono 16-bit PCM WAV files as float64
// samples in [-1, 1).
package pcm

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/cwbudde/algo-formant/dsp/core"
)

// ErrDecode reports audio that is not a mono 16-bit PCM WAV at the
// expected sample rate.
var ErrDecode = errors.New("pcm: decode error")

const (
	bitDepth  = 16
	fullScale = 32768.0
	// wavFormatPCM is the WAVE_FORMAT_PCM tag.
	wavFormatPCM = 1
)

// Decode reads a WAV stream. A sampleRate of 0 accepts any rate.
// It returns the samples and the stream's sample rate.
func Decode(r io.ReadSeeker, sampleRate int) ([]float64, int, error) {
	d := wav.NewDecoder(r)
	if !d.IsValidFile() {
		return nil, 0, fmt.Errorf("%w: not a valid WAV stream", ErrDecode)
	}
	if d.WavAudioFormat != wavFormatPCM {
		return nil, 0, fmt.Errorf("%w: audio format %d is not PCM", ErrDecode, d.WavAudioFormat)
	}
	if d.NumChans != 1 {
		return nil, 0, fmt.Errorf("%w: expected mono, got %d channels", ErrDecode, d.NumChans)
	}
	if d.BitDepth != bitDepth {
		return nil, 0, fmt.Errorf("%w: expected 16-bit samples, got %d", ErrDecode, d.BitDepth)
	}
	rate := int(d.SampleRate)
	if sampleRate > 0 && rate != sampleRate {
		return nil, 0, fmt.Errorf("%w: sample rate %d, want %d", ErrDecode, rate, sampleRate)
	}

	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	out := make([]float64, len(buf.Data))
	for i, v := range buf.Data {
		out[i] = float64(v) / fullScale
	}
	return out, rate, nil
}

// DecodeFile opens path and decodes it with Decode.
func DecodeFile(path string, sampleRate int) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	defer f.Close()

	samples, _, err := Decode(f, sampleRate)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return samples, nil
}

// Encode writes samples as a mono 16-bit PCM WAV stream. Values outside
// [-1, 1) are clipped.
func Encode(w io.WriteSeeker, samples []float64, sampleRate int) error {
	if sampleRate <= 0 {
		return fmt.Errorf("pcm: sample rate must be > 0: %d", sampleRate)
	}

	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(core.Clamp(s*fullScale, -fullScale, fullScale-1))
	}

	enc := wav.NewEncoder(w, sampleRate, bitDepth, 1, wavFormatPCM)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return err
	}
	return enc.Close()
}

// EncodeFile writes samples to path with Encode.
func EncodeFile(path string, samples []float64, sampleRate int) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return Encode(f, samples, sampleRate)
}
