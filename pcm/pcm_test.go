package pcm

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	in := []float64{0, 0.5, -0.5, 0.25, -1, 0.999969482421875}

	if err := EncodeFile(path, in, 16000); err != nil {
		t.Fatalf("EncodeFile() error = %v", err)
	}
	out, err := DecodeFile(path, 16000)
	if err != nil {
		t.Fatalf("DecodeFile() error = %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("len = %d, want %d", len(out), len(in))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Fatalf("sample %d = %v, want %v", i, out[i], in[i])
		}
	}
}

func TestEncodeClips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.wav")
	if err := EncodeFile(path, []float64{2, -3}, 8000); err != nil {
		t.Fatalf("EncodeFile() error = %v", err)
	}
	out, err := DecodeFile(path, 0)
	if err != nil {
		t.Fatalf("DecodeFile() error = %v", err)
	}
	if out[0] != 32767.0/32768 || out[1] != -1 {
		t.Fatalf("clipped = %v", out)
	}
}

func TestDecodeRejectsWrongRate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rate.wav")
	if err := EncodeFile(path, []float64{0, 0.1}, 22050); err != nil {
		t.Fatalf("EncodeFile() error = %v", err)
	}
	if _, err := DecodeFile(path, 16000); !errors.Is(err, ErrDecode) {
		t.Fatalf("error = %v, want ErrDecode", err)
	}
}

func TestDecodeRejectsStereo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stereo.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	enc := wav.NewEncoder(f, 16000, 16, 2, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 2, SampleRate: 16000},
		Data:           []int{0, 0, 100, -100},
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if _, err := DecodeFile(path, 16000); !errors.Is(err, ErrDecode) {
		t.Fatalf("error = %v, want ErrDecode", err)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, _, err := Decode(bytes.NewReader([]byte("definitely not a riff container")), 16000)
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("error = %v, want ErrDecode", err)
	}
}

func TestDecodeFileMissing(t *testing.T) {
	_, err := DecodeFile(filepath.Join(t.TempDir(), "missing.wav"), 16000)
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("error = %v, want ErrDecode", err)
	}
	if err.Error() == ErrDecode.Error() {
		t.Fatalf("error %q does not name the cause", err)
	}
}

func TestEncodeRejectsBadRate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	defer f.Close()
	if err := Encode(f, []float64{0}, 0); err == nil {
		t.Fatal("expected error for zero sample rate")
	}
}
