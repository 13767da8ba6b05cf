package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cwbudde/algo-formant/internal/matrixio"
	"github.com/cwbudde/algo-formant/internal/testutil"
	"github.com/cwbudde/algo-formant/pcm"
	"github.com/cwbudde/algo-formant/stats/norm"
	"github.com/cwbudde/algo-formant/track"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeConfig(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "formant.yaml")
	body := "formants: 2\nantiformants: 1\nlog_level: error\noutput_extension: .frm\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func writeAudio(t *testing.T, path string, f0 float64) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if err := pcm.EncodeFile(path, testutil.ResonantPulseTrain(f0, 600, 80, 16000, 3200), 16000); err != nil {
		t.Fatalf("EncodeFile() error = %v", err)
	}
}

func TestConfigCommand(t *testing.T) {
	dir := t.TempDir()
	out, err := execute(t, "--config", writeConfig(t, dir), "config")
	if err != nil {
		t.Fatalf("config: %v\n%s", err, out)
	}
	if !strings.Contains(out, "antiformants: 1") || !strings.Contains(out, "output_extension: .frm") {
		t.Fatalf("config output:\n%s", out)
	}
}

func TestInfoCommand(t *testing.T) {
	out, err := execute(t, "info")
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	for _, want := range []string{"Hann", "257", "31.250 Hz", "order 1 [1 -0.97]"} {
		if !strings.Contains(out, want) {
			t.Fatalf("info output lacks %q:\n%s", want, out)
		}
	}

	t.Setenv("FORMANT_WINDOW", "blackman")
	out, err = execute(t, "info")
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	if !strings.Contains(out, "Blackman") {
		t.Fatalf("info output lacks configured window:\n%s", out)
	}
}

func TestExtractKeepsInputAudio(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "wav", "a.wav")
	writeAudio(t, in, 120)
	before, err := os.ReadFile(in)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	if _, err := execute(t, "-c", writeConfig(t, dir), "extract", "--ext", ".wav", in); err == nil {
		t.Fatal("expected error when the output would replace the input")
	}
	after, err := os.ReadFile(in)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !bytes.Equal(before, after) {
		t.Fatal("input audio was modified")
	}
}

func TestStatsExtractTrackCommands(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir)

	inputs := []string{
		filepath.Join(dir, "wav", "s1", "a.wav"),
		filepath.Join(dir, "wav", "s2", "a.wav"),
	}
	writeAudio(t, inputs[0], 110)
	writeAudio(t, inputs[1], 190)

	statsPath := filepath.Join(dir, "norm.txt")
	if out, err := execute(t, append([]string{"-c", cfgPath, "stats", "-o", statsPath}, inputs...)...); err != nil {
		t.Fatalf("stats: %v\n%s", err, out)
	}
	stats, err := norm.LoadFile(statsPath)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if stats.StdDev <= 0 {
		t.Fatalf("stats = %+v", stats)
	}

	envDir := filepath.Join(dir, "env")
	if out, err := execute(t, append([]string{"-c", cfgPath, "extract", "--stats", statsPath, "-o", envDir}, inputs...)...); err != nil {
		t.Fatalf("extract: %v\n%s", err, out)
	}
	env, err := matrixio.ReadFile(filepath.Join(envDir, "s1_a.env"))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	// Replay constant predictor output with one row per envelope frame.
	paramDir := filepath.Join(dir, "params")
	for _, id := range []string{"s1_a", "s2_a"} {
		rows := make([][]float64, len(env))
		for i := range rows {
			rows[i] = []float64{0.1, 0.3, 0.2, 0.1, 0.1, 0.1, 0.5, 0.5}
		}
		if err := matrixio.WriteFile(filepath.Join(paramDir, id+".txt"), rows); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
	}

	trackDir := filepath.Join(dir, "tracks")
	if out, err := execute(t, append([]string{"-c", cfgPath, "track", "--stats", statsPath, "--params", paramDir, "-o", trackDir}, inputs...)...); err != nil {
		t.Fatalf("track: %v\n%s", err, out)
	}
	f, err := os.Open(filepath.Join(trackDir, "s2_a.frm"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer f.Close()
	tr, err := track.ReadTrack(f)
	if err != nil {
		t.Fatalf("ReadTrack() error = %v", err)
	}
	if tr.ID != "s2_a" || tr.Resonances != 3 || len(tr.Frames) != len(env) {
		t.Fatalf("track %s: %d resonances, %d frames", tr.ID, tr.Resonances, len(tr.Frames))
	}

	out, err := execute(t, "-c", cfgPath, "synth", "--params", filepath.Join(paramDir, "s1_a.txt"))
	if err != nil {
		t.Fatalf("synth: %v", err)
	}
	synth, err := matrixio.Read(strings.NewReader(out))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(synth) != len(env) || len(synth[0]) != 257 {
		t.Fatalf("synth = %dx%d", len(synth), len(synth[0]))
	}
}

func TestTrackRequiresStats(t *testing.T) {
	if _, err := execute(t, "track", "x.wav"); err == nil {
		t.Fatal("expected error without --stats")
	}
}
