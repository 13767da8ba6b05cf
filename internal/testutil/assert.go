package testutil

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-formant/dsp/core"
)

// RequireSliceNearlyEqual fails t unless got and want have the same length
// and every pair differs by at most eps. An eps of 0 demands bit equality.
func RequireSliceNearlyEqual(t testing.TB, got, want []float64, eps float64) {
	t.Helper()
	if i, ok := firstMismatch(got, want, eps); !ok {
		if i < 0 {
			t.Fatalf("len = %d, want %d", len(got), len(want))
		}
		t.Fatalf("bin %d: got %v, want %v (eps %v)", i, got[i], want[i], eps)
	}
}

// RequireFramesNearlyEqual is RequireSliceNearlyEqual for frame sequences
// such as envelopes or parameter matrices.
func RequireFramesNearlyEqual(t testing.TB, got, want [][]float64, eps float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("frames = %d, want %d", len(got), len(want))
	}
	for f := range got {
		if i, ok := firstMismatch(got[f], want[f], eps); !ok {
			if i < 0 {
				t.Fatalf("frame %d: len = %d, want %d", f, len(got[f]), len(want[f]))
			}
			t.Fatalf("frame %d bin %d: got %v, want %v (eps %v)", f, i, got[f][i], want[f][i], eps)
		}
	}
}

// RequireFinite fails t if any value is NaN or infinite.
func RequireFinite(t testing.TB, data []float64) {
	t.Helper()
	for i, v := range data {
		if !core.IsFinite(v) {
			t.Fatalf("bin %d: non-finite value %v", i, v)
		}
	}
}

// firstMismatch returns the index of the first pair farther apart than
// eps, or -1 on a length mismatch. ok is true when the slices agree.
func firstMismatch(got, want []float64, eps float64) (int, bool) {
	if len(got) != len(want) {
		return -1, false
	}
	for i := range got {
		if math.Abs(got[i]-want[i]) > eps {
			return i, false
		}
	}
	return 0, true
}
