package core

import "math"

// Clamp limits value to the inclusive range [min, max].
func Clamp(value, min, max float64) float64 {
	if min > max {
		min, max = max, min
	}

	if value < min {
		return min
	}

	if value > max {
		return max
	}

	return value
}

// IsFinite reports whether x is neither NaN nor an infinity.
func IsFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// DBToLinear converts dB to linear amplitude (20*log10 convention).
func DBToLinear(db float64) float64 {
	return math.Pow(10, db/20)
}

// LinearToDB converts linear amplitude to dB (20*log10 convention).
// Returns -Inf for zero and NaN for negative values.
func LinearToDB(linear float64) float64 {
	if linear < 0 {
		return math.NaN()
	}

	if linear == 0 {
		return math.Inf(-1)
	}

	return 20 * math.Log10(linear)
}

// FlooredDB returns LinearToDB(linear + floor).
//
// The additive floor keeps near-zero magnitudes finite; with floor > 0 and
// linear >= 0 the result is never -Inf.
func FlooredDB(linear, floor float64) float64 {
	return LinearToDB(linear + floor)
}

// FlooredDBBlock writes FlooredDB(scale*src[i], floor) into dst.
// dst and src may alias.
func FlooredDBBlock(dst, src []float64, scale, floor float64) {
	if len(src) == 0 {
		return
	}

	_ = dst[len(src)-1]
	for i, v := range src {
		dst[i] = FlooredDB(scale*v, floor)
	}
}
