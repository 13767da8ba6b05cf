package envelope

// Smooth applies passes rounds of trough smoothing to x and returns a new slice.
//
// Each pass runs two sub-passes over the interior points, each reading only
// the previous sub-pass output:
//
//   - A: a strict local minimum is replaced by the mean of its neighbors.
//   - B: a point not above both neighbors is replaced by
//     0.25*left + 0.5*center + 0.25*right.
//
// Local maxima satisfy neither condition, so peaks keep their height. The
// first and last points are never modified. passes <= 0 returns a copy.
func Smooth(x []float64, passes int) []float64 {
	out := make([]float64, len(x))
	copy(out, x)
	if passes <= 0 || len(x) < 3 {
		return out
	}

	prev := make([]float64, len(x))
	for range passes {
		copy(prev, out)
		fillTroughs(out, prev)

		copy(prev, out)
		flattenTroughs(out, prev)
	}

	return out
}

func fillTroughs(dst, src []float64) {
	for j := 1; j < len(src)-1; j++ {
		l, c, r := src[j-1], src[j], src[j+1]
		if c < l && c < r {
			dst[j] = 0.5 * (l + r)
		}
	}
}

func flattenTroughs(dst, src []float64) {
	for j := 1; j < len(src)-1; j++ {
		l, c, r := src[j-1], src[j], src[j+1]
		if c <= l || c <= r {
			dst[j] = 0.25*l + 0.5*c + 0.25*r
		}
	}
}
