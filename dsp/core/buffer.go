package core

// EnsureLen resizes buf to n elements, allocating only when its capacity is
// too small. Contents are not cleared.
func EnsureLen(buf []float64, n int) []float64 {
	if n <= 0 {
		return buf[:0]
	}
	if cap(buf) < n {
		return make([]float64, n)
	}
	return buf[:n]
}

// Fill sets every element of buf to v.
func Fill(buf []float64, v float64) {
	for i := range buf {
		buf[i] = v
	}
}

// Reciprocal writes 1/src[i] into dst[i] for every element of src.
// dst and src may alias.
func Reciprocal(dst, src []float64) {
	if len(src) == 0 {
		return
	}

	_ = dst[len(src)-1]
	for i, v := range src {
		dst[i] = 1 / v
	}
}

// CopyInto copies the leading elements of src that fit into dst and returns
// how many were copied.
func CopyInto(dst, src []float64) int {
	return copy(dst, src)
}
