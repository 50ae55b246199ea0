package util

// Interlace merges two sequences element by element, alternating between
// them. When one runs out, the remainder of the other is appended in its
// original order. The audio analyzer uses this to pack spectrum and
// waveform rows into RG texel pairs.
func Interlace[T any](first, second []T) []T {
	out := make([]T, 0, len(first)+len(second))
	n := min(len(first), len(second))
	for i := 0; i < n; i++ {
		out = append(out, first[i], second[i])
	}
	out = append(out, first[n:]...)
	out = append(out, second[n:]...)
	return out
}

// Deinterlace splits an interlaced sequence back into its even and odd
// elements.
func Deinterlace[T any](slice []T) (first, second []T) {
	first = make([]T, 0, (len(slice)+1)/2)
	second = make([]T, 0, len(slice)/2)
	for i, v := range slice {
		if i%2 == 0 {
			first = append(first, v)
		} else {
			second = append(second, v)
		}
	}
	return first, second
}
