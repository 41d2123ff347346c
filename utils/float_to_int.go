package utils

// Float32ToInt16 converts one sample to signed 16-bit PCM, clamping to
// [-1, 1] first. This is the single clipping point of the output path.
func Float32ToInt16(x float32) int16 {
	// Clamp and scale
	if x > 1 {
		x = 1
	} else if x < -1 {
		x = -1
	}

	// Use 32767 for positive max to avoid overflow
	return int16(x * 32767.0)
}

// Float32ToInt16Slice converts src into dst sample by sample. dst must be
// at least as long as src.
func Float32ToInt16Slice(dst []int16, src []float32) {
	for i, x := range src {
		dst[i] = Float32ToInt16(x)
	}
}
