package pcm

// Decimate downsamples float32 samples from srcRate to dstRate by
// nearest-sample selection. This is deliberately not bandlimited
// resampling: the live endpoint tolerates the aliasing, and the
// decimator costs one index computation per output sample. Use the
// resampler package where quality matters (playback capture).
//
// srcRate must be >= dstRate; equal rates return the input unchanged.
func Decimate(samples []float32, srcRate, dstRate int) []float32 {
	if srcRate == dstRate || len(samples) == 0 {
		return samples
	}
	ratio := float64(srcRate) / float64(dstRate)
	n := int(float64(len(samples)) / ratio)
	out := make([]float32, n)
	for i := range out {
		out[i] = samples[int(float64(i)*ratio)]
	}
	return out
}

// F32ToS16LE converts normalized float32 samples to signed 16-bit
// little-endian PCM bytes, clipping to [-1, 1].
func F32ToS16LE(samples []float32) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		v := int16(s * 32767)
		out[i*2] = byte(v)
		out[i*2+1] = byte(v >> 8)
	}
	return out
}

// S16LEToF32 converts signed 16-bit little-endian PCM bytes to
// normalized float32 samples. A trailing odd byte is ignored.
func S16LEToF32(data []byte) []float32 {
	n := len(data) / 2
	out := make([]float32, n)
	for i := range out {
		v := int16(data[i*2]) | int16(data[i*2+1])<<8
		out[i] = float32(v) / 32768
	}
	return out
}
