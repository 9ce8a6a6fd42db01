package engine

import (
	"math"
	"math/rand"
)

// chirp generates a linear frequency sweep from f0 to f1 Hz over
// durationSec seconds at sr Hz, used as a synthetic, easily-recognizable
// reference track in tests.
func chirp(f0, f1, durationSec float64, sr int) []float32 {
	n := int(durationSec * float64(sr))
	out := make([]float32, n)
	k := (f1 - f0) / durationSec
	for i := 0; i < n; i++ {
		t := float64(i) / float64(sr)
		phase := 2 * math.Pi * (f0*t + k*t*t/2)
		out[i] = float32(math.Sin(phase))
	}
	return out
}

// toneMixture synthesizes a sum of a handful of fixed sinusoids, standing
// in for "pure tone" reference material distinct from chirp or noise.
func toneMixture(freqs []float64, durationSec float64, sr int) []float32 {
	n := int(durationSec * float64(sr))
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(sr)
		var sum float64
		for _, f := range freqs {
			sum += math.Sin(2 * math.Pi * f * t)
		}
		out[i] = float32(sum / float64(len(freqs)))
	}
	return out
}

// whiteNoise returns durationSec seconds of seeded pseudo-random noise in
// [-1, 1], standing in for "speech-like" unstructured reference material.
func whiteNoise(seed int64, durationSec float64, sr int) []float32 {
	n := int(durationSec * float64(sr))
	rng := rand.New(rand.NewSource(seed))
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(rng.Float64()*2 - 1)
	}
	return out
}

func slice(samples []float32, startSec, durationSec float64, sr int) []float32 {
	start := int(startSec * float64(sr))
	length := int(durationSec * float64(sr))
	if start < 0 {
		start = 0
	}
	end := start + length
	if end > len(samples) {
		end = len(samples)
	}
	if start > end {
		start = end
	}
	out := make([]float32, end-start)
	copy(out, samples[start:end])
	return out
}
