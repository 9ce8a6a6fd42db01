package engine

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

const dbFloor = 1e-10

// spectrogram computes the magnitude-in-dB time-frequency grid for samples
// captured at sr. Frames are centered on sample t*Hop with reflection
// padding at both edges, so the first frame is centered on sample 0 and the
// last covers at least the final sample. The result is normalized so its
// maximum cell equals 0 dB.
func (e *Engine) spectrogram(samples []float32, sr int) (*Spectrogram, error) {
	cfg := e.cfg
	if sr != cfg.SampleRate {
		return nil, wrapInvalidf("sample rate mismatch: got %d, want %d", sr, cfg.SampleRate)
	}
	if len(samples) < 1 {
		return nil, wrapInvalid("audio buffer is empty")
	}

	hop := cfg.Hop()
	half := cfg.NFFT / 2

	padded := reflectPad(samples, half)

	numFrames := 1
	if len(samples) > 1 {
		numFrames = (len(samples)-1)/hop + 1
	}

	window := hannWindow(cfg.NFFT)
	freqBins := cfg.FreqBins()

	grid := make([][]float64, numFrames)
	maxDB := math.Inf(-1)

	for t := 0; t < numFrames; t++ {
		start := t * hop
		frame := make([]float64, cfg.NFFT)
		for i := 0; i < cfg.NFFT; i++ {
			idx := start + i
			if idx < len(padded) {
				frame[i] = float64(padded[idx]) * window[i]
			}
		}

		spectrum := fft.FFTReal(frame)
		row := make([]float64, freqBins)
		for f := 0; f < freqBins; f++ {
			mag := cmplx.Abs(spectrum[f])
			db := 20 * math.Log10(math.Max(mag, dbFloor))
			row[f] = db
			if db > maxDB {
				maxDB = db
			}
		}
		grid[t] = row
	}

	for t := range grid {
		for f := range grid[t] {
			grid[t][f] -= maxDB
		}
	}

	return &Spectrogram{Data: grid, F: freqBins, T: numFrames}, nil
}

// hannWindow returns a length-n Hann window: w(i) = 0.5*(1 - cos(2*pi*i/(n-1))).
func hannWindow(n int) []float64 {
	w := make([]float64, n)
	if n == 1 {
		w[0] = 1
		return w
	}
	for i := 0; i < n; i++ {
		w[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
	}
	return w
}

// reflectPad pads samples on both sides by n using edge reflection, so
// centered STFT framing can start its first window at sample 0.
func reflectPad(samples []float32, n int) []float32 {
	out := make([]float32, 0, len(samples)+2*n)
	for i := n; i > 0; i-- {
		idx := i
		if idx >= len(samples) {
			idx = len(samples) - 1
		}
		out = append(out, samples[idx])
	}
	out = append(out, samples...)
	for i := 0; i < n; i++ {
		idx := len(samples) - 2 - i
		if idx < 0 {
			idx = 0
		}
		out = append(out, samples[idx])
	}
	return out
}
