package audio

import "math"

// toMono averages interleaved channels down to a single channel. Buffers
// that are already mono pass through unchanged.
func toMono(data *pcmData) *pcmData {
	if data.channels <= 1 {
		return data
	}

	frames := len(data.samples) / data.channels
	out := make([]float64, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for ch := 0; ch < data.channels; ch++ {
			sum += data.samples[i*data.channels+ch]
		}
		out[i] = sum / float64(data.channels)
	}

	return &pcmData{samples: out, sampleRate: data.sampleRate, channels: 1}
}

// resample converts a mono buffer to targetRate via linear interpolation.
func resample(data *pcmData, targetRate int) *pcmData {
	if data.sampleRate == targetRate || len(data.samples) == 0 {
		return &pcmData{samples: data.samples, sampleRate: targetRate, channels: 1}
	}

	ratio := float64(targetRate) / float64(data.sampleRate)
	origFrames := len(data.samples)
	newFrames := int(float64(origFrames) * ratio)

	out := make([]float64, newFrames)
	for i := 0; i < newFrames; i++ {
		origPos := float64(i) / ratio
		idx1 := int(math.Floor(origPos))
		idx2 := idx1 + 1
		frac := origPos - float64(idx1)

		if idx1 >= origFrames {
			idx1 = origFrames - 1
		}
		if idx2 >= origFrames {
			idx2 = origFrames - 1
		}

		out[i] = data.samples[idx1]*(1-frac) + data.samples[idx2]*frac
	}

	return &pcmData{samples: out, sampleRate: targetRate, channels: 1}
}
