package audio

import (
	"fmt"
	"io"
	"os"

	"github.com/hajimehoshi/go-mp3"
)

// mp3 streams are always decoded as 16-bit stereo PCM by go-mp3, regardless
// of the source file's original channel layout.
const mp3Channels = 2

func loadMP3(path string) (*pcmData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open mp3 file: %w", err)
	}
	defer f.Close()

	decoder, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, fmt.Errorf("failed to create mp3 decoder: %w", err)
	}

	pcmBytes, err := io.ReadAll(decoder)
	if err != nil {
		return nil, fmt.Errorf("failed to read mp3 pcm data: %w", err)
	}

	numSamples := len(pcmBytes) / 4
	samples := make([]float64, numSamples*mp3Channels)
	for i := 0; i < numSamples; i++ {
		for ch := 0; ch < mp3Channels; ch++ {
			idx := i*4 + ch*2
			v := int16(pcmBytes[idx]) | int16(pcmBytes[idx+1])<<8
			samples[i*mp3Channels+ch] = float64(v) / 32768.0
		}
	}

	return &pcmData{samples: samples, sampleRate: decoder.SampleRate(), channels: mp3Channels}, nil
}
