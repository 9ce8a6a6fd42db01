package audio

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/mewkiz/flac"
)

func loadFLAC(path string) (*pcmData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open flac file: %w", err)
	}
	defer f.Close()

	stream, err := flac.NewSeek(f)
	if err != nil {
		return nil, fmt.Errorf("failed to create flac decoder: %w", err)
	}
	defer stream.Close()

	info := stream.Info
	channels := int(info.NChannels)
	maxValue := math.Pow(2, float64(info.BitsPerSample-1)) - 1

	samples := make([]float64, 0, int(info.NSamples)*channels)
	for {
		frame, ferr := stream.ParseNext()
		if ferr == io.EOF {
			break
		}
		if ferr != nil {
			return nil, fmt.Errorf("failed to parse flac frame: %w", ferr)
		}

		frameLen := len(frame.Subframes[0].Samples)
		for i := 0; i < frameLen; i++ {
			for ch := 0; ch < channels; ch++ {
				samples = append(samples, float64(frame.Subframes[ch].Samples[i])/maxValue)
			}
		}
	}

	return &pcmData{samples: samples, sampleRate: int(info.SampleRate), channels: channels}, nil
}
