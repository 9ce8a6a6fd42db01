package audio

import (
	"fmt"
	"math"
	"os"

	wavdec "github.com/go-audio/wav"
)

func loadWAV(path string) (*pcmData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open wav file: %w", err)
	}
	defer f.Close()

	decoder := wavdec.NewDecoder(f)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("invalid wav file %q", path)
	}

	format := decoder.Format()
	channels := int(format.NumChannels)
	bitDepth := int(decoder.BitDepth)

	decoder.FwdToPCM()
	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to read wav pcm data: %w", err)
	}

	maxValue := math.Pow(2, float64(bitDepth-1))
	samples := make([]float64, len(buf.Data))
	for i, s := range buf.Data {
		samples[i] = float64(s) / maxValue
	}

	return &pcmData{samples: samples, sampleRate: int(format.SampleRate), channels: channels}, nil
}
