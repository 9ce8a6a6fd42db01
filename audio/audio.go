// Package audio decodes WAV, MP3, and FLAC files into the mono,
// fixed-sample-rate float32 buffers the engine package consumes. Anything
// else is handed to ffmpeg first; audio is the only package besides engine
// allowed to surface engine.ErrInvalidInput, since a malformed or
// unreadable file is exactly that.
package audio

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"soundtrace/engine"
)

// TargetSampleRate is the sample rate every decoded buffer is resampled
// to before it reaches the engine.
const TargetSampleRate = 44100

// pcmData is the decoder-agnostic intermediate shape every format-specific
// loader produces, ahead of the shared mono-down/resample pipeline.
type pcmData struct {
	samples    []float64
	sampleRate int
	channels   int
}

// Load reads path, decodes it by extension (falling back to an ffmpeg
// transcode for anything not natively supported), and returns a mono
// buffer at TargetSampleRate ready for engine.Ingest/engine.Recognize.
func Load(ctx context.Context, path string) (*engine.AudioBuffer, error) {
	ext := strings.ToLower(filepath.Ext(path))

	var (
		pcm *pcmData
		err error
	)

	switch ext {
	case ".wav":
		pcm, err = loadWAV(path)
	case ".mp3":
		pcm, err = loadMP3(path)
	case ".flac":
		pcm, err = loadFLAC(path)
	default:
		converted, cerr := ConvertToWAV(ctx, path)
		if cerr != nil {
			return nil, fmt.Errorf("unsupported audio format %q: %w: %w", ext, engine.ErrInvalidInput, cerr)
		}
		defer os.Remove(converted)
		pcm, err = loadWAV(converted)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", engine.ErrInvalidInput, err)
	}

	mono := toMono(pcm)
	resampled := resample(mono, TargetSampleRate)

	samples := make([]float32, len(resampled.samples))
	for i, s := range resampled.samples {
		samples[i] = float32(s)
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: no audio samples decoded from %q", engine.ErrInvalidInput, path)
	}

	return &engine.AudioBuffer{Samples: samples, SampleRate: resampled.sampleRate}, nil
}

// Duration reports the length of a decoded buffer in seconds.
func Duration(buf *engine.AudioBuffer) float64 {
	if buf == nil || buf.SampleRate == 0 {
		return 0
	}
	return float64(len(buf.Samples)) / float64(buf.SampleRate)
}
