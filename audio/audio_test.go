package audio

import (
	"bytes"
	"context"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestWAV(t *testing.T, sampleRate, numSamples, channels int) string {
	t.Helper()

	buf := bytes.NewBuffer(nil)
	buf.WriteString("RIFF")
	binary.Write(buf, binary.LittleEndian, uint32(0))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(buf, binary.LittleEndian, uint32(16))
	binary.Write(buf, binary.LittleEndian, uint16(1))
	binary.Write(buf, binary.LittleEndian, uint16(channels))
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate*channels*2))
	binary.Write(buf, binary.LittleEndian, uint16(channels*2))
	binary.Write(buf, binary.LittleEndian, uint16(16))
	buf.WriteString("data")
	binary.Write(buf, binary.LittleEndian, uint32(numSamples*channels*2))

	for i := 0; i < numSamples; i++ {
		tm := float64(i) / float64(sampleRate)
		amp := 0.5 * math.Sin(2*math.Pi*440*tm)
		sample := int16(amp * 32767)
		for c := 0; c < channels; c++ {
			binary.Write(buf, binary.LittleEndian, sample)
		}
	}

	data := buf.Bytes()
	binary.LittleEndian.PutUint32(data[4:8], uint32(len(data)-8))

	path := filepath.Join(t.TempDir(), "test.wav")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestLoadWAV_StereoDownmixAndResample(t *testing.T) {
	path := writeTestWAV(t, 22050, 22050, 2)

	buf, err := Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, TargetSampleRate, buf.SampleRate)
	assert.InDelta(t, 1.0, Duration(buf), 0.01)
}

func TestLoadWAV_MonoPassthroughSampleRate(t *testing.T) {
	path := writeTestWAV(t, TargetSampleRate, TargetSampleRate/2, 1)

	buf, err := Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, TargetSampleRate, buf.SampleRate)
	assert.InDelta(t, 0.5, Duration(buf), 0.01)
}

func TestToMono_AveragesChannels(t *testing.T) {
	stereo := &pcmData{
		samples:    []float64{1.0, -1.0, 0.5, 0.5},
		sampleRate: 44100,
		channels:   2,
	}
	mono := toMono(stereo)
	require.Len(t, mono.samples, 2)
	assert.InDelta(t, 0.0, mono.samples[0], 1e-9)
	assert.InDelta(t, 0.5, mono.samples[1], 1e-9)
}

func TestResample_PreservesDuration(t *testing.T) {
	src := &pcmData{
		samples:    make([]float64, 8000),
		sampleRate: 8000,
		channels:   1,
	}
	out := resample(src, 44100)
	assert.Equal(t, 44100, out.sampleRate)
	assert.InDelta(t, 1.0, float64(len(out.samples))/float64(out.sampleRate), 0.01)
}

func TestLoad_UnsupportedExtensionWithoutFfmpeg(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.ogg")
	require.NoError(t, os.WriteFile(path, []byte("not real audio"), 0o644))

	_, err := Load(context.Background(), path)
	require.Error(t, err)
}
