package audio

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"

	"soundtrace/utils"
)

// ConvertToWAV shells out to ffmpeg to transcode any container ffmpeg
// understands into a 16-bit PCM mono WAV file at TargetSampleRate. Callers
// own the returned path and must remove it once done.
func ConvertToWAV(ctx context.Context, inputPath string) (string, error) {
	if err := utils.CreateFolder("tmp"); err != nil {
		return "", err
	}

	id, err := utils.GenerateUniqueID()
	if err != nil {
		return "", err
	}
	outputFile := filepath.Join("tmp", id+".wav")

	cmd := exec.CommandContext(ctx,
		"ffmpeg",
		"-y",
		"-i", inputPath,
		"-c", "pcm_s16le",
		"-ar", fmt.Sprint(TargetSampleRate),
		"-ac", "1",
		outputFile,
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("ffmpeg transcode failed: %w, output: %s", err, output)
	}

	return outputFile, nil
}

// ExtractChunkAsWAV extracts a bounded time segment from any file ffmpeg
// can read, without loading the whole file into memory first. Used by the
// "save" path when a manifest entry sets options.skipSeconds.
func ExtractChunkAsWAV(ctx context.Context, inputPath string, startSec, durationSec float64) (string, error) {
	if err := utils.CreateFolder("tmp"); err != nil {
		return "", err
	}

	id, err := utils.GenerateUniqueID()
	if err != nil {
		return "", err
	}
	outputFile := filepath.Join("tmp", "chunk_"+id+".wav")

	cmd := exec.CommandContext(ctx,
		"ffmpeg", "-y",
		"-ss", fmt.Sprintf("%.3f", startSec),
		"-t", fmt.Sprintf("%.3f", durationSec),
		"-i", inputPath,
		"-c", "pcm_s16le",
		"-ar", fmt.Sprint(TargetSampleRate),
		"-ac", "1",
		outputFile,
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("ffmpeg chunk extraction failed: %w, output: %s", err, output)
	}

	return outputFile, nil
}

// GetAudioDuration queries ffprobe for a file's duration in seconds, used
// by the "save" path to work out how much audio remains after skipSeconds.
func GetAudioDuration(ctx context.Context, inputPath string) (float64, error) {
	cmd := exec.CommandContext(ctx,
		"ffprobe",
		"-v", "quiet",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		inputPath,
	)

	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe duration query failed: %w", err)
	}

	var seconds float64
	if _, err := fmt.Sscanf(string(out), "%f", &seconds); err != nil {
		return 0, fmt.Errorf("failed to parse ffprobe duration output: %w", err)
	}
	return seconds, nil
}
