package whisperx

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// ExtractAudio extracts one audio track from a video file. The output is a
// mono 16kHz WAV file suitable for WhisperX. audioTrack is the audio-relative
// stream index (0 = first audio track).
func ExtractAudio(ctx context.Context, ffmpegBinary, source string, audioTrack int, dest string) error {
	if audioTrack < 0 {
		return fmt.Errorf("extract audio: invalid audio track index %d", audioTrack)
	}
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-map", fmt.Sprintf("0:a:%d", audioTrack),
		"-vn",
		"-sn",
		"-dn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		dest,
	}
	cmd := exec.CommandContext(ctx, ffmpegBinary, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg extract: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

func buildFFmpegExtractArgs(source string, audioTrack int, dest string) []string {
	return []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-map", fmt.Sprintf("0:a:%d", audioTrack),
		"-vn",
		"-sn",
		"-dn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		dest,
	}
}
