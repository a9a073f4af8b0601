package transcription

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// FFmpegConverter normalizes arbitrary audio/video input to 16 kHz mono
// PCM WAV, which is what the transcription provider wants. Requires the
// ffmpeg binary on PATH (or an explicit path).
type FFmpegConverter struct {
	binPath string
}

func NewFFmpegConverter(binPath string) *FFmpegConverter {
	if binPath == "" {
		binPath = "ffmpeg"
	}
	return &FFmpegConverter{binPath: binPath}
}

// ConvertToWAV writes the converted file into a fresh temp dir and returns
// its path plus a cleanup func the caller must run.
func (c *FFmpegConverter) ConvertToWAV(ctx context.Context, srcPath string) (string, func(), error) {
	tmpDir, err := os.MkdirTemp("", "tutor-audio-")
	if err != nil {
		return "", nil, err
	}
	cleanup := func() { _ = os.RemoveAll(tmpDir) }

	dst := filepath.Join(tmpDir, "converted.wav")
	cmd := exec.CommandContext(ctx, c.binPath,
		"-y",
		"-i", srcPath,
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		dst,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("ffmpeg convert %s: %w (stderr: %s)", filepath.Base(srcPath), err, tail(stderr.String(), 400))
	}
	return dst, cleanup, nil
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
