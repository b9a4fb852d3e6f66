package util

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"docwave/internal/storage"
	"docwave/log"

	"go.uber.org/zap"
)

// probeRunner runs ffprobe and returns its stdout. Swappable for tests.
var probeRunner = func(args ...string) ([]byte, error) {
	return exec.Command(storage.FfprobePath, args...).CombinedOutput()
}

// ProbeDuration returns the media duration in seconds via ffprobe.
func ProbeDuration(filePath string) (float64, error) {
	output, err := probeRunner(
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		filePath,
	)
	if err != nil {
		log.GetLogger().Error("ffprobe duration failed",
			zap.Error(err),
			zap.String("file", filePath),
			zap.String("output", string(output)))
		return 0, fmt.Errorf("probe duration of %s: %w", filePath, err)
	}

	duration, err := ParseProbeDuration(string(output))
	if err != nil {
		return 0, fmt.Errorf("probe duration of %s: %w", filePath, err)
	}
	return duration, nil
}

// ParseProbeDuration parses ffprobe's plain duration output.
func ParseProbeDuration(raw string) (float64, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, fmt.Errorf("empty ffprobe output")
	}
	// ffprobe may print warnings before the value; take the last line
	lines := strings.Split(trimmed, "\n")
	value := strings.TrimSpace(lines[len(lines)-1])

	duration, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", value, err)
	}
	if duration < 0 {
		return 0, fmt.Errorf("negative duration %v", duration)
	}
	return duration, nil
}
