package exporter

import (
	"fmt"
	"strings"

	"docwave/internal/composer"
)

// audioArgs builds the ffmpeg input and filter arguments placing each
// narration clip at its timeline offset and mixing looped background
// music underneath. Input index 0 is always the video stream, so audio
// inputs start at 1. Returns nil when the timeline carries no audio.
func audioArgs(tl *composer.Timeline, musicVolume float64) []string {
	placements := tl.AudioPlacements()
	if len(placements) == 0 && tl.MusicPath == "" {
		return nil
	}

	var inputs []string
	var filters []string
	var mixLabels []string
	inputIdx := 1

	for i, placement := range placements {
		inputs = append(inputs, "-i", placement.Path)
		delayMs := int(placement.Offset * 1000)
		filters = append(filters,
			fmt.Sprintf("[%d:a]adelay=%d:all=1[a%d]", inputIdx, delayMs, i))
		mixLabels = append(mixLabels, fmt.Sprintf("[a%d]", i))
		inputIdx++
	}

	if tl.MusicPath != "" {
		inputs = append(inputs, "-stream_loop", "-1", "-i", tl.MusicPath)
		filters = append(filters,
			fmt.Sprintf("[%d:a]atrim=0:%.3f,volume=%.3f[am]", inputIdx, tl.Duration, musicVolume))
		mixLabels = append(mixLabels, "[am]")
	}

	// normalize=0 keeps the mix additive so music stays under narration
	filters = append(filters,
		fmt.Sprintf("%samix=inputs=%d:duration=longest:normalize=0[aout]",
			strings.Join(mixLabels, ""), len(mixLabels)))

	args := inputs
	args = append(args,
		"-filter_complex", strings.Join(filters, ";"),
		"-map", "0:v",
		"-map", "[aout]",
		"-c:a", "aac",
		"-b:a", audioBitrate,
	)
	return args
}
