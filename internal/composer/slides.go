package composer

import (
	"fmt"
	"image"
	"os"

	"go.uber.org/zap"

	"docwave/internal/effects"
	"docwave/internal/types"
	"docwave/log"
	"docwave/pkg/errors"
)

const (
	MinSlideDuration  = 3.0
	slideAudioPadding = 1.0
)

// ComposeSlides builds the presentation timeline: each rendered slide
// image becomes a static clip held for its narration length plus a
// breathing pause. slideImagePaths and audioPaths align with
// deck.Slides by position; an empty audio path means a silent slide.
func (c *Composer) ComposeSlides(deck *types.SlideDeck, slideImagePaths, audioPaths []string, musicPath string) (*Timeline, error) {
	if len(deck.Slides) == 0 {
		return nil, errors.New(errors.CodeNoScenes, "deck contains no slides")
	}
	if len(slideImagePaths) != len(deck.Slides) {
		return nil, errors.New(errors.CodeInvalidParams,
			fmt.Sprintf("have %d slide images for %d slides", len(slideImagePaths), len(deck.Slides)))
	}

	clips := make([]*Clip, 0, len(deck.Slides))
	for i, slide := range deck.Slides {
		frame, err := c.loadSlideFrame(slideImagePaths[i])
		if err != nil {
			return nil, err
		}

		duration := MinSlideDuration
		audioPath := ""
		if i < len(audioPaths) && audioPaths[i] != "" {
			if _, statErr := os.Stat(audioPaths[i]); statErr == nil {
				audioDuration, probeErr := c.probeDuration(audioPaths[i])
				if probeErr != nil {
					return nil, probeErr
				}
				if d := audioDuration + slideAudioPadding; d > duration {
					duration = d
				}
				audioPath = audioPaths[i]
			} else {
				log.GetLogger().Warn("slide narration file missing",
					zap.Int("slide", slide.SlideNumber),
					zap.String("path", audioPaths[i]))
			}
		}

		clips = append(clips, NewClip(duration, audioPath, func(t float64) *image.RGBA {
			return frame
		}))
		log.GetLogger().Debug("slide clip built",
			zap.Int("slide", slide.SlideNumber),
			zap.Float64("duration", duration))
	}

	return c.assemble(clips, musicPath), nil
}

// loadSlideFrame decodes a slide image and letterboxes it onto the
// output geometry without Ken Burns overscan.
func (c *Composer) loadSlideFrame(path string) (*image.RGBA, error) {
	img, err := decodeVisualFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.CodeImageDecode, fmt.Sprintf("slide image %s", path), err)
	}
	return effects.FitImageToFrame(img, c.width, c.height, 1.0), nil
}
