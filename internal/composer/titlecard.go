package composer

import (
	"image"
	"image/color"
	"image/draw"

	"docwave/internal/effects"
)

// buildTitleCard synthesizes an intro/outro clip: centered text that
// fades in and out over a dark background.
func (c *Composer) buildTitleCard(text string, duration float64) *Clip {
	base := image.NewRGBA(image.Rect(0, 0, c.width, c.height))
	draw.Draw(base, base.Bounds(),
		image.NewUniform(color.NRGBA{R: 20, G: 20, B: 30, A: 255}), image.Point{}, draw.Src)

	frameAt := func(t float64) *image.RGBA {
		opacity := effects.TextOpacityAtTime(t, duration,
			effects.TextFadeDuration, effects.TextFadeDuration)
		if opacity <= 0 || text == "" {
			return effects.CloneFrame(base)
		}
		return effects.RenderTextOverlay(base, text, effects.PositionTitle, opacity, 42, 0.75)
	}

	return &Clip{Duration: duration, frameAt: frameAt}
}
