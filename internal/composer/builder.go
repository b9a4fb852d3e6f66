package composer

import (
	"fmt"
	"image"
	"math/rand"
	"os"
	"strings"

	"docwave/internal/content"
	"docwave/internal/effects"
	"docwave/internal/types"
	"docwave/pkg/errors"
)

// kbProfile is the motion assignment for one visual.
type kbProfile struct {
	zoomStart float64
	zoomEnd   float64
	panX      float64
	panY      float64
}

// dataVisualProfile keeps charts and diagrams legible: barely-there
// zoom, near-zero pan.
func dataVisualProfile(rng *rand.Rand) kbProfile {
	return kbProfile{
		zoomStart: 1.0,
		zoomEnd:   1.12,
		panX:      (rng.Float64()*2 - 1) * 0.02,
		panY:      (rng.Float64()*2 - 1) * 0.02,
	}
}

// cinematicProfile randomizes motion for photos: independent start and
// end zoom draws, half the time swapped so the camera pulls out.
func cinematicProfile(rng *rand.Rand) kbProfile {
	start := 1.0 + rng.Float64()*0.1
	end := 1.15 + rng.Float64()*0.15
	if rng.Float64() < 0.5 {
		start, end = end, start
	}
	return kbProfile{
		zoomStart: start,
		zoomEnd:   end,
		panX:      (rng.Float64()*2 - 1) * KBPanMax,
		panY:      (rng.Float64()*2 - 1) * KBPanMax,
	}
}

// preparedVisual is one scene visual with its pre-fitted pixels and
// motion profile resolved up front so the frame generator stays cheap.
type preparedVisual struct {
	ci      content.ContentImage
	fitted  *image.RGBA
	card    *image.RGBA
	profile kbProfile
	isTable bool
}

// frameAt renders this visual at layout-local progress p in [0, 1].
// Tables are static cards and ignore p.
func (v *preparedVisual) frameAt(p float64, w, h int) *image.RGBA {
	if v.isTable {
		return v.card
	}
	return effects.KenBurnsFrame(v.fitted, p, w, h,
		v.profile.zoomStart, v.profile.zoomEnd, v.profile.panX, v.profile.panY)
}

// buildSceneClip constructs the lazily evaluated frame generator for
// one scene: duration from audio, layout dispatch, post chain.
func (c *Composer) buildSceneClip(scene types.SceneScript, input *content.ContentInput,
	audioPath, aiBackgroundPath string, logos []content.ContentImage) (*Clip, error) {

	duration := scene.DurationHint
	attachedAudio := ""
	if audioPath != "" {
		if _, err := os.Stat(audioPath); err != nil {
			return nil, errors.Wrap(errors.CodeFileNotFound,
				fmt.Sprintf("narration file for scene %d", scene.SceneNumber), err)
		}
		audioDuration, probeErr := c.probeDuration(audioPath)
		if probeErr != nil {
			return nil, probeErr
		}
		duration = audioDuration + 0.5
		attachedAudio = audioPath
	}
	if duration < MinSceneDuration {
		duration = MinSceneDuration
	}

	visuals := Gather(scene, input, aiBackgroundPath, c.width, c.height)
	layout := EffectiveLayout(scene.Layout(), len(visuals))

	// deterministic motion per scene: same script renders the same way
	rng := rand.New(rand.NewSource(int64(scene.SceneNumber)))

	prepared := make([]*preparedVisual, 0, len(visuals))
	for _, ci := range visuals {
		pv := &preparedVisual{ci: ci}
		if ci.Class() == types.ClassTable {
			pv.isTable = true
			pv.card = effects.RenderTableCard(ci.Image, c.width, c.height, effects.TableCardPadding)
		} else {
			pv.fitted = effects.FitImageToFrame(ci.Image, c.width, c.height, effects.OverscanFactor)
			if ci.IsDataVisual() {
				pv.profile = dataVisualProfile(rng)
			} else {
				pv.profile = cinematicProfile(rng)
			}
		}
		prepared = append(prepared, pv)
	}

	layoutFrame := c.layoutFrameFunc(layout, prepared, duration)

	var watermark image.Image
	if len(logos) > 0 {
		watermark = logos[0].Image
	}

	hasChartOrDiagram := false
	purePhoto := true
	for _, pv := range prepared {
		class := pv.ci.Class()
		if class == types.ClassChart || class == types.ClassDiagram {
			hasChartOrDiagram = true
		}
		if !pv.ci.IsFullBleed() {
			purePhoto = false
		}
	}

	keyPhrase := extractKeyPhrase(scene.Narration, 12)
	useCallout := hasChartOrDiagram && layout != types.LayoutPictureInPicture

	frameAt := func(t float64) *image.RGBA {
		frame := layoutFrame(t)
		frame = effects.ColorGrade(frame, 0.05, 1.1, 1.0)
		frame = effects.ApplyVignette(frame, 0.4)
		if watermark != nil {
			frame = effects.RenderLogoWatermark(frame, watermark,
				effects.LogoWatermarkScale, effects.LogoWatermarkOpacity,
				effects.CornerTopRight, 20)
		}

		opacity := 0.9 * effects.TextOpacityAtTime(t, duration,
			effects.TextFadeDuration, effects.TextFadeDuration)
		if opacity > 0 && keyPhrase != "" {
			if useCallout {
				frame = effects.RenderCalloutOverlay(frame, keyPhrase,
					effects.CalloutUpperRight, opacity, 28)
			} else if !purePhoto {
				frame = effects.RenderTextOverlay(frame, keyPhrase,
					effects.PositionLowerThird, opacity, 42, 0.75)
			}
		}
		return frame
	}

	return &Clip{
		Duration:  duration,
		AudioPath: attachedAudio,
		frameAt:   frameAt,
	}, nil
}

// layoutFrameFunc returns the layout-specific frame generator.
func (c *Composer) layoutFrameFunc(layout types.LayoutMode,
	prepared []*preparedVisual, duration float64) func(t float64) *image.RGBA {

	w, h := c.width, c.height

	switch layout {
	case types.LayoutCarousel:
		return c.carouselFrameFunc(prepared, duration)

	case types.LayoutSplitScreen:
		return func(t float64) *image.RGBA {
			p := t / duration
			left := prepared[0].frameAt(p, w, h)
			right := prepared[1].frameAt(p, w, h)
			return effects.RenderSplitScreen(left, right, w, h, effects.SplitScreenGap)
		}

	case types.LayoutPictureInPicture:
		background, inset := pickPiPVisuals(prepared)
		return func(t float64) *image.RGBA {
			bg := background.frameAt(t/duration, w, h)
			if inset == nil {
				return bg
			}
			return effects.RenderPictureInPicture(bg, inset.ci.Image, w, h,
				effects.PIPScale, effects.PIPPadding, effects.PIPCornerRadius,
				effects.PIPShadowOffset, effects.CornerBottomRight)
		}

	default: // single
		return func(t float64) *image.RGBA {
			return prepared[0].frameAt(t/duration, w, h)
		}
	}
}

// carouselFrameFunc divides the scene into one segment per visual and
// crossfades near each boundary. The crossfade window is capped at a
// quarter of the segment so it never swallows short segments; a
// non-positive window degrades to a hard cut.
func (c *Composer) carouselFrameFunc(prepared []*preparedVisual, duration float64) func(t float64) *image.RGBA {
	w, h := c.width, c.height
	n := len(prepared)
	segment := duration / float64(n)

	crossfade := CarouselCrossfadeDuration
	if limit := duration / float64(n*4); limit < crossfade {
		crossfade = limit
	}
	if crossfade < 0 {
		crossfade = 0
	}

	return func(t float64) *image.RGBA {
		idx := int(t / segment)
		if idx >= n {
			idx = n - 1
		}
		tInSeg := t - float64(idx)*segment
		p := tInSeg / segment

		frame := prepared[idx].frameAt(p, w, h)

		if crossfade > 0 && idx < n-1 && tInSeg > segment-crossfade {
			blend := (tInSeg - (segment - crossfade)) / crossfade
			next := prepared[idx+1].frameAt(0, w, h)
			frame = effects.Crossfade(frame, next, blend)
		}
		return frame
	}
}

// pickPiPVisuals chooses the full-frame backdrop (preferring the AI
// background or any full-bleed image) and the inset (preferring a
// data visual, else the first non-background visual).
func pickPiPVisuals(prepared []*preparedVisual) (background, inset *preparedVisual) {
	for _, pv := range prepared {
		if pv.ci.Source == "ai_generated" || pv.ci.IsFullBleed() {
			background = pv
			break
		}
	}
	if background == nil {
		background = prepared[0]
	}

	for _, pv := range prepared {
		if pv != background && pv.ci.IsDataVisual() {
			inset = pv
			return
		}
	}
	for _, pv := range prepared {
		if pv != background {
			inset = pv
			return
		}
	}
	return
}

// extractKeyPhrase pulls a short display phrase from narration: the
// first sentence with at least three words, truncated.
func extractKeyPhrase(text string, maxWords int) string {
	cleaned := strings.ReplaceAll(text, "...", ".")
	for _, sentence := range strings.Split(cleaned, ".") {
		words := strings.Fields(sentence)
		if len(words) >= 3 {
			if len(words) > maxWords {
				words = words[:maxWords]
			}
			return strings.Join(words, " ")
		}
	}
	words := strings.Fields(text)
	if len(words) > maxWords {
		words = words[:maxWords]
	}
	return strings.Join(words, " ")
}
