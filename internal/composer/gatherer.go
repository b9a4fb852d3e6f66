package composer

import (
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"go.uber.org/zap"

	"docwave/internal/content"
	"docwave/internal/types"
	"docwave/log"
)

// Gather resolves the visuals for one scene in priority order:
// explicitly assigned pool images (logos excluded), then the scene's
// AI-generated background, then section images as a fallback when
// nothing was assigned, then a synthesized gradient.
func Gather(scene types.SceneScript, input *content.ContentInput,
	aiBackgroundPath string, frameW, frameH int) []content.ContentImage {

	var visuals []content.ContentImage

	for _, idx := range scene.UseUploadedImages {
		if idx < 0 || idx >= len(input.AllImages) {
			continue
		}
		ci := input.AllImages[idx]
		if ci.IsLogo() {
			continue
		}
		visuals = append(visuals, ci)
	}

	if aiBackgroundPath != "" {
		if img, err := decodeVisualFile(aiBackgroundPath); err == nil {
			ci := content.NewRawImage(img, "AI Background", "ai_generated").
				WithClassification(types.Classification{
					Classification:       string(types.ClassPhoto),
					Description:          "AI-generated atmospheric background",
					VisualComplexity:     string(types.ComplexityMedium),
					SuggestedHoldSeconds: 5.0,
				})
			visuals = append(visuals, ci)
		} else {
			log.GetLogger().Warn("AI background unreadable, falling back",
				zap.Int("scene", scene.SceneNumber),
				zap.String("path", aiBackgroundPath),
				zap.Error(err))
		}
	}

	if len(visuals) == 0 {
		for _, sectionNum := range scene.SourcePages {
			if sectionNum < 1 || sectionNum > len(input.Sections) {
				continue
			}
			for _, ci := range input.Sections[sectionNum-1].Images {
				if !ci.IsLogo() {
					visuals = append(visuals, ci)
				}
			}
		}
	}

	if len(visuals) == 0 {
		visuals = append(visuals, gradientVisual(frameW, frameH))
	}

	return visuals
}

// GatherLogos collects every logo-classified image for watermark use.
func GatherLogos(input *content.ContentInput) []content.ContentImage {
	var logos []content.ContentImage
	for _, ci := range input.AllImages {
		if ci.IsLogo() {
			logos = append(logos, ci)
		}
	}
	return logos
}

// EffectiveLayout downgrades multi-visual layouts when too few
// visuals were gathered. Planner layout requests are advisory.
func EffectiveLayout(requested types.LayoutMode, visualCount int) types.LayoutMode {
	switch requested {
	case types.LayoutSplitScreen, types.LayoutCarousel:
		if visualCount < 2 {
			return types.LayoutSingle
		}
	}
	return requested
}

// gradientVisual synthesizes the dark blue-to-dark fallback, oversized
// so Ken Burns motion has room.
func gradientVisual(frameW, frameH int) content.ContentImage {
	w, h := frameW+200, frameH+200
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		ratio := float64(y) / float64(h)
		r := uint8(10 + 15*ratio)
		g := uint8(15 + 10*(1-ratio))
		b := uint8(30 + 25*(1-ratio))
		for x := 0; x < w; x++ {
			i := img.PixOffset(x, y)
			img.Pix[i] = r
			img.Pix[i+1] = g
			img.Pix[i+2] = b
			img.Pix[i+3] = 0xff
		}
	}
	return content.NewRawImage(img, "Gradient", "generated").
		WithClassification(types.Classification{
			Classification:       string(types.ClassDecorative),
			Description:          "Default gradient background",
			VisualComplexity:     string(types.ComplexityLow),
			SuggestedHoldSeconds: 5.0,
		})
}

func decodeVisualFile(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	img, _, err := image.Decode(file)
	return img, err
}
