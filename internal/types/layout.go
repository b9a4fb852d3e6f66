package types

import "strings"

// LayoutMode selects how a scene's visuals are composed into the frame.
type LayoutMode string

const (
	LayoutSingle           LayoutMode = "single"
	LayoutCarousel         LayoutMode = "carousel"
	LayoutSplitScreen      LayoutMode = "split_screen"
	LayoutPictureInPicture LayoutMode = "picture_in_picture"
)

// ParseLayoutMode normalizes planner output; unknown values fall back
// to single so a sloppy LLM answer never aborts composition.
func ParseLayoutMode(raw string) LayoutMode {
	switch LayoutMode(strings.ToLower(strings.TrimSpace(raw))) {
	case LayoutCarousel:
		return LayoutCarousel
	case LayoutSplitScreen:
		return LayoutSplitScreen
	case LayoutPictureInPicture:
		return LayoutPictureInPicture
	default:
		return LayoutSingle
	}
}

// ImageClass is the classifier's semantic tag for one image.
type ImageClass string

const (
	ClassUnknown    ImageClass = ""
	ClassChart      ImageClass = "chart"
	ClassPhoto      ImageClass = "photo"
	ClassDiagram    ImageClass = "diagram"
	ClassTable      ImageClass = "table"
	ClassLogo       ImageClass = "logo"
	ClassDecorative ImageClass = "decorative"
)

func ParseImageClass(raw string) ImageClass {
	switch ImageClass(strings.ToLower(strings.TrimSpace(raw))) {
	case ClassChart:
		return ClassChart
	case ClassPhoto:
		return ClassPhoto
	case ClassDiagram:
		return ClassDiagram
	case ClassTable:
		return ClassTable
	case ClassLogo:
		return ClassLogo
	case ClassDecorative:
		return ClassDecorative
	default:
		return ClassUnknown
	}
}

// IsDataVisual reports whether motion should stay minimal so the data
// remains legible.
func (c ImageClass) IsDataVisual() bool {
	return c == ClassChart || c == ClassDiagram || c == ClassTable
}

// IsFullBleed reports whether the image wants the whole frame without
// competing overlays.
func (c ImageClass) IsFullBleed() bool {
	return c == ClassPhoto || c == ClassDecorative
}

func (c ImageClass) IsLogo() bool {
	return c == ClassLogo
}

// VisualComplexity is the classifier's low/medium/high detail estimate.
type VisualComplexity string

const (
	ComplexityLow    VisualComplexity = "low"
	ComplexityMedium VisualComplexity = "medium"
	ComplexityHigh   VisualComplexity = "high"
)
