package effects

import (
	"image"
	"image/color"
	"os"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// TextPosition anchors a text overlay within the frame.
type TextPosition string

const (
	PositionLowerThird TextPosition = "lower_third"
	PositionUpper      TextPosition = "upper"
	PositionTitle      TextPosition = "title"
	PositionCenter     TextPosition = "center"
)

// CalloutPosition anchors a callout pill within the frame.
type CalloutPosition string

const (
	CalloutUpperRight CalloutPosition = "upper_right"
	CalloutUpperLeft  CalloutPosition = "upper_left"
	CalloutLowerRight CalloutPosition = "lower_right"
	CalloutLowerLeft  CalloutPosition = "lower_left"
)

var fontSearchPaths = []string{
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/truetype/liberation/LiberationSans-Regular.ttf",
	"C:/Windows/Fonts/segoeui.ttf",
	"C:/Windows/Fonts/arial.ttf",
	"/System/Library/Fonts/Supplemental/Arial.ttf",
	"/Library/Fonts/Arial.ttf",
}

var (
	loadFontOnce sync.Once
	loadedFont   *opentype.Font
)

// loadFace returns a face at the requested size, falling back to the
// fixed basicfont when no system font can be parsed.
func loadFace(size float64) font.Face {
	loadFontOnce.Do(func() {
		for _, path := range fontSearchPaths {
			data, err := os.ReadFile(path)
			if err != nil {
				continue
			}
			parsed, err := opentype.Parse(data)
			if err != nil {
				continue
			}
			loadedFont = parsed
			return
		}
	})
	if loadedFont == nil {
		return basicfont.Face7x13
	}
	face, err := opentype.NewFace(loadedFont, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return basicfont.Face7x13
	}
	return face
}

func measure(face font.Face, text string) int {
	return font.MeasureString(face, text).Ceil()
}

func drawString(dst *image.RGBA, face font.Face, text string, x, y int, c color.NRGBA) {
	drawer := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y+face.Metrics().Ascent.Ceil()),
	}
	drawer.DrawString(text)
}

// wordWrap splits text into lines that each fit maxWidth.
func wordWrap(face font.Face, text string, maxWidth int) []string {
	words := strings.Fields(text)
	var lines []string
	var current []string

	for _, word := range words {
		candidate := strings.Join(append(append([]string{}, current...), word), " ")
		if measure(face, candidate) <= maxWidth {
			current = append(current, word)
			continue
		}
		if len(current) > 0 {
			lines = append(lines, strings.Join(current, " "))
		}
		current = []string{word}
	}
	if len(current) > 0 {
		lines = append(lines, strings.Join(current, " "))
	}
	if len(lines) == 0 {
		lines = []string{""}
	}
	return lines
}

// TextOpacityAtTime ramps the overlay opacity linearly over the fade
// windows at both ends of a scene.
func TextOpacityAtTime(t, sceneDuration, fadeIn, fadeOut float64) float64 {
	if t < fadeIn {
		return t / fadeIn
	}
	if t > sceneDuration-fadeOut {
		remaining := (sceneDuration - t) / fadeOut
		if remaining < 0 {
			return 0
		}
		return remaining
	}
	return 1.0
}

// RenderTextOverlay draws a styled text bar onto a copy of the frame.
// Title position doubles the font size and centers every line; other
// positions left-align at 5% of the frame width.
func RenderTextOverlay(frame *image.RGBA, text string, position TextPosition,
	opacity float64, fontSize int, maxWidthPct float64) *image.RGBA {

	bounds := frame.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	out := CloneFrame(frame)

	isTitle := position == PositionTitle
	actualSize := fontSize
	if isTitle {
		actualSize = fontSize * 2
	}
	face := loadFace(float64(actualSize))

	maxWidth := int(float64(w) * maxWidthPct)
	lines := wordWrap(face, text, maxWidth)
	lineHeight := actualSize + 8
	blockHeight := len(lines) * lineHeight
	pad := 20

	var textY, bgY1, bgY2 int
	switch position {
	case PositionLowerThird:
		textY = int(float64(h) * 0.72)
		bgY1, bgY2 = textY-pad, textY+blockHeight+pad
	case PositionUpper:
		textY = int(float64(h) * 0.08)
		bgY1, bgY2 = textY-pad, textY+blockHeight+pad
	case PositionTitle:
		textY = (h - blockHeight) / 2
		bgY1, bgY2 = textY-pad*2, textY+blockHeight+pad*2
	default:
		textY = (h - blockHeight) / 2
		bgY1, bgY2 = textY-pad, textY+blockHeight+pad
	}

	// backdrop bar with the accent stripe on its left edge
	fillRect(out, image.Rect(0, bgY1, w, bgY2),
		color.NRGBA{R: 15, G: 15, B: 20, A: uint8(180 * opacity)})
	fillRect(out, image.Rect(0, bgY1, 4, bgY2),
		color.NRGBA{R: 0, G: 150, B: 255, A: uint8(200 * opacity)})

	textColor := color.NRGBA{R: 255, G: 255, B: 255, A: uint8(255 * opacity)}
	shadowColor := color.NRGBA{A: uint8(150 * opacity)}
	for i, line := range lines {
		tw := measure(face, line)
		tx := int(float64(w) * 0.05)
		if isTitle {
			tx = (w - tw) / 2
		}
		ty := textY + i*lineHeight
		drawString(out, face, line, tx+2, ty+2, shadowColor)
		drawString(out, face, line, tx, ty, textColor)
	}
	return out
}

// RenderCalloutOverlay draws a small annotation pill, used to flag
// data points on charts and diagrams.
func RenderCalloutOverlay(frame *image.RGBA, text string, position CalloutPosition,
	opacity float64, fontSize int) *image.RGBA {

	bounds := frame.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	out := CloneFrame(frame)

	face := loadFace(float64(fontSize))
	tw := measure(face, text)
	th := face.Metrics().Ascent.Ceil() + face.Metrics().Descent.Ceil()
	pad := 16

	var bx, by int
	switch position {
	case CalloutUpperRight:
		bx, by = w-tw-pad*3, int(float64(h)*0.06)
	case CalloutUpperLeft:
		bx, by = pad*2, int(float64(h)*0.06)
	case CalloutLowerRight:
		bx, by = w-tw-pad*3, int(float64(h)*0.60)
	default:
		bx, by = pad*2, int(float64(h)*0.60)
	}

	fillRoundedRect(out, bx-pad, by-pad, tw+2*pad, th+2*pad, 8,
		color.NRGBA{R: 10, G: 10, B: 20, A: uint8(200 * opacity)})

	// accent dot on the pill's left edge
	dotY := by + th/2
	fillRoundedRect(out, bx-pad+6, dotY-3, 6, 6, 3,
		color.NRGBA{R: 0, G: 180, B: 255, A: uint8(255 * opacity)})

	drawString(out, face, text, bx, by,
		color.NRGBA{R: 255, G: 255, B: 255, A: uint8(255 * opacity)})
	return out
}
