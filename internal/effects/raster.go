// Package effects renders the per-frame visual vocabulary of a scene:
// Ken Burns motion, crossfades, vignette and grade, text overlays and
// the multi-visual layouts (split screen, picture in picture, table
// card, callouts, logo watermarks).
package effects

import (
	"image"
	"image/color"
	"image/draw"

	xdraw "golang.org/x/image/draw"
)

const (
	OverscanFactor = 1.3

	SplitScreenGap = 8

	PIPScale        = 0.30
	PIPPadding      = 40
	PIPCornerRadius = 16
	PIPShadowOffset = 6
	PIPMaxHeightPct = 0.45

	TableCardPadding = 32

	LogoWatermarkScale   = 0.10
	LogoWatermarkOpacity = 0.35

	TextFadeDuration = 0.8
)

// Corner selects which frame corner an inset or watermark occupies.
type Corner string

const (
	CornerTopLeft     Corner = "top_left"
	CornerTopRight    Corner = "top_right"
	CornerBottomLeft  Corner = "bottom_left"
	CornerBottomRight Corner = "bottom_right"
)

// Ease is the cubic ease-in-out curve used by every animated effect.
func Ease(t float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	return 3*t*t - 2*t*t*t
}

func clampU8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// BlackFrame returns a solid black frame.
func BlackFrame(width, height int) *image.RGBA {
	frame := image.NewRGBA(image.Rect(0, 0, width, height))
	for i := 3; i < len(frame.Pix); i += 4 {
		frame.Pix[i] = 0xff
	}
	return frame
}

// CloneFrame copies a frame so overlays never mutate shared assets.
func CloneFrame(src *image.RGBA) *image.RGBA {
	dst := image.NewRGBA(src.Bounds())
	copy(dst.Pix, src.Pix)
	return dst
}

// toRGBA converts any image to RGBA without copying when possible.
func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	bounds := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Bounds(), img, bounds.Min, draw.Src)
	return dst
}

// scaleTo resizes img to exactly width x height.
func scaleTo(img image.Image, width, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	return dst
}

// thumbnail shrinks img to fit within maxW x maxH preserving aspect
// ratio; images already inside the box are returned unchanged.
func thumbnail(img image.Image, maxW, maxH int) *image.RGBA {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxW && h <= maxH {
		return toRGBA(img)
	}
	scaleW := float64(maxW) / float64(w)
	scaleH := float64(maxH) / float64(h)
	scale := scaleW
	if scaleH < scale {
		scale = scaleH
	}
	newW := int(float64(w) * scale)
	newH := int(float64(h) * scale)
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}
	return scaleTo(img, newW, newH)
}

// roundedRectMask builds an alpha mask for a w x h rounded rectangle.
func roundedRectMask(w, h, radius int) *image.Alpha {
	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	if radius < 0 {
		radius = 0
	}
	maxR := w / 2
	if h/2 < maxR {
		maxR = h / 2
	}
	if radius > maxR {
		radius = maxR
	}
	r2 := radius * radius
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			inside := true
			// distance check only matters inside the corner squares
			dx, dy := -1, -1
			if x < radius && y < radius {
				dx, dy = radius-1-x, radius-1-y
			} else if x >= w-radius && y < radius {
				dx, dy = x-(w-radius), radius-1-y
			} else if x < radius && y >= h-radius {
				dx, dy = radius-1-x, y-(h-radius)
			} else if x >= w-radius && y >= h-radius {
				dx, dy = x-(w-radius), y-(h-radius)
			}
			if dx >= 0 && dx*dx+dy*dy > r2 {
				inside = false
			}
			if inside {
				mask.SetAlpha(x, y, color.Alpha{A: 0xff})
			}
		}
	}
	return mask
}

// fillRect paints an axis-aligned rectangle with an NRGBA color,
// alpha-compositing over the destination.
func fillRect(dst *image.RGBA, rect image.Rectangle, c color.NRGBA) {
	draw.Draw(dst, rect.Intersect(dst.Bounds()), image.NewUniform(c), image.Point{}, draw.Over)
}

// fillRoundedRect paints a rounded rectangle at (x, y).
func fillRoundedRect(dst *image.RGBA, x, y, w, h, radius int, c color.NRGBA) {
	mask := roundedRectMask(w, h, radius)
	rect := image.Rect(x, y, x+w, y+h)
	draw.DrawMask(dst, rect, image.NewUniform(c), image.Point{}, mask, mask.Bounds().Min, draw.Over)
}

// strokeRoundedRect draws the outline of a rounded rectangle by
// subtracting an inner mask from an outer one.
func strokeRoundedRect(dst *image.RGBA, x, y, w, h, radius, width int, c color.NRGBA) {
	outer := roundedRectMask(w, h, radius)
	innerRadius := radius - width
	if innerRadius < 0 {
		innerRadius = 0
	}
	inner := roundedRectMask(w-2*width, h-2*width, innerRadius)
	for yy := 0; yy < h; yy++ {
		for xx := 0; xx < w; xx++ {
			ix, iy := xx-width, yy-width
			if ix >= 0 && iy >= 0 && ix < w-2*width && iy < h-2*width {
				if inner.AlphaAt(ix, iy).A > 0 {
					outer.SetAlpha(xx, yy, color.Alpha{})
				}
			}
		}
	}
	rect := image.Rect(x, y, x+w, y+h)
	draw.DrawMask(dst, rect, image.NewUniform(c), image.Point{}, outer, outer.Bounds().Min, draw.Over)
}

// pasteWithMask composites src onto dst at (x, y) through mask.
func pasteWithMask(dst *image.RGBA, src image.Image, mask *image.Alpha, x, y int) {
	bounds := src.Bounds()
	rect := image.Rect(x, y, x+bounds.Dx(), y+bounds.Dy())
	draw.DrawMask(dst, rect, src, bounds.Min, mask, mask.Bounds().Min, draw.Over)
}
