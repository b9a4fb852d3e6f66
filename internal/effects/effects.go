package effects

import (
	"image"
	"math"

	xdraw "golang.org/x/image/draw"
)

// FitImageToFrame scales an image to fill the frame with overscan
// headroom so Ken Burns motion never exposes an edge.
func FitImageToFrame(img image.Image, frameW, frameH int, overscan float64) *image.RGBA {
	targetW := int(float64(frameW) * overscan)
	targetH := int(float64(frameH) * overscan)

	bounds := img.Bounds()
	imgRatio := float64(bounds.Dx()) / float64(bounds.Dy())
	frameRatio := float64(targetW) / float64(targetH)

	var newW, newH int
	if imgRatio > frameRatio {
		newH = targetH
		newW = int(float64(newH) * imgRatio)
	} else {
		newW = targetW
		newH = int(float64(newW) / imgRatio)
	}
	return scaleTo(img, newW, newH)
}

// KenBurnsFrame produces the frame at normalized time t in [0, 1],
// zooming from zoomStart to zoomEnd while panning by (panX, panY)
// fractions of the fitted image. The crop window is clamped by
// shifting so it never leaves the source.
func KenBurnsFrame(fitted *image.RGBA, t float64, frameW, frameH int,
	zoomStart, zoomEnd, panX, panY float64) *image.RGBA {

	eased := Ease(t)
	zoom := zoomStart + (zoomEnd-zoomStart)*eased

	cropW := int(float64(frameW) / zoom)
	cropH := int(float64(frameH) / zoom)

	bounds := fitted.Bounds()
	imgW, imgH := bounds.Dx(), bounds.Dy()

	cx := float64(imgW)/2 + panX*float64(imgW)*eased
	cy := float64(imgH)/2 + panY*float64(imgH)*eased

	x1 := int(cx - float64(cropW)/2)
	if x1 < 0 {
		x1 = 0
	}
	y1 := int(cy - float64(cropH)/2)
	if y1 < 0 {
		y1 = 0
	}
	x2 := x1 + cropW
	if x2 > imgW {
		x2 = imgW
	}
	y2 := y1 + cropH
	if y2 > imgH {
		y2 = imgH
	}
	if x2-x1 < cropW {
		x1 = x2 - cropW
		if x1 < 0 {
			x1 = 0
		}
	}
	if y2-y1 < cropH {
		y1 = y2 - cropH
		if y1 < 0 {
			y1 = 0
		}
	}

	crop := image.Rect(bounds.Min.X+x1, bounds.Min.Y+y1, bounds.Min.X+x2, bounds.Min.Y+y2)
	dst := image.NewRGBA(image.Rect(0, 0, frameW, frameH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), fitted, crop, xdraw.Src, nil)
	return dst
}

// Crossfade blends two equally sized frames; t runs 0 (all A) to 1
// (all B) along the eased curve.
func Crossfade(frameA, frameB *image.RGBA, t float64) *image.RGBA {
	eased := Ease(t)
	out := image.NewRGBA(frameA.Bounds())
	a, b := frameA.Pix, frameB.Pix
	// rounded, not truncated, so blending a frame with itself is exact
	for i := 0; i < len(out.Pix); i += 4 {
		out.Pix[i] = clampU8((1-eased)*float64(a[i]) + eased*float64(b[i]) + 0.5)
		out.Pix[i+1] = clampU8((1-eased)*float64(a[i+1]) + eased*float64(b[i+1]) + 0.5)
		out.Pix[i+2] = clampU8((1-eased)*float64(a[i+2]) + eased*float64(b[i+2]) + 0.5)
		out.Pix[i+3] = 0xff
	}
	return out
}

// ApplyVignette darkens edges. Pixels inside half the normalized
// center distance are untouched; the falloff is capped at intensity.
func ApplyVignette(frame *image.RGBA, intensity float64) *image.RGBA {
	bounds := frame.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	cx, cy := float64(w)/2, float64(h)/2

	out := image.NewRGBA(frame.Bounds())
	for y := 0; y < h; y++ {
		ny := (float64(y) - cy) / cy
		for x := 0; x < w; x++ {
			nx := (float64(x) - cx) / cx
			dist := math.Sqrt(nx*nx + ny*ny)
			fall := (dist - 0.5) * intensity * 2
			if fall < 0 {
				fall = 0
			}
			if fall > intensity {
				fall = intensity
			}
			gain := 1 - fall

			i := frame.PixOffset(bounds.Min.X+x, bounds.Min.Y+y)
			o := out.PixOffset(x, y)
			out.Pix[o] = clampU8(float64(frame.Pix[i]) * gain)
			out.Pix[o+1] = clampU8(float64(frame.Pix[i+1]) * gain)
			out.Pix[o+2] = clampU8(float64(frame.Pix[i+2]) * gain)
			out.Pix[o+3] = 0xff
		}
	}
	return out
}

// ColorGrade applies warm contrast grading: contrast pivots at 128,
// warmth shifts red up and blue down, and shadows are lifted so no
// channel drops below 8.
func ColorGrade(frame *image.RGBA, warmth, contrast, brightness float64) *image.RGBA {
	out := image.NewRGBA(frame.Bounds())
	src := frame.Pix
	for i := 0; i < len(out.Pix); i += 4 {
		r := ((float64(src[i])-128)*contrast + 128) * brightness
		g := ((float64(src[i+1])-128)*contrast + 128) * brightness
		b := ((float64(src[i+2])-128)*contrast + 128) * brightness

		r += warmth * 255
		g += warmth * 128
		b -= warmth * 64

		out.Pix[i] = clampGraded(r)
		out.Pix[i+1] = clampGraded(g)
		out.Pix[i+2] = clampGraded(b)
		out.Pix[i+3] = 0xff
	}
	return out
}

// clampGraded lifts shadows to 8 so graded frames never hit pure black.
func clampGraded(v float64) uint8 {
	if v < 8 {
		return 8
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

