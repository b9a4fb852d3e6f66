package effects

import (
	"image"
	"image/color"
	"image/draw"
)

// RenderSplitScreen places two visuals side by side separated by a
// thin dark divider. Each panel is squeezed to half the frame width.
func RenderSplitScreen(left, right image.Image, frameW, frameH, gap int) *image.RGBA {
	halfW := (frameW - gap) / 2
	canvas := BlackFrame(frameW, frameH)

	leftPanel := scaleTo(left, halfW, frameH)
	draw.Draw(canvas, image.Rect(0, 0, halfW, frameH), leftPanel, image.Point{}, draw.Src)

	fillRect(canvas, image.Rect(halfW, 0, halfW+gap, frameH),
		color.NRGBA{R: 40, G: 40, B: 40, A: 255})

	rightPanel := scaleTo(right, halfW, frameH)
	rightStart := halfW + gap
	rightEnd := rightStart + halfW
	if rightEnd > frameW {
		rightEnd = frameW
	}
	draw.Draw(canvas, image.Rect(rightStart, 0, rightEnd, frameH), rightPanel, image.Point{}, draw.Src)
	return canvas
}

// RenderPictureInPicture composites a rounded inset card with a drop
// shadow and thin border over a full-frame background. The inset is
// sized by pipScale of the frame width, its height capped at 45% of
// the frame height.
func RenderPictureInPicture(background *image.RGBA, inset image.Image,
	frameW, frameH int, pipScale float64, padding, cornerRadius, shadowOffset int,
	corner Corner) *image.RGBA {

	insetW := int(float64(frameW) * pipScale)
	insetBounds := inset.Bounds()
	srcW := insetBounds.Dx()
	if srcW < 1 {
		srcW = 1
	}
	insetH := insetW * insetBounds.Dy() / srcW
	maxH := int(float64(frameH) * PIPMaxHeightPct)
	if insetH > maxH {
		insetH = maxH
	}
	if insetH < 1 {
		insetH = 1
	}

	insetResized := scaleTo(inset, insetW, insetH)
	mask := roundedRectMask(insetW, insetH, cornerRadius)

	var ix, iy int
	switch corner {
	case CornerBottomRight:
		ix, iy = frameW-insetW-padding, frameH-insetH-padding
	case CornerBottomLeft:
		ix, iy = padding, frameH-insetH-padding
	case CornerTopRight:
		ix, iy = frameW-insetW-padding, padding
	default:
		ix, iy = padding, padding
	}

	out := scaleTo(background, frameW, frameH)

	shadow := image.NewNRGBA(image.Rect(0, 0, insetW, insetH))
	draw.Draw(shadow, shadow.Bounds(), image.NewUniform(color.NRGBA{A: 100}), image.Point{}, draw.Src)
	pasteWithMask(out, shadow, mask, ix+shadowOffset, iy+shadowOffset)

	pasteWithMask(out, insetResized, mask, ix, iy)

	strokeRoundedRect(out, ix, iy, insetW, insetH, cornerRadius, 2,
		color.NRGBA{R: 255, G: 255, B: 255, A: 60})
	return out
}

// RenderTableCard renders a table image as a styled card centered on
// a dark canvas: rounded corners, drop shadow, and an accent line
// along the card's top edge. Table cards never animate.
func RenderTableCard(table image.Image, frameW, frameH, padding int) *image.RGBA {
	maxW := frameW - padding*4
	maxH := frameH - padding*4
	tableImg := thumbnail(table, maxW, maxH)
	tw, th := tableImg.Bounds().Dx(), tableImg.Bounds().Dy()

	canvas := image.NewRGBA(image.Rect(0, 0, frameW, frameH))
	fillRect(canvas, canvas.Bounds(), color.NRGBA{R: 18, G: 18, B: 28, A: 255})

	cardW := tw + padding*2
	cardH := th + padding*2
	cardX := (frameW - cardW) / 2
	cardY := (frameH - cardH) / 2

	fillRoundedRect(canvas, cardX+4, cardY+4, cardW, cardH, 12, color.NRGBA{A: 120})
	fillRoundedRect(canvas, cardX, cardY, cardW, cardH, 12,
		color.NRGBA{R: 30, G: 30, B: 45, A: 240})
	fillRect(canvas, image.Rect(cardX+12, cardY, cardX+cardW-12, cardY+3),
		color.NRGBA{R: 0, G: 150, B: 255, A: 180})

	draw.Draw(canvas, image.Rect(cardX+padding, cardY+padding, cardX+padding+tw, cardY+padding+th),
		tableImg, tableImg.Bounds().Min, draw.Over)
	return canvas
}

// RenderLogoWatermark stamps a translucent logo in a frame corner.
// Logos never appear as scene visuals, only as watermarks.
func RenderLogoWatermark(frame *image.RGBA, logo image.Image,
	scale, opacity float64, corner Corner, padding int) *image.RGBA {

	bounds := frame.Bounds()
	frameW, frameH := bounds.Dx(), bounds.Dy()

	logoW := int(float64(frameW) * scale)
	scaled := thumbnail(logo, logoW, logoW)
	lw, lh := scaled.Bounds().Dx(), scaled.Bounds().Dy()

	var lx, ly int
	switch corner {
	case CornerTopRight:
		lx, ly = frameW-lw-padding, padding
	case CornerTopLeft:
		lx, ly = padding, padding
	case CornerBottomRight:
		lx, ly = frameW-lw-padding, frameH-lh-padding
	default:
		lx, ly = padding, frameH-lh-padding
	}

	out := CloneFrame(frame)

	// scale the logo's own alpha by the watermark opacity
	faded := image.NewNRGBA(image.Rect(0, 0, lw, lh))
	draw.Draw(faded, faded.Bounds(), scaled, scaled.Bounds().Min, draw.Src)
	for i := 3; i < len(faded.Pix); i += 4 {
		faded.Pix[i] = uint8(float64(faded.Pix[i]) * opacity)
	}

	draw.Draw(out, image.Rect(lx, ly, lx+lw, ly+lh), faded, image.Point{}, draw.Over)
	return out
}
