package render

import (
	"image"

	"github.com/gogpu/gg"
	"golang.org/x/image/draw"
)

// Downscale resamples pix to width by height with a Catmull-Rom filter.
// It is used to finish supersampled renders and to build previews.
func Downscale(pix *gg.Pixmap, width, height int) *gg.Pixmap {
	if width == pix.Width() && height == pix.Height() {
		return pix
	}

	src := pix.ToImage()
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return gg.FromImage(dst)
}

// Fit scales width by height down so neither side exceeds maxSide, keeping
// the aspect ratio. Sizes already inside the limit are returned unchanged.
func Fit(width, height, maxSide int) (int, int) {
	if width <= maxSide && height <= maxSide {
		return width, height
	}
	if width >= height {
		return maxSide, max(1, height*maxSide/width)
	}
	return max(1, width*maxSide/height), maxSide
}
