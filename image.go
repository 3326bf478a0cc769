package main

import (
	"fmt"

	"github.com/gogpu/gg"
	"github.com/gotk3/gotk3/gdk"
	"github.com/stewi1014/fractalexplorer/render"
)

// previewSide bounds the longer side of a saved image's preview.
const previewSide = 480

// previewPixmap shrinks pix to preview size. Safe off the main thread.
func previewPixmap(pix *gg.Pixmap) *gg.Pixmap {
	w, h := render.Fit(pix.Width(), pix.Height(), previewSide)
	return render.Downscale(pix, w, h)
}

// pixbufFromPixmap copies pix into a new RGBA pixbuf.
func pixbufFromPixmap(pix *gg.Pixmap) (*gdk.Pixbuf, error) {
	w, h := pix.Width(), pix.Height()
	pb, err := gdk.PixbufNew(gdk.COLORSPACE_RGB, true, 8, w, h)
	if err != nil {
		return nil, fmt.Errorf("gdk.PixbufNew: %w", err)
	}

	dst := pb.GetPixels()
	stride := pb.GetRowstride()
	src := pix.Data()
	for y := 0; y < h; y++ {
		copy(dst[y*stride:y*stride+w*4], src[y*w*4:(y+1)*w*4])
	}
	return pb, nil
}
