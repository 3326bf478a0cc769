package programs

import (
	"github.com/go-gl/mathgl/mgl64"
)

// PixelFunc computes the colour at the surface position (x, y) of a width by
// height surface. Channels are in [0, 1].
type PixelFunc func(u Uniforms, params Parameters, x, y float64, width, height int) mgl64.Vec3

// Pixel evaluates p at the surface position (x, y), measured in pixels from
// the top-left corner; pixel centres sit on half-integers. It is pure: the
// same inputs always give the same colour.
func (p Program) Pixel(u Uniforms, params Parameters, x, y float64, width, height int) mgl64.Vec3 {
	if p.Family == DistanceField {
		return p.marchPixel(u, params, x, y, width, height)
	}
	return p.escapePixel(u, params, x, y, width, height)
}

// PixelFunc returns p.Pixel as a function value.
func (p Program) PixelFunc() PixelFunc {
	return p.Pixel
}
