package render

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stewi1014/fractalexplorer/programs"
)

// AntiAlias9x samples 9 positions around each requested position, returning
// the average colour.
//
// offset is the distance between samples in pixels.
func AntiAlias9x(pixel programs.PixelFunc, offset float64) programs.PixelFunc {
	if offset == 0 {
		Logger().Warn("pixel function uselessly antialiased with distance of 0")
		return pixel
	}

	return func(u programs.Uniforms, params programs.Parameters, x, y float64, width, height int) mgl64.Vec3 {
		var sum mgl64.Vec3
		for _, dx := range [3]float64{-offset, 0, offset} {
			for _, dy := range [3]float64{-offset, 0, offset} {
				sum = sum.Add(pixel(u, params, x+dx, y+dy, width, height))
			}
		}
		return sum.Mul(1.0 / 9)
	}
}
