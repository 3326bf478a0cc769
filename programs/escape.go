package programs

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// EscapeSample is the outcome of iterating one plane point.
type EscapeSample struct {
	Iterations int
	// Interior is set when the orbit never left the radius 2 disc within the cap.
	Interior bool
	Z        complex128
}

// EscapeTime iterates the recurrence of p from z with the additive constant c
// until |z|^2 > 4 or the iteration cap is reached.
func (p Program) EscapeTime(z, c complex128) EscapeSample {
	limit := p.Iterations
	if limit <= 0 {
		limit = DefaultIterations
	}

	x, y := real(z), imag(z)
	cx, cy := real(c), imag(c)
	x2, y2 := x*x, y*y

	i := 0
	switch p.Kind {
	case BurningShip:
		for x2+y2 <= 4 && i < limit {
			ax, ay := math.Abs(x), math.Abs(y)
			y = 2*ax*ay + cy
			x = x2 - y2 + cx
			x2, y2 = x*x, y*y
			i++
		}
	default:
		for x2+y2 <= 4 && i < limit {
			y = 2*x*y + cy
			x = x2 - y2 + cx
			x2, y2 = x*x, y*y
			i++
		}
	}

	return EscapeSample{
		Iterations: i,
		Interior:   i == limit,
		Z:          complex(x, y),
	}
}

// escapePixel evaluates a plane fractal at the surface position (x, y).
func (p Program) escapePixel(u Uniforms, params Parameters, x, y float64, width, height int) mgl64.Vec3 {
	point := u.PlanePoint(p, x, y, width, height)

	var s EscapeSample
	switch p.Kind {
	case Julia:
		s = p.EscapeTime(point, params.JuliaC)
	default:
		s = p.EscapeTime(params.InitialZ, point)
	}

	return p.escapeColour(s, params)
}

func (p Program) escapeColour(s EscapeSample, params Parameters) mgl64.Vec3 {
	if s.Interior {
		if params.Inside == InsideBlackWhite {
			return mgl64.Vec3{1, 1, 1}
		}
		return mgl64.Vec3{}
	}

	limit := p.Iterations
	if limit <= 0 {
		limit = DefaultIterations
	}
	norm := float64(s.Iterations) / float64(limit)
	return clampColour(params.Colour.Mul(norm))
}

func clampColour(c mgl64.Vec3) mgl64.Vec3 {
	for i := range c {
		if math.IsNaN(c[i]) {
			c[i] = 0
		}
		c[i] = mgl64.Clamp(c[i], 0, 1)
	}
	return c
}
