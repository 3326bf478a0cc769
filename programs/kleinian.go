package programs

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	kleinianScale       = 1.8
	kleinianFoldLimit   = 1.0
	kleinianMinRadius   = 0.5
	kleinianFixedRadius = 1.0
)

var kleinianProgram = Program{
	Kind:         Kleinian,
	Name:         "Kleinian",
	Family:       DistanceField,
	BaseDistance: 5,
	MaxDistance:  50,
	StepScale:    0.5,
	MaxIter:      20,

	DefaultZoom: 1,
	MinZoom:     0.05,
	MaxZoom:     1e4,
}

// kleinianDE repeats box fold, sphere fold and rescale, then returns |z|/|dr|.
func kleinianDE(p mgl64.Vec3, iterations int) float64 {
	z := p
	dr := 1.0

	for i := 0; i < iterations; i++ {
		z = boxFold(z, kleinianFoldLimit)
		z = sphereFold(z, kleinianMinRadius, kleinianFixedRadius)
		z = z.Mul(kleinianScale).Add(p)
		dr = dr*math.Abs(kleinianScale) + 1
	}

	return z.Len() / math.Abs(dr)
}

// boxFold reflects each component that lies outside [-limit, limit] back inside.
func boxFold(p mgl64.Vec3, limit float64) mgl64.Vec3 {
	for i := range p {
		p[i] = mgl64.Clamp(p[i], -limit, limit)*2 - p[i]
	}
	return p
}

// sphereFold inverts points inside the fixed sphere. The squared length is
// compared against the radii as given.
func sphereFold(p mgl64.Vec3, minRadius, fixedRadius float64) mgl64.Vec3 {
	r2 := p.Dot(p)
	switch {
	case r2 < minRadius:
		return p.Mul(fixedRadius / minRadius)
	case r2 < fixedRadius:
		return p.Mul(fixedRadius / r2)
	}
	return p
}
